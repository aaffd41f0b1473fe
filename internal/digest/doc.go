// Package digest computes content digests of board state and trace records.
//
// Digests are SHA-256 over canonical JSON (sorted keys, no insignificant
// whitespace, NFC-normalized strings, integers only) with a domain prefix,
// so equal states always hash equal across runs and machines. Replay uses
// them to prove a stored log reproduces the same boards.
package digest
