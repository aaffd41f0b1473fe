// Package store provides SQLite-backed durable storage for gearbox trace
// logs.
//
// The store is an append-only log of applied commands:
//   - records: one row per tick, move or turn
//   - steps: the rotations of each record, in order
//   - meta: the digest of the layout the log was recorded against
//
// The log never holds grid composition. A board is rebuilt by loading its
// layout file and replaying the records on top of it (see engine.Replay).
//
// # Ordering
//
// All ordering uses the seq INTEGER stamped by the engine's logical clock,
// never timestamps. Queries order by seq ASC so replays see records in the
// order they were applied.
//
// # Idempotency
//
// Records are keyed by their token. Writing the same record twice is a
// no-op, so a sink that retries cannot duplicate history.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
