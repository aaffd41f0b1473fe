// Package board holds the gear grid data model.
//
// The package is the foundation layer: it imports nothing internal, and
// every other package builds on its types.
//
// A Grid maps integer coordinates to gear Units. Each Unit carries a fixed
// tooth pattern in its unrotated frame plus a discrete orientation (0..3
// quarter turns). Connectivity toward a world direction is derived from the
// pattern and the orientation, both for the current orientation and for the
// orientation held before the latest rotation.
//
// Key invariants:
//   - a coordinate maps to at most one Unit
//   - a Unit's position always equals the key it is stored under
//   - one Rotate call is exactly one quarter turn, for every gear type
//
// Nothing here logs or propagates rotations. Propagation lives in the
// engine package.
package board
