// Package engine runs the gear simulation.
//
// ARCHITECTURE:
//
// Propagator walks a chain reaction from one freshly rotated gear.
// SimulationClock applies commands (tick, turn, move) to a board.Grid and
// returns one trace.Record per command. Engine wraps a SimulationClock in a
// single-writer loop so hosts can submit commands from any goroutine.
//
// Propagation:
//  1. Directions are examined in the fixed order up, right, down, left.
//  2. An edge transmits only if both the driver and the neighbor had a tooth
//     on it in their pre-rotation orientation.
//  3. A pushed gear counter-rotates relative to its driver and is explored
//     fully (depth first) before the driver's next direction.
//  4. One visited set is shared across the whole traversal, so a gear
//     rotates at most once per root rotation even when meshes form cycles.
//
// The walk uses an explicit frame stack instead of call recursion. The
// visiting order is identical to the recursive formulation.
//
// Determinism:
//
// Engines tick in row-major coordinate order (ascending Y, then X). Every
// rotation is stamped from a logical Clock, never from wall time. Given the
// same layout and the same command sequence, the records and board digests
// are identical; replay relies on this.
//
// Single-Writer Loop:
//
// Engine.Run owns the grid. Submit enqueues a command and waits for its
// record. A whole tick is applied under that single writer, which is the
// locking granularity hosts need when they share a board across goroutines.
package engine
