// Package trace defines the ordered log the simulation emits.
//
// The core computes every rotation of a command synchronously. Hosts that
// animate chain reactions replay the Steps of a Record in order; the Seq
// values come from the engine's logical clock and never from wall time.
package trace

import "github.com/roach88/gearbox/internal/board"

// Kind names the command that produced a record.
type Kind string

const (
	KindTick Kind = "tick"
	KindMove Kind = "move"
	KindTurn Kind = "turn"
)

// Step is one rotation.
//
// The root rotation of a tick or turn has Depth 0, Driver == Gear and an
// empty Via. A pushed gear has Depth > 0 and Via names the direction from
// its driver to it.
type Step struct {
	Seq       int64            `json:"seq"`
	Driver    board.Coordinate `json:"driver"`
	Gear      board.Coordinate `json:"gear"`
	GearID    string           `json:"gear_id"`
	Via       string           `json:"via,omitempty"`
	Clockwise bool             `json:"clockwise"`
	Depth     int              `json:"depth"`
}

// Record is the outcome of one applied command.
type Record struct {
	Token string `json:"token"`
	Seq   int64  `json:"seq"`
	Kind  Kind   `json:"kind"`

	// At is the moved gear's origin (move) or the turned gear (turn).
	At *board.Coordinate `json:"at,omitempty"`
	// To is the move target.
	To        *board.Coordinate `json:"to,omitempty"`
	Clockwise bool              `json:"clockwise,omitempty"`

	// Rejected carries the reject reason of a refused move.
	Rejected string `json:"rejected,omitempty"`

	Steps []Step `json:"steps"`

	// Digest is the board digest after the command was applied.
	Digest string `json:"digest"`
}

// GearIDs returns the rotated gear IDs in step order.
func (r Record) GearIDs() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.GearID
	}
	return out
}

// Rotations counts rotations per gear ID.
func (r Record) Rotations() map[string]int {
	out := make(map[string]int, len(r.Steps))
	for _, s := range r.Steps {
		out[s.GearID]++
	}
	return out
}

// Pushes returns the steps caused by propagation, excluding roots.
func (r Record) Pushes() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Depth > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Sink receives every applied record.
type Sink interface {
	Record(rec Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rec Record) error

func (f SinkFunc) Record(rec Record) error { return f(rec) }
