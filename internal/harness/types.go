package harness

import (
	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	// Records holds every applied record, read back from the trace store.
	// Commands refused for an empty cell produce no record.
	Records []trace.Record `json:"records"`

	// Final is the board after the last step, in row-major order.
	Final []board.State `json:"final"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []trace.Record{},
		Final:   []board.State{},
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// state returns the final state of the gear with the given id.
func (r *Result) state(id string) (board.State, bool) {
	for _, s := range r.Final {
		if s.ID == id {
			return s, true
		}
	}
	return board.State{}, false
}

// stateAt returns the final state of the gear at pos.
func (r *Result) stateAt(pos board.Coordinate) (board.State, bool) {
	for _, s := range r.Final {
		if s.Position == pos {
			return s, true
		}
	}
	return board.State{}, false
}
