package engine

import (
	"errors"
	"log/slog"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/trace"
)

// SimulationClock advances a grid one command at a time.
//
// It is synchronous and not safe for concurrent use; Engine serializes
// access when a board is shared.
type SimulationClock struct {
	grid   *board.Grid
	clock  *Clock
	prop   *Propagator
	tokens TokenGenerator
}

// NewSimulationClock creates a simulation over g. A nil clock starts at 0;
// nil tokens default to UUIDv7.
func NewSimulationClock(g *board.Grid, clock *Clock, tokens TokenGenerator) *SimulationClock {
	if clock == nil {
		clock = NewClock()
	}
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	return &SimulationClock{
		grid:   g,
		clock:  clock,
		prop:   NewPropagator(g, clock),
		tokens: tokens,
	}
}

// Grid returns the simulated grid.
func (s *SimulationClock) Grid() *board.Grid { return s.grid }

// Clock returns the logical clock.
func (s *SimulationClock) Clock() *Clock { return s.clock }

// Tick rotates every engine in its configured direction and propagates
// from each, one engine at a time in row-major order.
//
// Engines are independent events: each gets its own visited set, so a gear
// reached by two engines' chains rotates once per chain, and an engine
// pushed by an earlier engine still takes its own turn.
func (s *SimulationClock) Tick() trace.Record {
	rec := s.newRecord(trace.KindTick)

	engines := s.grid.Engines()
	for _, u := range engines {
		rec.Steps = append(rec.Steps, s.drive(u, u.EngineClockwise())...)
	}

	rec.Digest = digest.MustGrid(s.grid)
	slog.Debug("tick applied", "token", rec.Token, "seq", rec.Seq, "engines", len(engines), "steps", len(rec.Steps))
	return rec
}

// Turn rotates the gear at `at` one quarter turn and propagates from it.
// Works for any gear type.
func (s *SimulationClock) Turn(at board.Coordinate, clockwise bool) (trace.Record, error) {
	u, ok := s.grid.Lookup(at)
	if !ok {
		return trace.Record{}, noGearError(at)
	}

	rec := s.newRecord(trace.KindTurn)
	rec.At = &at
	rec.Clockwise = clockwise
	rec.Steps = s.drive(u, clockwise)
	rec.Digest = digest.MustGrid(s.grid)
	slog.Debug("turn applied", "token", rec.Token, "at", at, "clockwise", clockwise, "steps", len(rec.Steps))
	return rec, nil
}

// Move relocates the gear at `from` to `to` without propagating.
//
// Unlike Grid.Move, Move honors permanence. A refused move still yields a
// record (with Rejected set) alongside the error, so the refusal can be
// logged and replayed. An empty `from` cell yields only an error.
func (s *SimulationClock) Move(from, to board.Coordinate) (trace.Record, error) {
	u, ok := s.grid.Lookup(from)
	if !ok {
		return trace.Record{}, noGearError(from)
	}

	rec := s.newRecord(trace.KindMove)
	rec.At = &from
	rec.To = &to
	rec.Steps = []trace.Step{}

	var err error
	if u.Permanent() {
		err = permanentError(from)
		rec.Rejected = string(ErrCodePermanent)
	} else if err = s.grid.Move(u, to); err != nil {
		var mre *board.MoveRejectedError
		if errors.As(err, &mre) {
			rec.Rejected = string(mre.Reason)
		}
	}

	rec.Digest = digest.MustGrid(s.grid)
	if err != nil {
		slog.Debug("move rejected", "token", rec.Token, "from", from, "to", to, "error", err)
		return rec, err
	}
	slog.Debug("move applied", "token", rec.Token, "from", from, "to", to)
	return rec, nil
}

func (s *SimulationClock) newRecord(kind trace.Kind) trace.Record {
	return trace.Record{
		Token: s.tokens.Generate(),
		Seq:   s.clock.Next(),
		Kind:  kind,
		Steps: []trace.Step{},
	}
}

// drive rotates a root gear and resolves its chain reaction.
func (s *SimulationClock) drive(u *board.Unit, clockwise bool) []trace.Step {
	u.Rotate(clockwise)
	pos := u.Position()
	steps := []trace.Step{{
		Seq:       s.clock.Next(),
		Driver:    pos,
		Gear:      pos,
		GearID:    u.ID(),
		Clockwise: clockwise,
	}}
	return append(steps, s.prop.Propagate(u, clockwise, NewVisitedSet(u))...)
}
