package engine

import (
	"fmt"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/trace"
)

// DivergenceError reports the first replayed record whose outcome differs
// from the log.
type DivergenceError struct {
	Seq   int64
	Token string
	Field string
	Want  string
	Got   string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay diverged at seq %d (%s): %s: want %s, got %s", e.Seq, e.Token, e.Field, e.Want, e.Got)
}

// ReplayResult summarizes a successful replay.
type ReplayResult struct {
	Applied int
	LastSeq int64
	Digest  string
}

// Replay re-applies logged records to g, which must be freshly built from
// the layout the log was recorded against.
//
// Replay follows the same code path as live execution: each record's
// command goes through a SimulationClock stamped with the record's token
// and positioned at the record's seq. The resulting record must hash the
// same as the logged one (digest.Record). On success g holds the board as
// of the last record.
func Replay(g *board.Grid, records []trace.Record) (*ReplayResult, error) {
	res := &ReplayResult{Digest: digest.MustGrid(g)}

	for _, want := range records {
		clock := NewClockAt(want.Seq - 1)
		sim := NewSimulationClock(g, clock, NewFixedGenerator(want.Token))

		got, err := reapply(sim, want)
		if err != nil {
			return res, err
		}
		if err := compare(want, got); err != nil {
			return res, err
		}

		res.Applied++
		res.LastSeq = clock.Current()
		res.Digest = got.Digest
	}
	return res, nil
}

func reapply(sim *SimulationClock, want trace.Record) (trace.Record, error) {
	diverged := func(msg string) error {
		return &DivergenceError{Seq: want.Seq, Token: want.Token, Field: "command", Want: string(want.Kind), Got: msg}
	}

	switch want.Kind {
	case trace.KindTick:
		return sim.Tick(), nil

	case trace.KindTurn:
		if want.At == nil {
			return trace.Record{}, diverged("turn without position")
		}
		rec, err := sim.Turn(*want.At, want.Clockwise)
		if err != nil {
			return trace.Record{}, diverged(err.Error())
		}
		return rec, nil

	case trace.KindMove:
		if want.At == nil || want.To == nil {
			return trace.Record{}, diverged("move without endpoints")
		}
		rec, err := sim.Move(*want.At, *want.To)
		if err != nil && rec.Token == "" {
			return trace.Record{}, diverged(err.Error())
		}
		// A refused move is part of history; compare checks the reason.
		return rec, nil
	}
	return trace.Record{}, diverged(fmt.Sprintf("unknown kind %q", want.Kind))
}

func compare(want, got trace.Record) error {
	mismatch := func(field, w, g string) error {
		return &DivergenceError{Seq: want.Seq, Token: want.Token, Field: field, Want: w, Got: g}
	}

	if want.Rejected != got.Rejected {
		return mismatch("rejected", quoted(want.Rejected), quoted(got.Rejected))
	}
	if len(want.Steps) != len(got.Steps) {
		return mismatch("steps", fmt.Sprint(len(want.Steps)), fmt.Sprint(len(got.Steps)))
	}
	for i := range want.Steps {
		if want.Steps[i] != got.Steps[i] {
			return mismatch(fmt.Sprintf("steps[%d]", i), fmt.Sprintf("%+v", want.Steps[i]), fmt.Sprintf("%+v", got.Steps[i]))
		}
	}
	if want.Digest != got.Digest {
		return mismatch("digest", want.Digest, got.Digest)
	}

	wantHash, err := digest.Record(want)
	if err != nil {
		return err
	}
	gotHash, err := digest.Record(got)
	if err != nil {
		return err
	}
	if wantHash != gotHash {
		return mismatch("record", wantHash, gotHash)
	}
	return nil
}

func quoted(s string) string {
	return fmt.Sprintf("%q", s)
}
