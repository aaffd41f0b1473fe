package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/engine"
	"github.com/roach88/gearbox/internal/store"
	"github.com/roach88/gearbox/internal/testutil"
	"github.com/roach88/gearbox/internal/trace"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory trace store for isolation.
// Execution flow:
//  1. Build the grid from the layout
//  2. Start an engine loop that writes every record to the store
//  3. Submit each step, checking its expected error
//  4. Read the log back and replay it onto a second copy of the layout
//  5. Evaluate assertions against the stored records and final board
//
// A returned error means the scenario could not run at all; failed
// expectations are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	doc, err := scenario.Document()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	grid, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefix := scenario.TokenPrefix
	if prefix == "" {
		prefix = scenario.Name
	}
	eng := engine.New(grid,
		engine.WithTokenGenerator(testutil.NewSequenceGenerator(prefix)),
		engine.WithSink(st.Sink(ctx)),
	)

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	result := NewResult()
	for i, step := range scenario.Steps {
		repeat := step.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for n := 0; n < repeat; n++ {
			_, err := eng.Submit(ctx, command(step))
			if msg := checkError(step, err); msg != "" {
				result.AddError(fmt.Sprintf("steps[%d] (%s #%d): %s", i, step.Op, n+1, msg))
			}
		}
	}

	eng.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("engine loop: %w", err)
	}

	result.Records, err = st.ReadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading trace log: %w", err)
	}
	if result.Records == nil {
		result.Records = []trace.Record{}
	}
	result.Final = grid.Snapshot()

	if err := verifyReplay(doc.Build, result, digest.MustGrid(grid)); err != nil {
		result.AddError(err.Error())
	}

	for i, a := range scenario.Assertions {
		if err := evaluate(a, result); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %s", i, err))
		}
	}
	return result, nil
}

func command(step Step) engine.Command {
	switch step.Op {
	case OpMove:
		return engine.MoveCommand(step.From.Coordinate(), step.To.Coordinate())
	case OpTurn:
		clockwise := true
		if step.Clockwise != nil {
			clockwise = *step.Clockwise
		}
		return engine.TurnCommand(step.At.Coordinate(), clockwise)
	}
	return engine.TickCommand()
}

// errorCode names a command error the way scenarios spell it.
func errorCode(err error) string {
	var cmdErr *engine.CommandError
	if errors.As(err, &cmdErr) {
		return string(cmdErr.Code)
	}
	var moveErr *board.MoveRejectedError
	if errors.As(err, &moveErr) {
		return string(moveErr.Reason)
	}
	return err.Error()
}

func checkError(step Step, err error) string {
	switch {
	case err == nil && step.ExpectError == "":
		return ""
	case err == nil:
		return fmt.Sprintf("expected error %s, command succeeded", step.ExpectError)
	case step.ExpectError == "":
		return fmt.Sprintf("unexpected error: %v", err)
	case errorCode(err) != step.ExpectError:
		return fmt.Sprintf("expected error %s, got %s", step.ExpectError, errorCode(err))
	}
	return ""
}

// verifyReplay rebuilds the layout and replays the stored log onto it.
func verifyReplay(build func() (*board.Grid, error), result *Result, want string) error {
	fresh, err := build()
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	res, err := engine.Replay(fresh, result.Records)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if res.Digest != want {
		return fmt.Errorf("replay: final digest %s, live board %s", res.Digest, want)
	}
	return nil
}
