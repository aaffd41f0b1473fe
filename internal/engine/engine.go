package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

// Engine is the single-writer loop around a SimulationClock.
//
// Thread-safety model:
//   - Submit, Enqueue, Stop: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// Every command, including cadence ticks, is applied inside Run, so a
// tick is atomic with respect to moves and turns submitted concurrently.
type Engine struct {
	sim      *SimulationClock
	queue    *commandQueue
	interval time.Duration
	sinks    []trace.Sink

	clock  *Clock
	tokens TokenGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval makes Run tick the board every d. Zero disables the cadence;
// ticks then only happen through submitted commands.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithSink adds a sink that receives every applied record.
func WithSink(s trace.Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

// WithTokenGenerator overrides the UUIDv7 record tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithClock resumes from an existing logical clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine that owns g. Callers must not touch g directly
// while Run is active.
func New(g *board.Grid, opts ...Option) *Engine {
	e := &Engine{queue: newCommandQueue()}
	for _, opt := range opts {
		opt(e)
	}
	e.sim = NewSimulationClock(g, e.clock, e.tokens)
	return e
}

// Simulation returns the underlying simulation clock.
func (e *Engine) Simulation() *SimulationClock { return e.sim }

// Enqueue submits a command without waiting for its outcome.
// Returns false once the engine has stopped.
func (e *Engine) Enqueue(cmd Command) bool {
	return e.queue.Enqueue(request{cmd: cmd})
}

// QueueLen returns the number of commands waiting to be applied.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Submit enqueues cmd and waits for the record it produced.
func (e *Engine) Submit(ctx context.Context, cmd Command) (trace.Record, error) {
	reply := make(chan Result, 1)
	if !e.queue.Enqueue(request{cmd: cmd, reply: reply}) {
		return trace.Record{}, ErrStopped
	}
	select {
	case <-ctx.Done():
		return trace.Record{}, ctx.Err()
	case res := <-reply:
		return res.Record, res.Err
	}
}

// Run applies queued commands and cadence ticks until ctx is cancelled or
// Stop is called.
//
// A failed command (empty cell, permanent gear, rejected move) is reported
// to its submitter and logged; the loop keeps going.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "interval", e.interval, "gears", e.sim.Grid().Len())

	var cadence <-chan time.Time
	if e.interval > 0 {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		cadence = ticker.C
	}

	for {
		if r, ok := e.queue.TryDequeue(); ok {
			e.handle(r)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.shutdown()
			return ctx.Err()

		case <-cadence:
			e.handle(request{cmd: TickCommand()})

		case <-e.queue.Wait():
			// The signal channel is closed by Stop; an empty queue then
			// means there is nothing left to do.
			if e.queue.Len() == 0 && e.isClosed() {
				slog.Info("engine stopping: queue closed")
				e.shutdown()
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once it notices.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) isClosed() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// shutdown closes the queue and fails anything still waiting.
func (e *Engine) shutdown() {
	e.queue.Close()
	for _, r := range e.queue.drain() {
		if r.reply != nil {
			r.reply <- Result{Err: ErrStopped}
		}
	}
}

// handle applies one request. Called only from Run.
func (e *Engine) handle(r request) {
	rec, err := e.apply(r.cmd)
	if err != nil {
		slog.Warn("command refused", "kind", r.cmd.Kind, "at", r.cmd.At, "to", r.cmd.To, "error", err)
	}
	if rec.Token != "" {
		e.publish(rec)
	}
	if r.reply != nil {
		r.reply <- Result{Record: rec, Err: err}
	}
}

func (e *Engine) apply(cmd Command) (trace.Record, error) {
	switch cmd.Kind {
	case trace.KindTick:
		return e.sim.Tick(), nil
	case trace.KindTurn:
		return e.sim.Turn(cmd.At, cmd.Clockwise)
	case trace.KindMove:
		return e.sim.Move(cmd.At, cmd.To)
	default:
		return trace.Record{}, &CommandError{
			Code:    ErrCodeUnknownCommand,
			Message: fmt.Sprintf("unknown command kind %q", cmd.Kind),
			At:      cmd.At,
		}
	}
}

// publish fans a record out to every sink. Sink errors are logged and do
// not affect the simulation.
func (e *Engine) publish(rec trace.Record) {
	for _, s := range e.sinks {
		if err := s.Record(rec); err != nil {
			slog.Error("sink failed", "token", rec.Token, "kind", rec.Kind, "error", err)
		}
	}
}
