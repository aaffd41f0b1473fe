package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gearbox/internal/engine"
	"github.com/roach88/gearbox/internal/store"
	"github.com/roach88/gearbox/internal/trace"
	"github.com/roach88/gearbox/internal/transport/ws"
)

// shutdownTimeout bounds how long open observer connections may delay exit.
const shutdownTimeout = 5 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval time.Duration
	Database string
	Listen   string

	// Tokens allows overriding the record token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens engine.TokenGenerator

	// OnListen is called with the bound address once the observer server
	// accepts connections (for testing with --listen 127.0.0.1:0).
	OnListen func(addr net.Addr)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <layout>",
		Short: "Run a layout on a tick cadence",
		Long: `Run a layout, ticking it every --interval until interrupted.

Commands are applied by a single-writer loop. With --db every record is
appended to a trace database; an existing log is replayed first so the
run continues where it ended. With --listen every record is also
streamed as JSON to WebSocket observers connected at /trace.

Example:
  gearbox run ./layouts/row.yaml --interval 500ms
  gearbox run ./layouts/row.yaml --db ./row.db --listen :8080 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "time between ticks")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to resume and append to")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "address for the WebSocket observer stream (e.g. :8080)")

	return cmd
}

func runEngine(opts *RunOptions, layoutPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Interval <= 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--interval must be positive, got %s", opts.Interval), nil)
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	l, err := loadLayout(formatter, layoutPath)
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{
		engine.WithInterval(opts.Interval),
		engine.WithSink(trace.SinkFunc(logRecord)),
	}
	if opts.Tokens != nil {
		engineOpts = append(engineOpts, engine.WithTokenGenerator(opts.Tokens))
	}

	if opts.Database != "" {
		var (
			st    *store.Store
			clock *engine.Clock
		)
		st, clock, err = openLog(ctx, formatter, opts.Database, l)
		if err != nil {
			return err
		}
		defer closeStore(st)
		engineOpts = append(engineOpts, engine.WithClock(clock), engine.WithSink(st.Sink(ctx)))
	}

	if opts.Listen != "" {
		hub := ws.NewHub()
		hubCtx, stopHub := context.WithCancel(context.Background())
		defer stopHub()
		go hub.Run(hubCtx)

		srv, err := serveObservers(opts, hub)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to listen", err)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("observer server shutdown", "error", err)
			}
		}()
		engineOpts = append(engineOpts, engine.WithSink(hub))
	}

	eng := engine.New(l.Grid, engineOpts...)

	slog.Info("engine starting", "layout", layoutPath, "db", opts.Database, "listen", opts.Listen)
	fmt.Fprintf(cmd.OutOrStdout(), "Engine started. Ticking every %s...\n", opts.Interval)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	slog.Info("engine stopped gracefully", "seq", eng.Simulation().Clock().Current())
	return nil
}

// serveObservers starts the WebSocket server in the background.
func serveObservers(opts *RunOptions, hub *ws.Hub) (*http.Server, error) {
	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/trace", hub.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("observer server failed", "error", err)
		}
	}()
	slog.Info("observer stream listening", "addr", ln.Addr().String(), "path", "/trace")
	if opts.OnListen != nil {
		opts.OnListen(ln.Addr())
	}
	return srv, nil
}

func logRecord(rec trace.Record) error {
	slog.Info("record applied", "kind", rec.Kind, "seq", rec.Seq, "token", rec.Token, "steps", len(rec.Steps))
	return nil
}
