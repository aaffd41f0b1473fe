package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/engine"
	"github.com/roach88/gearbox/internal/store"
	"github.com/roach88/gearbox/internal/trace"
)

// TickOptions holds flags for the tick command.
type TickOptions struct {
	*RootOptions
	Count    int
	Database string

	// Tokens allows overriding the record token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens engine.TokenGenerator
}

// TickReport holds the records produced by a tick run and the final board.
type TickReport struct {
	Records []trace.Record `json:"records"`
	Final   []board.State  `json:"final"`
	Digest  string         `json:"digest"`
}

func (r TickReport) String() string {
	var b strings.Builder
	for _, rec := range r.Records {
		fmt.Fprintf(&b, "tick seq %d: %s\n", rec.Seq, plural(len(rec.Steps), "rotation"))
		for _, s := range rec.Steps {
			dir := "ccw"
			if s.Clockwise {
				dir = "cw"
			}
			fmt.Fprintf(&b, "  %s%s %s %s\n", strings.Repeat("  ", s.Depth), s.GearID, dir, s.Gear)
		}
	}
	b.WriteString("final:\n")
	for _, s := range r.Final {
		fmt.Fprintf(&b, "  %-12s %s orientation %d\n", s.ID, s.Position, s.Orientation)
	}
	fmt.Fprintf(&b, "digest %s", shortDigest(r.Digest))
	return b.String()
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tick <layout>",
		Short: "Advance a layout by a number of ticks",
		Long: `Advance a layout by N ticks and print every rotation.

Without --db the layout starts from its initial state each time. With --db
the stored log is replayed first, the new ticks continue from where it
ended, and their records are appended to it.

Examples:
  gearbox tick ./layouts/row.yaml
  gearbox tick ./layouts/row.yaml -n 4 --db ./row.db
  gearbox tick ./layouts/row.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTick(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of ticks")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to resume and append to")

	return cmd
}

func runTick(opts *TickOptions, layoutPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Count < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--count must be at least 1, got %d", opts.Count), nil)
	}

	l, err := loadLayout(formatter, layoutPath)
	if err != nil {
		return err
	}

	var (
		st    *store.Store
		clock *engine.Clock
	)
	if opts.Database != "" {
		st, clock, err = openLog(ctx, formatter, opts.Database, l)
		if err != nil {
			return err
		}
		defer closeStore(st)
	}

	sim := engine.NewSimulationClock(l.Grid, clock, opts.Tokens)
	report := TickReport{Records: make([]trace.Record, 0, opts.Count)}
	for i := 0; i < opts.Count; i++ {
		rec := sim.Tick()
		if st != nil {
			if err := st.WriteRecord(ctx, rec); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to write record", err)
			}
		}
		report.Records = append(report.Records, rec)
	}
	report.Final = l.Grid.Snapshot()
	report.Digest = digest.MustGrid(l.Grid)

	return formatter.Success(report)
}
