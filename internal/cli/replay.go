package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gearbox/internal/engine"
	"github.com/roach88/gearbox/internal/store"
	"github.com/roach88/gearbox/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Gear     string // optional - print this gear's rotation history
}

// ReplayReport holds the outcome of a successful replay.
type ReplayReport struct {
	Layout  string       `json:"layout"`
	Records int          `json:"records"`
	LastSeq int64        `json:"last_seq"`
	Digest  string       `json:"digest"`
	Gear    string       `json:"gear,omitempty"`
	History []trace.Step `json:"history,omitempty"`
}

func (r ReplayReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ replayed %s through seq %d (digest %s)", plural(r.Records, "record"), r.LastSeq, shortDigest(r.Digest))
	if r.Gear != "" {
		fmt.Fprintf(&b, "\n%s rotated %s:", r.Gear, plural(len(r.History), "time"))
		for _, s := range r.History {
			dir := "ccw"
			if s.Clockwise {
				dir = "cw"
			}
			fmt.Fprintf(&b, "\n  seq %-5d %-3s at %s", s.Seq, dir, s.Gear)
			if s.Depth > 0 {
				fmt.Fprintf(&b, " pushed %s from %s", s.Via, s.Driver)
			}
		}
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <layout>",
		Short: "Replay a trace log and verify it",
		Long: `Replay a stored trace log onto a fresh build of its layout.

Every record is re-applied in seq order with its original token; the
rotations, board digest and record hash must all come out the same. The
database is only read.

Exit codes:
  0 - The log replays exactly
  1 - Replay diverged, or the log belongs to a different layout
  2 - Command error (database not found, etc.)

Examples:
  gearbox replay ./layouts/row.yaml --db ./row.db
  gearbox replay ./layouts/row.yaml --db ./row.db --gear motor
  gearbox replay ./layouts/row.yaml --db ./row.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Gear, "gear", "", "print the rotation history of this gear")

	return cmd
}

func runReplay(opts *ReplayOptions, layoutPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	l, err := loadLayout(formatter, layoutPath)
	if err != nil {
		return err
	}

	// store.Open would create a missing database; replay must not.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer closeStore(st)

	bound, err := st.LayoutDigest(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read layout digest", err)
	}
	if bound != "" && bound != l.Digest {
		return formatter.Fail(ExitFailure, ErrCodeLayoutMismatch, "database belongs to a different layout",
			fmt.Errorf("%w: log has %s, layout is %s", store.ErrLayoutMismatch, shortDigest(bound), shortDigest(l.Digest)))
	}

	records, err := st.ReadRecords(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			return formatter.Fail(ExitFailure, ErrCodeStore, "trace log is corrupt", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read trace log", err)
	}
	formatter.VerboseLog("Replaying %s from %s", plural(len(records), "record"), opts.Database)

	res, err := engine.Replay(l.Grid, records)
	if err != nil {
		msg := "replay failed"
		var div *engine.DivergenceError
		if errors.As(err, &div) {
			msg = "replay diverged"
		}
		return formatter.Fail(ExitFailure, ErrCodeDiverged, msg, err)
	}

	report := ReplayReport{
		Layout:  layoutPath,
		Records: res.Applied,
		LastSeq: res.LastSeq,
		Digest:  res.Digest,
	}
	if opts.Gear != "" {
		history, err := st.GearHistory(ctx, opts.Gear)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read gear history", err)
		}
		report.Gear = opts.Gear
		report.History = history
	}
	return formatter.Success(report)
}
