package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gearbox/internal/export"
	"github.com/roach88/gearbox/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Out      string
}

// ExportReport describes a written export file.
type ExportReport struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
}

func (r ExportReport) String() string {
	return fmt.Sprintf("✓ exported %s to %s (%d bytes)", plural(r.Records, "record"), r.Path, r.Bytes)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a trace log as compressed JSON Lines",
		Long: `Export every record of a trace database, in seq order, as
zstd-compressed JSON Lines (one record per line).

The default output path is the database path with its extension replaced
by ` + export.Extension + `.

Examples:
  gearbox export --db ./row.db
  gearbox export --db ./row.db --out ./archive/row` + export.Extension,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer closeStore(st)

	records, err := st.ReadRecords(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read trace log", err)
	}

	out := opts.Out
	if out == "" {
		out = defaultExportPath(opts.Database)
	}
	formatter.VerboseLog("Exporting %s to %s", plural(len(records), "record"), out)

	w, err := export.Create(out)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeExport, "failed to create export file", err)
	}
	for _, rec := range records {
		if err := w.Record(rec); err != nil {
			_ = w.Close()
			return formatter.Fail(ExitCommandError, ErrCodeExport, "failed to write record", err)
		}
	}
	if err := w.Close(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeExport, "failed to finish export file", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeExport, "failed to stat export file", err)
	}
	return formatter.Success(ExportReport{Path: out, Records: w.Count(), Bytes: info.Size()})
}

func defaultExportPath(db string) string {
	if i := strings.LastIndexByte(db, '.'); i > strings.LastIndexAny(db, `/\`) {
		db = db[:i]
	}
	return db + export.Extension
}
