package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult describes a layout that loaded and built cleanly.
type ValidationResult struct {
	Path    string `json:"path"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Gears   int    `json:"gears"`
	Engines int    `json:"engines"`
	Digest  string `json:"digest"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %s: %dx%d, %s, %s (digest %s)",
		r.Path, r.Width, r.Height, plural(r.Gears, "gear"), plural(r.Engines, "engine"), shortDigest(r.Digest))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <layout>",
		Short: "Validate a layout file",
		Long: `Validate a layout file without simulating it.

YAML and JSON layouts are checked against the embedded layout schema, CUE
layouts are evaluated with the CUE SDK, and the board is then built to
catch gears that overlap or fall outside the grid.

Example:
  gearbox validate ./layouts/row.yaml
  gearbox validate ./layouts/row.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	l, err := loadLayout(formatter, path)
	if err != nil {
		return err
	}

	return formatter.Success(ValidationResult{
		Path:    path,
		Width:   l.Grid.Width(),
		Height:  l.Grid.Height(),
		Gears:   l.Grid.Len(),
		Engines: len(l.Grid.Engines()),
		Digest:  l.Digest,
	})
}
