package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/engine"
	"github.com/roach88/gearbox/internal/layout"
	"github.com/roach88/gearbox/internal/store"
)

// loadedLayout is a freshly built board and the digest of its initial
// state, which binds trace databases to it.
type loadedLayout struct {
	Doc    *layout.Document
	Grid   *board.Grid
	Digest string
}

// loadLayout reads and builds a layout file, reporting failures through f.
func loadLayout(f *OutputFormatter, path string) (*loadedLayout, error) {
	doc, err := layout.Load(path)
	if err != nil {
		return nil, layoutFailure(f, path, err)
	}
	grid, err := doc.Build()
	if err != nil {
		return nil, layoutFailure(f, path, err)
	}
	f.VerboseLog("Loaded %s: %dx%d, %d gears", path, grid.Width(), grid.Height(), grid.Len())
	return &loadedLayout{Doc: doc, Grid: grid, Digest: digest.MustGrid(grid)}, nil
}

func layoutFailure(f *OutputFormatter, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "layout not found", err)
	}
	var details any = err.Error()
	var lerr *layout.Error
	if errors.As(err, &lerr) {
		if lerr.Path == "" {
			lerr.Path = path
		}
		details = map[string]any{
			"path":    lerr.Path,
			"pointer": lerr.Pointer,
			"line":    lerr.Line,
			"column":  lerr.Column,
			"message": lerr.Message,
		}
	}
	if outErr := f.Error(ErrCodeLayoutInvalid, "invalid layout: "+err.Error(), details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "invalid layout", err)
}

// openLog opens the trace database at dbPath, binds it to l and replays
// the stored log onto l.Grid, so the board continues where the log ends.
// The returned clock resumes after the last stored seq.
func openLog(ctx context.Context, f *OutputFormatter, dbPath string, l *loadedLayout) (*store.Store, *engine.Clock, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}

	if err := st.BindLayout(ctx, l.Digest); err != nil {
		_ = st.Close()
		if errors.Is(err, store.ErrLayoutMismatch) {
			return nil, nil, f.Fail(ExitFailure, ErrCodeLayoutMismatch, "database belongs to a different layout", err)
		}
		return nil, nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to bind layout", err)
	}

	records, err := st.ReadRecords(ctx)
	if err != nil {
		_ = st.Close()
		return nil, nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to read trace log", err)
	}
	res, err := engine.Replay(l.Grid, records)
	if err != nil {
		_ = st.Close()
		return nil, nil, f.Fail(ExitFailure, ErrCodeDiverged, "stored log does not replay", err)
	}

	last, err := st.LastSeq(ctx)
	if err != nil {
		_ = st.Close()
		return nil, nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to read last seq", err)
	}
	slog.Info("trace log resumed", "db", dbPath, "records", res.Applied, "seq", last)
	return st, engine.NewClockAt(last), nil
}

// closeStore closes st, logging rather than returning the error.
func closeStore(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
