package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/trace"
)

const metaLayoutDigest = "layout_digest"

// ErrLayoutMismatch is returned when a log is reopened against a layout
// other than the one it was recorded with.
var ErrLayoutMismatch = errors.New("trace log belongs to a different layout")

// WriteRecord appends a record and its steps in one transaction.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - a record already in
// the log is silently skipped. A different record reusing a seq fails.
func (s *Store) WriteRecord(ctx context.Context, rec trace.Record) error {
	hash, err := digest.Record(rec)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write record: begin: %w", err)
	}
	defer tx.Rollback()

	atX, atY := nullCoord(rec.At)
	toX, toY := nullCoord(rec.To)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO records
		(seq, token, kind, at_x, at_y, to_x, to_y, clockwise, rejected, digest, record_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		rec.Seq,
		rec.Token,
		string(rec.Kind),
		atX, atY,
		toX, toY,
		rec.Clockwise,
		rec.Rejected,
		rec.Digest,
		hash,
	)
	if err != nil {
		return fmt.Errorf("write record %s: %w", rec.Token, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write record %s: %w", rec.Token, err)
	} else if n == 0 {
		return nil
	}

	for i, st := range rec.Steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO steps
			(seq, record_seq, idx, driver_x, driver_y, gear_x, gear_y, gear_id, via, clockwise, depth)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			st.Seq,
			rec.Seq,
			i,
			st.Driver.X, st.Driver.Y,
			st.Gear.X, st.Gear.Y,
			st.GearID,
			st.Via,
			st.Clockwise,
			st.Depth,
		)
		if err != nil {
			return fmt.Errorf("write record %s: step %d: %w", rec.Token, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write record %s: commit: %w", rec.Token, err)
	}
	return nil
}

// Sink adapts the store to a trace.Sink writing under ctx.
func (s *Store) Sink(ctx context.Context) trace.Sink {
	return trace.SinkFunc(func(rec trace.Record) error {
		return s.WriteRecord(ctx, rec)
	})
}

// BindLayout ties the log to the digest of its initial board. The first
// call stores it; later calls return ErrLayoutMismatch if it differs.
func (s *Store) BindLayout(ctx context.Context, layoutDigest string) error {
	current, err := s.LayoutDigest(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, metaLayoutDigest, layoutDigest)
		if err != nil {
			return fmt.Errorf("bind layout: %w", err)
		}
		return nil
	}
	if current != layoutDigest {
		return fmt.Errorf("%w: log has %s, layout is %s", ErrLayoutMismatch, short(current), short(layoutDigest))
	}
	return nil
}

func nullCoord(c *board.Coordinate) (sql.NullInt64, sql.NullInt64) {
	if c == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(c.X), Valid: true}, sql.NullInt64{Int64: int64(c.Y), Valid: true}
}

func short(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
