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

var (
	// ErrNotFound is returned when a record token is not in the log.
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt is returned when a stored record no longer hashes to the
	// value written with it.
	ErrCorrupt = errors.New("stored record does not match its hash")
)

// LayoutDigest returns the bound layout digest, or "" if none is bound.
func (s *Store) LayoutDigest(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaLayoutDigest).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read layout digest: %w", err)
	}
	return value, nil
}

// ReadRecords returns the whole log in seq order.
func (s *Store) ReadRecords(ctx context.Context) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, token, kind, at_x, at_y, to_x, to_y, clockwise, rejected, digest, record_hash
		FROM records
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	var (
		records []trace.Record
		hashes  []string
	)
	index := make(map[int64]int)
	for rows.Next() {
		rec, hash, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		index[rec.Seq] = len(records)
		records = append(records, rec)
		hashes = append(hashes, hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	steps, err := s.db.QueryContext(ctx, `
		SELECT record_seq, seq, driver_x, driver_y, gear_x, gear_y, gear_id, via, clockwise, depth
		FROM steps
		ORDER BY record_seq ASC, idx ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	defer steps.Close()

	for steps.Next() {
		var recordSeq int64
		st, err := scanStep(steps, &recordSeq)
		if err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		i, ok := index[recordSeq]
		if !ok {
			return nil, fmt.Errorf("read steps: step %d references missing record %d", st.Seq, recordSeq)
		}
		records[i].Steps = append(records[i].Steps, st)
	}
	if err := steps.Err(); err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}

	for i := range records {
		if err := verify(records[i], hashes[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// ReadRecord returns one record by token.
func (s *Store) ReadRecord(ctx context.Context, token string) (trace.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, token, kind, at_x, at_y, to_x, to_y, clockwise, rejected, digest, record_hash
		FROM records
		WHERE token = ?
	`, token)
	rec, hash, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Record{}, fmt.Errorf("%w: %s", ErrNotFound, token)
	}
	if err != nil {
		return trace.Record{}, fmt.Errorf("read record %s: %w", token, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_seq, seq, driver_x, driver_y, gear_x, gear_y, gear_id, via, clockwise, depth
		FROM steps
		WHERE record_seq = ?
		ORDER BY idx ASC
	`, rec.Seq)
	if err != nil {
		return trace.Record{}, fmt.Errorf("read record %s: %w", token, err)
	}
	defer rows.Close()
	for rows.Next() {
		var recordSeq int64
		st, err := scanStep(rows, &recordSeq)
		if err != nil {
			return trace.Record{}, fmt.Errorf("read record %s: %w", token, err)
		}
		rec.Steps = append(rec.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return trace.Record{}, fmt.Errorf("read record %s: %w", token, err)
	}

	if err := verify(rec, hash); err != nil {
		return trace.Record{}, err
	}
	return rec, nil
}

// GearHistory returns every rotation of one gear in seq order.
func (s *Store) GearHistory(ctx context.Context, gearID string) ([]trace.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_seq, seq, driver_x, driver_y, gear_x, gear_y, gear_id, via, clockwise, depth
		FROM steps
		WHERE gear_id = ?
		ORDER BY seq ASC
	`, gearID)
	if err != nil {
		return nil, fmt.Errorf("gear history %s: %w", gearID, err)
	}
	defer rows.Close()

	var out []trace.Step
	for rows.Next() {
		var recordSeq int64
		st, err := scanStep(rows, &recordSeq)
		if err != nil {
			return nil, fmt.Errorf("gear history %s: %w", gearID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// LastSeq returns the highest seq in the log, or 0 for an empty log.
// Steps carry seqs too, so both tables are consulted.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM records
			UNION ALL
			SELECT seq FROM steps
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// Count returns the number of records in the log.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (trace.Record, string, error) {
	var (
		rec       trace.Record
		kind      string
		atX, atY  sql.NullInt64
		toX, toY  sql.NullInt64
		clockwise bool
		hash      string
	)
	err := row.Scan(&rec.Seq, &rec.Token, &kind, &atX, &atY, &toX, &toY, &clockwise, &rec.Rejected, &rec.Digest, &hash)
	if err != nil {
		return trace.Record{}, "", err
	}
	rec.Kind = trace.Kind(kind)
	rec.At = coord(atX, atY)
	rec.To = coord(toX, toY)
	rec.Clockwise = clockwise
	rec.Steps = []trace.Step{}
	return rec, hash, nil
}

func scanStep(row scanner, recordSeq *int64) (trace.Step, error) {
	var st trace.Step
	err := row.Scan(recordSeq, &st.Seq,
		&st.Driver.X, &st.Driver.Y,
		&st.Gear.X, &st.Gear.Y,
		&st.GearID, &st.Via, &st.Clockwise, &st.Depth)
	return st, err
}

func coord(x, y sql.NullInt64) *board.Coordinate {
	if !x.Valid || !y.Valid {
		return nil
	}
	c := board.At(int(x.Int64), int(y.Int64))
	return &c
}

func verify(rec trace.Record, hash string) error {
	got, err := digest.Record(rec)
	if err != nil {
		return fmt.Errorf("verify record %s: %w", rec.Token, err)
	}
	if got != hash {
		return fmt.Errorf("%w: seq %d (%s)", ErrCorrupt, rec.Seq, rec.Token)
	}
	return nil
}
