package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

// Domain prefixes. The version suffix allows changing the encoding later.
const (
	DomainBoard  = "gearbox/board/v1"
	DomainRecord = "gearbox/record/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Board digests a board: dimensions plus every unit's mutable state.
// States must be in row-major order, as returned by Grid.Snapshot.
func Board(width, height int, states []board.State) (string, error) {
	units := make([]any, len(states))
	for i, s := range states {
		units[i] = map[string]any{
			"id":        s.ID,
			"x":         s.Position.X,
			"y":         s.Position.Y,
			"o":         int(s.Orientation),
			"p":         int(s.PreviousOrientation),
			"type":      s.Type.String(),
			"teeth":     s.Teeth.String(),
			"fixed":     s.Permanent,
			"engine_cw": s.EngineClockwise,
		}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"w":     width,
		"h":     height,
		"units": units,
	})
	if err != nil {
		return "", fmt.Errorf("board digest: %w", err)
	}
	return hashWithDomain(DomainBoard, canonical), nil
}

// Grid digests the current state of g.
func Grid(g *board.Grid) (string, error) {
	return Board(g.Width(), g.Height(), g.Snapshot())
}

// MustGrid is like Grid but panics on error. Grid states are always
// encodable, so the error path is unreachable for well-formed grids.
func MustGrid(g *board.Grid) string {
	d, err := Grid(g)
	if err != nil {
		panic(err)
	}
	return d
}

// RecordMap converts a record to the canonical value tree.
// The token is left out: it identifies the run, not the outcome.
func RecordMap(rec trace.Record) map[string]any {
	steps := make([]any, len(rec.Steps))
	for i, s := range rec.Steps {
		step := map[string]any{
			"seq":       s.Seq,
			"driver":    []any{s.Driver.X, s.Driver.Y},
			"gear":      []any{s.Gear.X, s.Gear.Y},
			"gear_id":   s.GearID,
			"clockwise": s.Clockwise,
			"depth":     s.Depth,
		}
		if s.Via != "" {
			step["via"] = s.Via
		}
		steps[i] = step
	}

	m := map[string]any{
		"seq":    rec.Seq,
		"kind":   string(rec.Kind),
		"steps":  steps,
		"digest": rec.Digest,
	}
	if rec.At != nil {
		m["at"] = []any{rec.At.X, rec.At.Y}
	}
	if rec.To != nil {
		m["to"] = []any{rec.To.X, rec.To.Y}
	}
	if rec.Kind == trace.KindTurn {
		m["clockwise"] = rec.Clockwise
	}
	if rec.Rejected != "" {
		m["rejected"] = rec.Rejected
	}
	return m
}

// Record digests the outcome of a record, independent of its token.
func Record(rec trace.Record) (string, error) {
	canonical, err := MarshalCanonical(RecordMap(rec))
	if err != nil {
		return "", fmt.Errorf("record digest: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}
