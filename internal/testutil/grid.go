// Package testutil holds deterministic helpers shared by gearbox tests:
// record token generators and grid/layout builders.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/layout"
)

// LayoutBuilder assembles a layout.Document gear by gear.
//
//	doc := testutil.NewLayout(3, 1).
//		Gear("left", 0, 0, "-R--").
//		Engine("mid", 1, 0, "-R-L", true).
//		Gear("right", 2, 0, "---L").
//		Document()
type LayoutBuilder struct {
	doc layout.Document
}

// NewLayout starts a width x height layout with no gears.
func NewLayout(width, height int) *LayoutBuilder {
	return &LayoutBuilder{doc: layout.Document{Width: width, Height: height, Gears: []layout.Gear{}}}
}

// Gear adds a normal gear with a pattern like "T-B-".
func (b *LayoutBuilder) Gear(id string, x, y int, teeth string) *LayoutBuilder {
	b.doc.Gears = append(b.doc.Gears, layout.Gear{ID: id, X: x, Y: y, Teeth: teeth})
	return b
}

// Engine adds an engine gear.
func (b *LayoutBuilder) Engine(id string, x, y int, teeth string, clockwise bool) *LayoutBuilder {
	b.doc.Gears = append(b.doc.Gears, layout.Gear{
		ID:              id,
		X:               x,
		Y:               y,
		Type:            board.Engine.String(),
		Teeth:           teeth,
		EngineClockwise: &clockwise,
	})
	return b
}

// Permanent marks the most recently added gear as permanent.
func (b *LayoutBuilder) Permanent() *LayoutBuilder {
	if n := len(b.doc.Gears); n > 0 {
		b.doc.Gears[n-1].Permanent = true
	}
	return b
}

// ToothlessNormals sets the rules.toothless_normals flag.
func (b *LayoutBuilder) ToothlessNormals() *LayoutBuilder {
	b.doc.Rules.ToothlessNormals = true
	return b
}

// Document returns a copy of the assembled layout.
func (b *LayoutBuilder) Document() *layout.Document {
	doc := b.doc
	doc.Gears = append([]layout.Gear(nil), b.doc.Gears...)
	return &doc
}

// Grid builds the board, failing the test on error.
func (b *LayoutBuilder) Grid(t testing.TB) *board.Grid {
	t.Helper()
	g, err := b.Document().Build()
	if err != nil {
		t.Fatalf("building test grid: %v", err)
	}
	return g
}

// WriteJSON writes the layout as name inside dir and returns its path.
func (b *LayoutBuilder) WriteJSON(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := json.MarshalIndent(b.Document(), "", "  ")
	if err != nil {
		t.Fatalf("encoding test layout: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test layout: %v", err)
	}
	return path
}
