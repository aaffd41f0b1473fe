// Package layout reads the initial board composition.
//
// A layout is a width, a height, optional rules and an ordered list of
// gears. It can be written as YAML, JSON or CUE. Every format is reduced to
// JSON, checked against the embedded JSON Schema and then decoded strictly,
// so the three formats accept exactly the same documents.
//
// Layouts are the only source of grid composition. Nothing in gearbox
// writes one back.
package layout

import (
	"errors"
	"fmt"

	"github.com/roach88/gearbox/internal/board"
)

// Document is a decoded layout file.
type Document struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Rules  Rules  `json:"rules,omitempty" yaml:"rules,omitempty"`
	Gears  []Gear `json:"gears" yaml:"gears"`
}

// Rules toggles board-wide interpretation of the gear list.
type Rules struct {
	// ToothlessNormals turns every Normal gear into a plain disc that
	// neither drives nor is driven. Engines keep their teeth.
	ToothlessNormals bool `json:"toothless_normals,omitempty" yaml:"toothless_normals,omitempty"`
}

// Gear is one cell of the layout.
//
// Teeth may be given either as the four edge flags or as a pattern string
// such as "T-B-", never both.
type Gear struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Permanent bool   `json:"permanent,omitempty" yaml:"permanent,omitempty"`

	// EngineClockwise defaults to true when omitted.
	EngineClockwise *bool `json:"engine_clockwise,omitempty" yaml:"engine_clockwise,omitempty"`

	Teeth  string `json:"teeth,omitempty" yaml:"teeth,omitempty"`
	Top    bool   `json:"top,omitempty" yaml:"top,omitempty"`
	Right  bool   `json:"right,omitempty" yaml:"right,omitempty"`
	Bottom bool   `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   bool   `json:"left,omitempty" yaml:"left,omitempty"`
}

// Pattern returns the gear's tooth pattern.
func (g Gear) Pattern() (board.ToothPattern, error) {
	if g.Teeth != "" {
		return board.ParseToothPattern(g.Teeth)
	}
	return board.ToothPattern{Top: g.Top, Right: g.Right, Bottom: g.Bottom, Left: g.Left}, nil
}

// Specs converts the gear list to board specs in document order.
func (d *Document) Specs() ([]board.Spec, error) {
	specs := make([]board.Spec, 0, len(d.Gears))
	for i, g := range d.Gears {
		kind, err := board.ParseType(g.Type)
		if err != nil {
			return nil, &Error{Pointer: gearPointer(i, "type"), Message: err.Error(), Err: err}
		}
		teeth, err := g.Pattern()
		if err != nil {
			return nil, &Error{Pointer: gearPointer(i, "teeth"), Message: err.Error(), Err: err}
		}
		clockwise := true
		if g.EngineClockwise != nil {
			clockwise = *g.EngineClockwise
		}
		specs = append(specs, board.Spec{
			ID:              g.ID,
			Position:        board.At(g.X, g.Y),
			Type:            kind,
			Teeth:           teeth,
			Permanent:       g.Permanent,
			EngineClockwise: clockwise,
			Toothless:       d.Rules.ToothlessNormals,
		})
	}
	return specs, nil
}

// Build creates the grid the document describes.
func (d *Document) Build() (*board.Grid, error) {
	specs, err := d.Specs()
	if err != nil {
		return nil, err
	}
	g, err := board.New(d.Width, d.Height, specs)
	if err != nil {
		var setup *board.SetupError
		if errors.As(err, &setup) && setup.Index >= 0 {
			return nil, &Error{Pointer: gearPointer(setup.Index, ""), Message: setup.Message, Err: err}
		}
		return nil, &Error{Message: err.Error(), Err: err}
	}
	return g, nil
}

func gearPointer(i int, field string) string {
	if field == "" {
		return fmt.Sprintf("/gears/%d", i)
	}
	return fmt.Sprintf("/gears/%d/%s", i, field)
}
