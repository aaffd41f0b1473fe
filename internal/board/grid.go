package board

import (
	"fmt"
	"sort"
)

// Grid is a bounded, sparse mapping from coordinates to gear units.
//
// Grid is not safe for concurrent use. Hosts that share a grid across
// goroutines serialize access per tick (see engine.Engine).
type Grid struct {
	width  int
	height int
	cells  map[Coordinate]*Unit
	units  []*Unit // construction order
}

// New builds a grid and places one unit per spec.
//
// Specs without an ID get "g<index>". Positions must be in bounds and
// unique.
func New(width, height int, specs []Spec) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, &SetupError{Index: -1, Message: fmt.Sprintf("dimensions must be positive, got %dx%d", width, height)}
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make(map[Coordinate]*Unit, len(specs)),
		units:  make([]*Unit, 0, len(specs)),
	}

	ids := make(map[string]int, len(specs))
	for i, s := range specs {
		if !g.InBounds(s.Position) {
			return nil, &SetupError{Index: i, Message: fmt.Sprintf("position %s outside %dx%d grid", s.Position, width, height)}
		}
		if _, taken := g.cells[s.Position]; taken {
			return nil, &SetupError{Index: i, Message: fmt.Sprintf("position %s already occupied", s.Position)}
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("g%d", i)
		}
		if prev, dup := ids[s.ID]; dup {
			return nil, &SetupError{Index: i, Message: fmt.Sprintf("id %q already used by gear[%d]", s.ID, prev)}
		}
		ids[s.ID] = i

		u := NewUnit(s)
		g.cells[s.Position] = u
		g.units = append(g.units, u)
	}

	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether pos lies inside the grid.
func (g *Grid) InBounds(pos Coordinate) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

// IsValidAndEmpty reports whether pos is inside the grid and unoccupied.
func (g *Grid) IsValidAndEmpty(pos Coordinate) bool {
	if !g.InBounds(pos) {
		return false
	}
	_, occupied := g.cells[pos]
	return !occupied
}

// Lookup returns the unit at pos, if any.
func (g *Grid) Lookup(pos Coordinate) (*Unit, bool) {
	u, ok := g.cells[pos]
	return u, ok
}

// Neighbor returns the unit one step from pos in direction d, if any.
func (g *Grid) Neighbor(pos Coordinate, d Direction) (*Unit, bool) {
	return g.Lookup(pos.Step(d))
}

// Move relocates u to `to`.
//
// The target must be in bounds and empty, otherwise a *MoveRejectedError
// is returned and nothing changes. Permanence is not checked here; callers
// that honor it do so before calling Move.
func (g *Grid) Move(u *Unit, to Coordinate) error {
	from := u.position
	if g.cells[from] != u {
		return fmt.Errorf("%w: %s at %s", ErrUnknownUnit, u.id, from)
	}
	if !g.InBounds(to) {
		return &MoveRejectedError{From: from, To: to, Reason: RejectOutOfBounds}
	}
	if _, occupied := g.cells[to]; occupied {
		return &MoveRejectedError{From: from, To: to, Reason: RejectOccupied}
	}

	delete(g.cells, from)
	u.position = to
	g.cells[to] = u
	return nil
}

// Units returns all units in row-major position order.
func (g *Grid) Units() []*Unit {
	out := make([]*Unit, len(g.units))
	copy(out, g.units)
	sort.Slice(out, func(i, j int) bool {
		return out[i].position.Less(out[j].position)
	})
	return out
}

// Engines returns the engine units in row-major position order.
func (g *Grid) Engines() []*Unit {
	var out []*Unit
	for _, u := range g.Units() {
		if u.IsEngine() {
			out = append(out, u)
		}
	}
	return out
}

// Len returns the number of units.
func (g *Grid) Len() int { return len(g.units) }

// Snapshot returns the state of every unit in row-major order.
func (g *Grid) Snapshot() []State {
	units := g.Units()
	out := make([]State, len(units))
	for i, u := range units {
		out[i] = u.Snapshot()
	}
	return out
}
