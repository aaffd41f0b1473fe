package board

// Spec describes one gear of the initial layout.
type Spec struct {
	ID              string
	Position        Coordinate
	Type            Type
	Teeth           ToothPattern
	Permanent       bool
	EngineClockwise bool

	// Toothless makes a Normal gear a plain disc: its pattern is cleared and
	// every connectivity query returns false. Ignored for engines.
	Toothless bool
}

// Unit is a single gear on the grid.
//
// Position and orientation are mutated only through Grid.Move and Rotate.
// Everything else is fixed at construction.
type Unit struct {
	id              string
	kind            Type
	teeth           ToothPattern
	permanent       bool
	engineClockwise bool
	toothless       bool

	position    Coordinate
	orientation Orientation
	previous    Orientation
}

// NewUnit builds a gear from its layout spec, unrotated.
func NewUnit(s Spec) *Unit {
	u := &Unit{
		id:              s.ID,
		kind:            s.Type,
		teeth:           s.Teeth,
		permanent:       s.Permanent,
		engineClockwise: s.EngineClockwise,
		position:        s.Position,
	}
	if s.Toothless && s.Type == Normal {
		u.toothless = true
		u.teeth = ToothPattern{}
	}
	return u
}

func (u *Unit) ID() string                       { return u.id }
func (u *Unit) Type() Type                       { return u.kind }
func (u *Unit) IsEngine() bool                   { return u.kind == Engine }
func (u *Unit) Teeth() ToothPattern              { return u.teeth }
func (u *Unit) Permanent() bool                  { return u.permanent }
func (u *Unit) EngineClockwise() bool            { return u.engineClockwise }
func (u *Unit) Position() Coordinate             { return u.position }
func (u *Unit) Orientation() Orientation         { return u.orientation }
func (u *Unit) PreviousOrientation() Orientation { return u.previous }

// Rotate turns the gear one quarter turn and remembers the orientation it
// left. It does not push neighbors.
func (u *Unit) Rotate(clockwise bool) {
	u.previous = u.orientation
	u.orientation = u.orientation.Turn(clockwise)
}

// HasToothToward reports whether a tooth currently projects toward d.
func (u *Unit) HasToothToward(d Direction) bool {
	return u.toothAt(u.orientation, d)
}

// HadToothToward reports whether a tooth projected toward d before the
// latest rotation. Propagation decisions use this, since the driver has
// already turned by the time its neighbors are examined.
func (u *Unit) HadToothToward(d Direction) bool {
	return u.toothAt(u.previous, d)
}

func (u *Unit) toothAt(o Orientation, d Direction) bool {
	edge := o.EdgeToward(d)
	if u.toothless {
		return false
	}
	return u.teeth.Edge(edge)
}

// State is a read-only snapshot of a unit, for renderers and digests.
type State struct {
	ID                  string       `json:"id"`
	Position            Coordinate   `json:"position"`
	Type                Type         `json:"type"`
	Teeth               ToothPattern `json:"teeth"`
	Orientation         Orientation  `json:"orientation"`
	PreviousOrientation Orientation  `json:"previous_orientation"`
	Permanent           bool         `json:"permanent"`
	EngineClockwise     bool         `json:"engine_clockwise"`
}

// Snapshot captures the unit's current state.
func (u *Unit) Snapshot() State {
	return State{
		ID:                  u.id,
		Position:            u.position,
		Type:                u.kind,
		Teeth:               u.teeth,
		Orientation:         u.orientation,
		PreviousOrientation: u.previous,
		Permanent:           u.permanent,
		EngineClockwise:     u.engineClockwise,
	}
}
