package board

import (
	"fmt"
	"strings"
)

// Type distinguishes passive gears from engines.
type Type int

const (
	// Normal gears rotate only when pushed by a meshed neighbor.
	Normal Type = iota
	// Engine gears rotate on every simulation tick.
	Engine
)

func (t Type) String() string {
	switch t {
	case Normal:
		return "normal"
	case Engine:
		return "engine"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	if t != Normal && t != Engine {
		return nil, fmt.Errorf("unknown gear type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType parses "normal" or "engine". The empty string means Normal.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "engine":
		return Engine, nil
	}
	return Normal, fmt.Errorf("unknown gear type %q", s)
}

// ToothPattern marks which edges carry a tooth in the unrotated frame.
type ToothPattern struct {
	Top    bool `json:"top" yaml:"top"`
	Right  bool `json:"right" yaml:"right"`
	Bottom bool `json:"bottom" yaml:"bottom"`
	Left   bool `json:"left" yaml:"left"`
}

// AllTeeth is the pattern with a tooth on every edge.
var AllTeeth = ToothPattern{Top: true, Right: true, Bottom: true, Left: true}

// Edge reports the tooth flag for a reference-frame edge index
// (0=top, 1=right, 2=bottom, 3=left).
func (p ToothPattern) Edge(i int) bool {
	switch i {
	case 0:
		return p.Top
	case 1:
		return p.Right
	case 2:
		return p.Bottom
	case 3:
		return p.Left
	}
	return false
}

// Count returns the number of teeth.
func (p ToothPattern) Count() int {
	n := 0
	for i := 0; i < 4; i++ {
		if p.Edge(i) {
			n++
		}
	}
	return n
}

// String renders the pattern as four characters in edge order, e.g. "T-B-".
func (p ToothPattern) String() string {
	marks := [4]byte{'T', 'R', 'B', 'L'}
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = '-'
		if p.Edge(i) {
			b[i] = marks[i]
		}
	}
	return string(b[:])
}

// ParseToothPattern parses the four-character form produced by String.
// Each position holds its edge letter (T, R, B, L, any case) or '-'.
func ParseToothPattern(s string) (ToothPattern, error) {
	if len(s) != 4 {
		return ToothPattern{}, fmt.Errorf("tooth pattern %q: want 4 characters", s)
	}
	marks := "TRBL"
	var flags [4]bool
	for i := 0; i < 4; i++ {
		switch c := s[i]; {
		case c == '-':
		case c == marks[i] || c == marks[i]+('a'-'A'):
			flags[i] = true
		default:
			return ToothPattern{}, fmt.Errorf("tooth pattern %q: position %d must be %c or '-'", s, i, marks[i])
		}
	}
	return ToothPattern{Top: flags[0], Right: flags[1], Bottom: flags[2], Left: flags[3]}, nil
}

// Orientation counts quarter turns applied to a gear, in 0..3.
// Clockwise turns increase it.
type Orientation int

// Turn returns the orientation one quarter turn away.
func (o Orientation) Turn(clockwise bool) Orientation {
	step := -1
	if clockwise {
		step = 1
	}
	return Orientation((int(o) + step + 4) % 4)
}

// EdgeToward maps a world direction to the reference-frame edge that
// currently faces it.
func (o Orientation) EdgeToward(d Direction) int {
	return (d.Index() - int(o) + 4) % 4
}
