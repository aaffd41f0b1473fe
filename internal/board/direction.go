package board

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal world directions.
//
// The numeric value doubles as the direction index used by connectivity
// math: Up=0, Right=1, Down=2, Left=3.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Cardinals lists the directions in propagation order.
// The order is part of the deterministic traversal contract.
var Cardinals = [4]Direction{Up, Right, Down, Left}

// Valid reports whether d is one of the four cardinals.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Index returns the direction index used for tooth lookups.
//
// Passing anything but a cardinal is a programming error; Index panics
// with ErrInvalidDirection rather than returning a sentinel index.
func (d Direction) Index() int {
	if !d.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidDirection, int(d)))
	}
	return int(d)
}

// Opposite returns the direction pointing back along the same axis.
func (d Direction) Opposite() Direction {
	return Direction((d.Index() + 2) % 4)
}

// Delta returns the coordinate offset of one step in direction d.
// Y grows upward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, 1
	case Right:
		return 1, 0
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	}
	panic(fmt.Errorf("%w: %d", ErrInvalidDirection, int(d)))
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses "up", "right", "down" or "left" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}
