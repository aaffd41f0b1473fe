package board

import "fmt"

// Coordinate identifies a grid cell. Comparable, so it is used directly as
// a map key.
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// At is a convenience constructor for Coordinate.
func At(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Step returns the neighboring coordinate in direction d.
func (c Coordinate) Step(d Direction) Coordinate {
	dx, dy := d.Delta()
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

// Less orders coordinates row-major: ascending Y, then ascending X.
func (c Coordinate) Less(other Coordinate) bool {
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.X < other.X
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
