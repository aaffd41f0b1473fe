package engine

import "github.com/roach88/gearbox/internal/board"

// VisitedSet records the gears already rotated within one root rotation.
//
// One set is created per root (an engine's tick rotation or a turn) and
// threaded through the entire traversal. Branches never get their own copy:
// that sharing is what stops a closed loop of meshed gears from rotating a
// member twice.
type VisitedSet struct {
	seen map[*board.Unit]struct{}
}

// NewVisitedSet returns a set holding the given units.
func NewVisitedSet(units ...*board.Unit) *VisitedSet {
	v := &VisitedSet{seen: make(map[*board.Unit]struct{}, len(units)+4)}
	for _, u := range units {
		v.Add(u)
	}
	return v
}

// Contains reports whether u has been visited.
func (v *VisitedSet) Contains(u *board.Unit) bool {
	_, ok := v.seen[u]
	return ok
}

// Add marks u as visited.
func (v *VisitedSet) Add(u *board.Unit) {
	v.seen[u] = struct{}{}
}

// Len returns the number of visited units.
func (v *VisitedSet) Len() int {
	return len(v.seen)
}
