package engine

import (
	"log/slog"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

// Propagator resolves chain reactions on a grid.
type Propagator struct {
	grid  *board.Grid
	clock *Clock
}

// NewPropagator creates a propagator over g. Steps are stamped from clock.
func NewPropagator(g *board.Grid, clock *Clock) *Propagator {
	return &Propagator{grid: g, clock: clock}
}

// frame is a gear whose four directions are being scanned.
type frame struct {
	unit      *board.Unit
	clockwise bool
	depth     int
	next      int // index into board.Cardinals
}

// Propagate pushes every gear mechanically engaged with origin.
//
// origin must already have been rotated in direction clockwise, and
// visited must contain it. Each pushed gear is added to visited, rotated
// opposite to its driver and then explored before the driver's next
// direction. The returned steps are in rotation order.
func (p *Propagator) Propagate(origin *board.Unit, clockwise bool, visited *VisitedSet) []trace.Step {
	var steps []trace.Step

	stack := []frame{{unit: origin, clockwise: clockwise}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(board.Cardinals) {
			stack = stack[:len(stack)-1]
			continue
		}
		d := board.Cardinals[top.next]
		top.next++

		neighbor, ok := p.engaged(top.unit, d, visited)
		if !ok {
			continue
		}

		driver := top.unit.Position()
		spin := !top.clockwise
		depth := top.depth + 1

		visited.Add(neighbor)
		neighbor.Rotate(spin)

		step := trace.Step{
			Seq:       p.clock.Next(),
			Driver:    driver,
			Gear:      neighbor.Position(),
			GearID:    neighbor.ID(),
			Via:       d.String(),
			Clockwise: spin,
			Depth:     depth,
		}
		steps = append(steps, step)
		slog.Debug("gear pushed",
			"driver", driver,
			"gear", step.Gear,
			"id", step.GearID,
			"via", step.Via,
			"clockwise", spin,
			"depth", depth,
		)

		// top is invalid after this append.
		stack = append(stack, frame{unit: neighbor, clockwise: spin, depth: depth})
	}

	return steps
}

// engaged returns the neighbor of driver in direction d if force crosses
// that edge: both sides had a tooth there before rotating, and the neighbor
// has not rotated yet in this traversal.
func (p *Propagator) engaged(driver *board.Unit, d board.Direction, visited *VisitedSet) (*board.Unit, bool) {
	if !driver.HadToothToward(d) {
		return nil, false
	}
	neighbor, ok := p.grid.Neighbor(driver.Position(), d)
	if !ok {
		return nil, false
	}
	if visited.Contains(neighbor) {
		return nil, false
	}
	if !neighbor.HadToothToward(d.Opposite()) {
		return nil, false
	}
	return neighbor, true
}
