package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
)

// driveRoot rotates u and propagates from it the way a tick does.
func driveRoot(g *board.Grid, u *board.Unit, clockwise bool) []board.Coordinate {
	u.Rotate(clockwise)
	p := NewPropagator(g, NewClock())
	return stepGears(p.Propagate(u, clockwise, NewVisitedSet(u)))
}

func TestPropagate_RowOfThreeFromMiddle(t *testing.T) {
	g := newGrid(t, 3, 1,
		normal("left", 0, 0, "-R--"),
		motor("mid", 1, 0, "-R-L", true),
		normal("right", 2, 0, "---L"),
	)

	mid := unitAt(t, g, 1, 0)
	mid.Rotate(true)
	steps := NewPropagator(g, NewClock()).Propagate(mid, true, NewVisitedSet(mid))

	require.Len(t, steps, 2)
	// Right is examined before Left.
	assert.Equal(t, "right", steps[0].GearID)
	assert.Equal(t, "right", steps[0].Via)
	assert.Equal(t, "left", steps[1].GearID)
	assert.Equal(t, "left", steps[1].Via)
	for _, s := range steps {
		assert.False(t, s.Clockwise)
		assert.Equal(t, 1, s.Depth)
		assert.Equal(t, board.At(1, 0), s.Driver)
	}

	assert.Equal(t, board.Orientation(1), mid.Orientation())
	assert.Equal(t, board.Orientation(3), unitAt(t, g, 0, 0).Orientation())
	assert.Equal(t, board.Orientation(3), unitAt(t, g, 2, 0).Orientation())
}

func TestPropagate_ChainAlternatesSpin(t *testing.T) {
	specs := []board.Spec{motor("e", 0, 0, "-R--", true)}
	for x := 1; x < 6; x++ {
		specs = append(specs, normal("", x, 0, "-R-L"))
	}
	g := newGrid(t, 6, 1, specs...)

	e := unitAt(t, g, 0, 0)
	e.Rotate(true)
	steps := NewPropagator(g, NewClock()).Propagate(e, true, NewVisitedSet(e))

	require.Len(t, steps, 5)
	for i, s := range steps {
		assert.Equal(t, i+1, s.Depth)
		assert.Equal(t, s.Depth%2 == 0, s.Clockwise, "depth %d", s.Depth)
		assert.Equal(t, board.At(i+1, 0), s.Gear)
	}
}

func TestPropagate_DepthFirstOrder(t *testing.T) {
	// Up is explored fully before Right.
	g := newGrid(t, 2, 2,
		motor("e", 0, 0, "TR--", true),
		normal("up", 0, 1, "-RB-"),
		normal("diag", 1, 1, "--BL"),
		normal("right", 1, 0, "T--L"),
	)

	order := driveRoot(g, unitAt(t, g, 0, 0), true)

	// right was reached through the loop before the engine's own Right.
	assert.Equal(t, []board.Coordinate{board.At(0, 1), board.At(1, 1), board.At(1, 0)}, order)
}

func TestPropagate_ClosedLoopRotatesEachGearOnce(t *testing.T) {
	g := newGrid(t, 2, 2,
		motor("e", 0, 0, "TRBL", true),
		normal("a", 0, 1, "TRBL"),
		normal("b", 1, 1, "TRBL"),
		normal("c", 1, 0, "TRBL"),
	)

	e := unitAt(t, g, 0, 0)
	e.Rotate(true)
	steps := NewPropagator(g, NewClock()).Propagate(e, true, NewVisitedSet(e))

	require.Len(t, steps, 3)
	counts := map[string]int{}
	for _, s := range steps {
		counts[s.GearID]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, counts)
	assert.Equal(t, []string{"a", "b", "c"}, []string{steps[0].GearID, steps[1].GearID, steps[2].GearID})
	assert.Equal(t, []bool{false, true, false}, []bool{steps[0].Clockwise, steps[1].Clockwise, steps[2].Clockwise})
}

func TestPropagate_RingAroundEngine(t *testing.T) {
	specs := []board.Spec{motor("e", 1, 1, "TRBL", true)}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x == 1 && y == 1 {
				continue
			}
			specs = append(specs, normal("", x, y, "TRBL"))
		}
	}
	g := newGrid(t, 3, 3, specs...)

	order := driveRoot(g, unitAt(t, g, 1, 1), true)

	assert.Equal(t, []board.Coordinate{
		board.At(1, 2), board.At(2, 2), board.At(2, 1), board.At(2, 0),
		board.At(1, 0), board.At(0, 0), board.At(0, 1), board.At(0, 2),
	}, order)
	for _, u := range g.Units() {
		if !u.IsEngine() {
			assert.Equal(t, board.Orientation(0), u.PreviousOrientation(), u.ID())
			assert.Contains(t, []board.Orientation{1, 3}, u.Orientation(), u.ID())
		}
	}
}

func TestPropagate_IsolatedEngine(t *testing.T) {
	g := newGrid(t, 3, 3, motor("e", 1, 1, "TRBL", true))
	assert.Empty(t, driveRoot(g, unitAt(t, g, 1, 1), true))
}

func TestPropagate_UsesDriverPreviousOrientation(t *testing.T) {
	// The engine's only tooth faces Right before it rotates and Down after.
	g := newGrid(t, 2, 2,
		motor("e", 0, 1, "-R--", true),
		normal("right", 1, 1, "---L"),
		normal("below", 0, 0, "T---"),
	)

	order := driveRoot(g, unitAt(t, g, 0, 1), true)
	assert.Equal(t, []board.Coordinate{board.At(1, 1)}, order)
}

func TestPropagate_UsesNeighborPreviousOrientation(t *testing.T) {
	g := newGrid(t, 2, 1,
		motor("e", 0, 0, "-R--", true),
		normal("n", 1, 0, "T---"),
	)
	n := unitAt(t, g, 1, 0)

	// Rotating n CCW once moves its tooth to the Left edge, and rotating
	// again leaves the previous orientation facing Left.
	n.Rotate(false)
	require.True(t, n.HasToothToward(board.Left))
	n.Rotate(true)
	require.True(t, n.HadToothToward(board.Left))
	require.False(t, n.HasToothToward(board.Left))

	order := driveRoot(g, unitAt(t, g, 0, 0), true)
	assert.Equal(t, []board.Coordinate{board.At(1, 0)}, order)

	// The mirror case: a tooth facing the engine now but not before.
	g = newGrid(t, 2, 1,
		motor("e", 0, 0, "-R--", true),
		normal("n", 1, 0, "T---"),
	)
	n = unitAt(t, g, 1, 0)
	n.Rotate(true)
	n.Rotate(false)
	n.Rotate(false)
	require.True(t, n.HasToothToward(board.Left))
	require.False(t, n.HadToothToward(board.Left))

	assert.Empty(t, driveRoot(g, unitAt(t, g, 0, 0), true))
}

func TestPropagate_ToothlessNormalsBlock(t *testing.T) {
	specs := []board.Spec{
		motor("e", 0, 0, "-R--", true),
		normal("n", 1, 0, "TRBL"),
	}
	specs[1].Toothless = true
	g := newGrid(t, 2, 1, specs...)

	assert.Empty(t, driveRoot(g, unitAt(t, g, 0, 0), true))
}

func TestPropagate_EngineCanBePushed(t *testing.T) {
	g := newGrid(t, 2, 1,
		motor("a", 0, 0, "-R--", true),
		motor("b", 1, 0, "---L", true),
	)
	order := driveRoot(g, unitAt(t, g, 0, 0), true)
	assert.Equal(t, []board.Coordinate{board.At(1, 0)}, order)
	assert.Equal(t, board.Orientation(3), unitAt(t, g, 1, 0).Orientation())
}

// propagateRecursive is the direct recursive statement of the traversal.
func propagateRecursive(g *board.Grid, u *board.Unit, clockwise bool, visited map[*board.Unit]bool, order *[]board.Coordinate) {
	for _, d := range board.Cardinals {
		if !u.HadToothToward(d) {
			continue
		}
		n, ok := g.Neighbor(u.Position(), d)
		if !ok || visited[n] || !n.HadToothToward(d.Opposite()) {
			continue
		}
		visited[n] = true
		n.Rotate(!clockwise)
		*order = append(*order, n.Position())
		propagateRecursive(g, n, !clockwise, visited, order)
	}
}

func randomSpecs(r *rand.Rand, w, h int) []board.Spec {
	var specs []board.Spec
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r.Intn(5) == 0 {
				continue
			}
			s := board.Spec{
				Position: board.At(x, y),
				Teeth: board.ToothPattern{
					Top:    r.Intn(3) > 0,
					Right:  r.Intn(3) > 0,
					Bottom: r.Intn(3) > 0,
					Left:   r.Intn(3) > 0,
				},
			}
			if r.Intn(6) == 0 {
				s.Type = board.Engine
				s.EngineClockwise = r.Intn(2) == 0
			}
			specs = append(specs, s)
		}
	}
	return specs
}

func TestPropagate_MatchesRecursiveTraversal(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		specs := randomSpecs(r, 8, 8)
		if len(specs) == 0 {
			continue
		}
		gIter := newGrid(t, 8, 8, specs...)
		gRec := newGrid(t, 8, 8, specs...)

		root := specs[r.Intn(len(specs))].Position
		for turn := 0; turn < 3; turn++ {
			clockwise := turn%2 == 0

			got := driveRoot(gIter, unitAt(t, gIter, root.X, root.Y), clockwise)

			u := unitAt(t, gRec, root.X, root.Y)
			u.Rotate(clockwise)
			var want []board.Coordinate
			propagateRecursive(gRec, u, clockwise, map[*board.Unit]bool{u: true}, &want)

			if len(want) == 0 {
				assert.Empty(t, got, "seed %d turn %d", seed, turn)
			} else {
				assert.Equal(t, want, got, "seed %d turn %d", seed, turn)
			}
			assert.Equal(t, digest.MustGrid(gRec), digest.MustGrid(gIter), "seed %d turn %d", seed, turn)
		}
	}
}
