package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

func teeth(s string) board.ToothPattern {
	p, err := board.ParseToothPattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func normal(id string, x, y int, pattern string) board.Spec {
	return board.Spec{ID: id, Position: board.At(x, y), Type: board.Normal, Teeth: teeth(pattern)}
}

func motor(id string, x, y int, pattern string, clockwise bool) board.Spec {
	return board.Spec{
		ID:              id,
		Position:        board.At(x, y),
		Type:            board.Engine,
		Teeth:           teeth(pattern),
		EngineClockwise: clockwise,
	}
}

func newGrid(t *testing.T, w, h int, specs ...board.Spec) *board.Grid {
	t.Helper()
	g, err := board.New(w, h, specs)
	require.NoError(t, err)
	return g
}

func unitAt(t *testing.T, g *board.Grid, x, y int) *board.Unit {
	t.Helper()
	u, ok := g.Lookup(board.At(x, y))
	require.True(t, ok, "no gear at (%d,%d)", x, y)
	return u
}

func stepGears(r []trace.Step) []board.Coordinate {
	out := make([]board.Coordinate, len(r))
	for i, s := range r {
		out[i] = s.Gear
	}
	return out
}
