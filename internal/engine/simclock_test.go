package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/digest"
	"github.com/roach88/gearbox/internal/trace"
)

func TestTick_EnginesRunInRowMajorOrder(t *testing.T) {
	// b is pushed by a's chain and still takes its own turn afterwards.
	g := newGrid(t, 3, 1,
		motor("b", 2, 0, "---L", false),
		normal("n", 1, 0, "-R-L"),
		motor("a", 0, 0, "-R--", true),
	)
	sim := NewSimulationClock(g, nil, NewFixedGenerator("tick-1"))

	rec := sim.Tick()

	assert.Equal(t, "tick-1", rec.Token)
	assert.Equal(t, trace.KindTick, rec.Kind)
	assert.Equal(t, int64(1), rec.Seq)
	assert.Equal(t, []string{"a", "n", "b", "b"}, rec.GearIDs())
	assert.Equal(t, map[string]int{"a": 1, "n": 1, "b": 2}, rec.Rotations())

	seqs := make([]int64, len(rec.Steps))
	for i, s := range rec.Steps {
		seqs[i] = s.Seq
	}
	assert.Equal(t, []int64{2, 3, 4, 5}, seqs)

	assert.Equal(t, 0, rec.Steps[0].Depth)
	assert.Equal(t, 0, rec.Steps[3].Depth)
	assert.False(t, rec.Steps[3].Clockwise)
	assert.Equal(t, board.Orientation(0), unitAt(t, g, 2, 0).Orientation())
	assert.Equal(t, digest.MustGrid(g), rec.Digest)
}

func TestTick_NoEngines(t *testing.T) {
	g := newGrid(t, 2, 2, normal("n", 0, 0, "TRBL"))
	sim := NewSimulationClock(g, nil, NewFixedGenerator("t"))

	rec := sim.Tick()
	assert.Empty(t, rec.Steps)
	assert.NotNil(t, rec.Steps)
	assert.Equal(t, board.Orientation(0), unitAt(t, g, 0, 0).Orientation())
}

func TestTick_IsolatedEngine(t *testing.T) {
	g := newGrid(t, 3, 3, motor("e", 1, 1, "TRBL", false))
	sim := NewSimulationClock(g, nil, NewFixedGenerator("1", "2"))

	rec := sim.Tick()
	require.Len(t, rec.Steps, 1)
	assert.Equal(t, board.At(1, 1), rec.Steps[0].Driver)
	assert.Equal(t, board.At(1, 1), rec.Steps[0].Gear)
	assert.Empty(t, rec.Steps[0].Via)

	sim.Tick()
	assert.Equal(t, board.Orientation(2), unitAt(t, g, 1, 1).Orientation())
}

func TestTurn(t *testing.T) {
	g := newGrid(t, 2, 1,
		normal("a", 0, 0, "-R--"),
		normal("b", 1, 0, "---L"),
	)
	sim := NewSimulationClock(g, nil, NewFixedGenerator("turn-1"))

	rec, err := sim.Turn(board.At(0, 0), false)
	require.NoError(t, err)

	assert.Equal(t, trace.KindTurn, rec.Kind)
	require.NotNil(t, rec.At)
	assert.Equal(t, board.At(0, 0), *rec.At)
	assert.False(t, rec.Clockwise)
	assert.Equal(t, []string{"a", "b"}, rec.GearIDs())
	assert.True(t, rec.Steps[1].Clockwise)
}

func TestTurn_EmptyCell(t *testing.T) {
	g := newGrid(t, 2, 2, normal("a", 0, 0, "TRBL"))
	sim := NewSimulationClock(g, nil, NewFixedGenerator())

	_, err := sim.Turn(board.At(1, 1), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoGear))

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrCodeNoGear, cmdErr.Code)
	assert.Equal(t, board.At(1, 1), cmdErr.At)
	assert.Equal(t, int64(0), sim.Clock().Current(), "refused commands do not advance the clock")
}

func TestMove_ChangesAdjacency(t *testing.T) {
	g := newGrid(t, 3, 1,
		motor("e", 0, 0, "TRBL", true),
		normal("n", 2, 0, "TRBL"),
	)
	sim := NewSimulationClock(g, nil, NewFixedGenerator("t1", "m1", "t2"))

	assert.Equal(t, []string{"e"}, sim.Tick().GearIDs())

	before := digest.MustGrid(g)
	rec, err := sim.Move(board.At(2, 0), board.At(1, 0))
	require.NoError(t, err)
	assert.Equal(t, trace.KindMove, rec.Kind)
	assert.Empty(t, rec.Steps)
	assert.Empty(t, rec.Rejected)
	assert.NotEqual(t, before, rec.Digest)
	assert.Equal(t, board.Orientation(0), unitAt(t, g, 1, 0).Orientation(), "moving never rotates")

	assert.Equal(t, []string{"e", "n"}, sim.Tick().GearIDs())
}

func TestMove_PermanentRefused(t *testing.T) {
	specs := []board.Spec{normal("p", 0, 0, "TRBL")}
	specs[0].Permanent = true
	g := newGrid(t, 2, 1, specs...)
	sim := NewSimulationClock(g, nil, NewFixedGenerator("m1"))
	before := digest.MustGrid(g)

	rec, err := sim.Move(board.At(0, 0), board.At(1, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermanent))
	assert.Equal(t, "PERMANENT", rec.Rejected)
	assert.Equal(t, "m1", rec.Token)
	assert.Equal(t, before, rec.Digest)
	assert.Equal(t, board.At(0, 0), unitAt(t, g, 0, 0).Position())
}

func TestMove_GridRejections(t *testing.T) {
	tests := []struct {
		name   string
		to     board.Coordinate
		reason board.RejectReason
	}{
		{"occupied", board.At(1, 0), board.RejectOccupied},
		{"own cell", board.At(0, 0), board.RejectOccupied},
		{"out of bounds", board.At(5, 0), board.RejectOutOfBounds},
		{"negative", board.At(0, -1), board.RejectOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, 2, 1,
				normal("a", 0, 0, "TRBL"),
				normal("b", 1, 0, "TRBL"),
			)
			sim := NewSimulationClock(g, nil, NewFixedGenerator("m"))
			before := digest.MustGrid(g)

			rec, err := sim.Move(board.At(0, 0), tt.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, board.ErrMoveRejected))
			assert.Equal(t, string(tt.reason), rec.Rejected)
			assert.Equal(t, before, rec.Digest)
		})
	}
}

func TestMove_EmptyCell(t *testing.T) {
	g := newGrid(t, 2, 1, normal("a", 0, 0, "TRBL"))
	sim := NewSimulationClock(g, nil, NewFixedGenerator())

	rec, err := sim.Move(board.At(1, 0), board.At(0, 0))
	assert.True(t, errors.Is(err, ErrNoGear))
	assert.Empty(t, rec.Token)
}
