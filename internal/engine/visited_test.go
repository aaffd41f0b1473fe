package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/gearbox/internal/board"
)

func TestVisitedSet(t *testing.T) {
	a := board.NewUnit(board.Spec{ID: "a"})
	b := board.NewUnit(board.Spec{ID: "b"})

	v := NewVisitedSet(a)
	assert.True(t, v.Contains(a))
	assert.False(t, v.Contains(b))

	v.Add(b)
	v.Add(b)
	assert.True(t, v.Contains(b))
	assert.Equal(t, 2, v.Len())
}
