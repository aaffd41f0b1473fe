package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func teethMap(u *Unit, has func(*Unit, Direction) bool) [4]bool {
	var out [4]bool
	for i, d := range Cardinals {
		out[i] = has(u, d)
	}
	return out
}

func current(u *Unit, d Direction) bool  { return u.HasToothToward(d) }
func previous(u *Unit, d Direction) bool { return u.HadToothToward(d) }

func TestUnit_RotateSteps(t *testing.T) {
	u := NewUnit(Spec{Type: Normal})
	assert.Equal(t, Orientation(0), u.Orientation())

	u.Rotate(true)
	assert.Equal(t, Orientation(1), u.Orientation())
	assert.Equal(t, Orientation(0), u.PreviousOrientation())

	u.Rotate(false)
	u.Rotate(false)
	assert.Equal(t, Orientation(3), u.Orientation(), "counter-clockwise wraps below zero")
	assert.Equal(t, Orientation(0), u.PreviousOrientation())
}

func TestUnit_EngineStepMatchesNormal(t *testing.T) {
	engine := NewUnit(Spec{Type: Engine, EngineClockwise: true})
	normal := NewUnit(Spec{Type: Normal})
	engine.Rotate(true)
	normal.Rotate(true)
	assert.Equal(t, normal.Orientation(), engine.Orientation())
}

func TestUnit_ClockwiseTurnMovesTeeth(t *testing.T) {
	u := NewUnit(Spec{Teeth: ToothPattern{Top: true}})
	assert.True(t, u.HasToothToward(Up))

	u.Rotate(true)
	assert.False(t, u.HasToothToward(Up))
	assert.True(t, u.HasToothToward(Right), "top tooth faces right after a clockwise quarter turn")
	assert.True(t, u.HadToothToward(Up), "previous orientation still faced up")
	assert.False(t, u.HadToothToward(Right))

	u.Rotate(false)
	assert.True(t, u.HasToothToward(Up))
	assert.True(t, u.HadToothToward(Right))
}

func TestUnit_FourRotationsRestoreMapping(t *testing.T) {
	patterns := []ToothPattern{
		{},
		{Top: true},
		{Top: true, Right: true},
		{Top: true, Bottom: true},
		{Right: true, Bottom: true, Left: true},
		AllTeeth,
	}
	for _, p := range patterns {
		for _, clockwise := range []bool{true, false} {
			u := NewUnit(Spec{Teeth: p})
			before := teethMap(u, current)
			for i := 0; i < 4; i++ {
				u.Rotate(clockwise)
			}
			assert.Equal(t, before, teethMap(u, current), "pattern %s clockwise=%v", p, clockwise)
			assert.Equal(t, Orientation(0), u.Orientation())
		}
	}
}

func TestUnit_SingleToothVisitsEveryEdge(t *testing.T) {
	u := NewUnit(Spec{Teeth: ToothPattern{Top: true}})
	seen := map[Direction]bool{}
	for i := 0; i < 4; i++ {
		for _, d := range Cardinals {
			if u.HasToothToward(d) {
				seen[d] = true
			}
		}
		u.Rotate(true)
	}
	assert.Len(t, seen, 4)
}

func TestUnit_PreviousTracksOnlyLatestRotation(t *testing.T) {
	u := NewUnit(Spec{Teeth: ToothPattern{Left: true}})
	u.Rotate(true)
	u.Rotate(true)
	// orientation 2, previous 1: left tooth was facing up, now faces right
	assert.True(t, u.HadToothToward(Up))
	assert.True(t, u.HasToothToward(Right))
	assert.Equal(t, [4]bool{true, false, false, false}, teethMap(u, previous))
}

func TestUnit_ToothlessNormal(t *testing.T) {
	u := NewUnit(Spec{Type: Normal, Teeth: AllTeeth, Toothless: true})
	for _, d := range Cardinals {
		assert.False(t, u.HasToothToward(d))
		assert.False(t, u.HadToothToward(d))
	}
	assert.Equal(t, ToothPattern{}, u.Teeth())

	engine := NewUnit(Spec{Type: Engine, Teeth: AllTeeth, Toothless: true})
	assert.True(t, engine.HasToothToward(Up), "toothless applies to normal gears only")
}

func TestToothPattern_String(t *testing.T) {
	assert.Equal(t, "T-B-", ToothPattern{Top: true, Bottom: true}.String())
	assert.Equal(t, "TRBL", AllTeeth.String())
	assert.Equal(t, "----", ToothPattern{}.String())
	assert.Equal(t, 2, ToothPattern{Right: true, Left: true}.Count())
}

func TestParseToothPattern(t *testing.T) {
	p, err := ParseToothPattern("t-B-")
	assert.NoError(t, err)
	assert.Equal(t, ToothPattern{Top: true, Bottom: true}, p)

	for _, s := range []string{"TRBL", "----", "-R-L"} {
		p, err := ParseToothPattern(s)
		assert.NoError(t, err)
		assert.Equal(t, s, p.String())
	}

	for _, bad := range []string{"TRB", "RTBL", "T-B-x"} {
		_, err := ParseToothPattern(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("ENGINE")
	assert.NoError(t, err)
	assert.Equal(t, Engine, typ)

	typ, err = ParseType("")
	assert.NoError(t, err)
	assert.Equal(t, Normal, typ)

	_, err = ParseType("motor")
	assert.Error(t, err)
}
