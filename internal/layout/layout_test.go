package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearbox/internal/board"
)

func TestLoad_FormatsAgree(t *testing.T) {
	var snapshots [][]board.State
	for _, name := range []string{"row.yaml", "row.json", "row.cue"} {
		t.Run(name, func(t *testing.T) {
			g, err := LoadGrid(filepath.Join("testdata", name))
			require.NoError(t, err)

			assert.Equal(t, 3, g.Width())
			assert.Equal(t, 1, g.Height())
			motor, ok := g.Lookup(board.At(1, 0))
			require.True(t, ok)
			assert.Equal(t, "motor", motor.ID())
			assert.True(t, motor.IsEngine())
			assert.True(t, motor.Permanent())
			assert.True(t, motor.EngineClockwise(), "engine_clockwise defaults to true")
			assert.Equal(t, board.ToothPattern{Right: true, Left: true}, motor.Teeth())

			snapshots = append(snapshots, g.Snapshot())
		})
	}
	require.Len(t, snapshots, 3)
	assert.Equal(t, snapshots[0], snapshots[1])
	assert.Equal(t, snapshots[0], snapshots[2])
}

func TestLoad_RulesAndDirection(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "ccw_engine.yaml"))
	require.NoError(t, err)
	assert.True(t, doc.Rules.ToothlessNormals)

	g, err := doc.Build()
	require.NoError(t, err)

	e, _ := g.Lookup(board.At(0, 0))
	assert.False(t, e.EngineClockwise())
	assert.Equal(t, 4, e.Teeth().Count(), "engines keep their teeth")

	n, _ := g.Lookup(board.At(1, 0))
	assert.Equal(t, 0, n.Teeth().Count())
	assert.Equal(t, "g1", n.ID())
}

func TestParse_SchemaRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		pointer string
	}{
		{"missing gears", `{"width": 1, "height": 1}`, ""},
		{"zero width", `{"width": 0, "height": 1, "gears": []}`, "/width"},
		{"unknown field", `{"width": 1, "height": 1, "gears": [], "depth": 2}`, ""},
		{"negative x", `{"width": 1, "height": 1, "gears": [{"x": -1, "y": 0}]}`, "/gears/0/x"},
		{"bad type", `{"width": 1, "height": 1, "gears": [{"x": 0, "y": 0, "type": "motor"}]}`, "/gears/0/type"},
		{"bad teeth", `{"width": 1, "height": 1, "gears": [{"x": 0, "y": 0, "teeth": "TRB"}]}`, "/gears/0/teeth"},
		{"teeth and flags", `{"width": 1, "height": 1, "gears": [{"x": 0, "y": 0, "teeth": "T---", "top": true}]}`, "/gears/0"},
		{"float coordinate", `{"width": 1, "height": 1, "gears": [{"x": 0.5, "y": 0}]}`, "/gears/0/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON, "")
			require.Error(t, err)

			var le *Error
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.pointer, le.Pointer)
		})
	}
}

func TestBuild_SetupErrorsPointAtGear(t *testing.T) {
	doc, err := Parse([]byte(`
width: 2
height: 2
gears:
  - {x: 0, y: 0}
  - {x: 0, y: 0}
`), FormatYAML, "")
	require.NoError(t, err)

	_, err = doc.Build()
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "/gears/1", le.Pointer)

	var setup *board.SetupError
	assert.ErrorAs(t, err, &setup)

	doc.Gears = []Gear{{X: 5, Y: 0}}
	_, err = doc.Build()
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "/gears/0", le.Pointer)
}

func TestParse_CUEErrorHasPosition(t *testing.T) {
	_, err := Parse([]byte("width: 3\nwidth: 4\nheight: 1\ngears: []\n"), FormatCUE, "bad.cue")
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Greater(t, le.Line, 0)
}

func TestParse_CUEIncomplete(t *testing.T) {
	_, err := Parse([]byte("width: int\nheight: 1\ngears: []\n"), FormatCUE, "open.cue")
	require.Error(t, err)
}

func TestParse_YAMLSyntax(t *testing.T) {
	_, err := Parse([]byte("width: [1\n"), FormatYAML, "")
	var le *Error
	require.ErrorAs(t, err, &le)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load("layout.toml")
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "unsupported layout extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorAs(t, err, &le)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width": "3"}`), 0o644))
	_, err = Load(path)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
}

func TestFromValue(t *testing.T) {
	doc, err := FromValue(map[string]any{
		"width":  2,
		"height": 1,
		"gears": []any{
			map[string]any{"x": 0, "y": 0, "type": "engine", "teeth": "-R--"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "engine", doc.Gears[0].Type)

	_, err = FromValue(map[string]any{"width": 2})
	assert.Error(t, err)
}

func TestError_Format(t *testing.T) {
	e := &Error{Path: "a.cue", Line: 3, Column: 7, Message: "conflict"}
	assert.Equal(t, "a.cue:3:7: conflict", e.Error())

	e = &Error{Path: "a.json", Pointer: "/gears/0/x", Message: "must be >= 0"}
	assert.Equal(t, "a.json: /gears/0/x: must be >= 0", e.Error())
}

func TestSchema_IsEmbedded(t *testing.T) {
	assert.Contains(t, string(Schema()), `"gears"`)
}
