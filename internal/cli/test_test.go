package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir    = filepath.Join("..", "harness", "testdata", "golden")
)

func TestTest_AllScenariosPass(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, err, stdout)

	assert.Contains(t, stdout, "✓ row_of_three\n")
	assert.Contains(t, stdout, "✓ move_and_reject\n")
	assert.Contains(t, stdout, "Test Summary: 6 passed, 0 failed, 6 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTest_JSON(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir, "--golden", goldenDir, "--filter", "row_*", "--format", "json")
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "row_of_three", result.Scenarios[0].Name)
}

func TestTest_UpdateWritesGoldenFiles(t *testing.T) {
	out := t.TempDir()

	_, _, err := execute(t, "test", scenariosDir, "--golden", out, "--update", "--filter", "closed_loop")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "closed_loop.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(goldenDir, "closed_loop.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTest_GoldenMismatch(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "isolated_engine.golden"), []byte("{}"), 0644))

	stdout, _, err := execute(t, "test", scenariosDir, "--golden", out, "--filter", "isolated_engine")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ isolated_engine")
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `
name: wrong
description: expects the wrong orientation
layout:
  width: 1
  height: 1
  gears:
    - {id: e, x: 0, y: 0, type: engine, teeth: TRBL}
steps:
  - op: tick
assertions:
  - type: orientation
    gear: e
    orientation: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0644))

	stdout, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 1)
	assert.NotEmpty(t, result.Scenarios[0].Errors)
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTest_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing directory", []string{"test", "/nonexistent/scenarios"}},
		{"bad filter", []string{"test", scenariosDir, "--filter", "["}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
