package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: two
description: prints two
program: {print: {succ: 1}}
expect:
  output: ["2"]
  result: unit
`

const failingScenario = `name: wrong
description: expects the wrong output
program: {print: 1}
expect:
  output: ["2"]
`

func TestTestCommand_RepositoryScenarios(t *testing.T) {
	res := execute(t, "test", "../../testdata/scenarios")
	require.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
	assert.Contains(t, res.stdout, "✓ succ_twice")
	assert.Contains(t, res.stdout, ", 0 failed,")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	res := execute(t, "test", dir)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "✓ two")
	assert.Contains(t, res.stdout, "✗ wrong")
	assert.Contains(t, res.stdout, `output: expected ["2"], got ["1"]`)
	assert.Contains(t, res.stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", failingScenario)

	res := execute(t, "--format", "json", "test", dir)
	assert.Equal(t, ExitFailure, res.code)

	resp, _ := decodeResponse(t, res.stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	details := resp.Error.Details.(map[string]any)
	assert.Equal(t, float64(1), details["failed"])
}

func TestTestCommand_Golden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "two.golden")

	res := execute(t, "test", "--update", dir)
	require.Equal(t, ExitSuccess, res.code, res.stdout)
	assert.Contains(t, res.stdout, "✓ two (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t, "scenario: two\nrun_id: test-run-default\noutput:\n  2\nresult: unit\n", string(data))

	res = execute(t, "test", dir)
	require.Equal(t, ExitSuccess, res.code, res.stdout)

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))
	res = execute(t, "test", dir)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "does not match golden file")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	res := execute(t, "test", "--filter", "tw*", dir)
	require.Equal(t, ExitSuccess, res.code, res.stdout)
	assert.Contains(t, res.stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_CommandErrors(t *testing.T) {
	dir := t.TempDir()

	res := execute(t, "test", filepath.Join(dir, "missing"))
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "scenarios directory not found")

	writeFile(t, dir, "broken.yaml", "name: x\n")
	res = execute(t, "test", dir)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "broken.yaml")
}

func TestTestCommand_Empty(t *testing.T) {
	res := execute(t, "test", t.TempDir())
	require.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "No scenarios found.\n", res.stdout)
}
