package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `name: passing
description: one row converts
schema: |
  id
input: |
  id
  1
expect:
  output:
    - '{"id":"1"}'
`

const failingScenario = `name: failing
description: expects the wrong output
schema: |
  id
input: |
  id
  1
expect:
  output:
    - '{"id":"2"}'
`

func writeScenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), "", t.TempDir())
	require.NoError(t, err)

	data := dataMap(t, lastJSON(t, stdout))
	assert.EqualValues(t, 0, data["total"])
	assert.Equal(t, []interface{}{}, data["scenarios"])
}

func TestTestCommandRunsHarnessScenarios(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", harnessScenarios)
	require.NoError(t, err, stdout)

	assert.Contains(t, stdout, "✓ multivalue_splitting")
	assert.Contains(t, stdout, "✓ cue_schema_file")
	assert.Contains(t, stdout, "0 failed, 10 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), "",
		harnessScenarios, "--filter", "*header*")
	require.NoError(t, err)

	data := dataMap(t, lastJSON(t, stdout))
	assert.EqualValues(t, 4, data["total"])
	assert.EqualValues(t, 4, data["passed"])
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", harnessScenarios, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"passing.yaml": passingScenario,
		"failing.yaml": failingScenario,
	})

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✓ passing")
	assert.Contains(t, stdout, "✗ failing")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"failing.yaml": failingScenario})

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), "", dir)
	require.Error(t, err)

	resp := lastJSON(t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)

	scenarios := dataMap(t, resp)["scenarios"].([]interface{})
	require.Len(t, scenarios, 1)
	first := scenarios[0].(map[string]interface{})
	assert.Equal(t, "failing", first["name"])
	assert.NotEmpty(t, first["errors"])
}

func TestTestCommandLoadError(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"broken.yaml": "name: broken\nunknown: 1\n"})

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommandUpdateThenCompareGolden(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"passing.yaml": passingScenario})

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir, "--update")
	require.NoError(t, err, stdout)

	goldenPath := filepath.Join(dir, "golden", "passing.golden")
	require.FileExists(t, goldenPath)

	_, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.NoError(t, err)

	// A stale snapshot fails even when the expectations hold.
	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0644))
	stdout, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), "", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "does not match golden file")
}
