package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

func TestTest_AllPass(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"jack_wins.yaml": passingScenario})

	out, err := execute(t, "text", NewTestCommand, dir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ jack_wins")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTest_SomeFail(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"jack_wins.yaml":   passingScenario,
		"wrong_guess.yaml": failingScenario,
		"notes.txt":        "ignored",
	})

	out, err := execute(t, "json", NewTestCommand, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestTest_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"jack_wins.yaml":   passingScenario,
		"wrong_guess.yaml": failingScenario,
	})

	out, err := execute(t, "text", NewTestCommand, "--filter", "jack_*", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestTest_UpdateThenCompareGolden(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"jack_wins.yaml": passingScenario})

	out, err := execute(t, "text", NewTestCommand, "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	goldenPath := filepath.Join(dir, "golden", "jack_wins.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"jack_wins"`)

	_, err = execute(t, "text", NewTestCommand, dir)
	require.NoError(t, err)

	writeFile(t, goldenPath, `{"scenario_name":"jack_wins","trace":[]}`)
	out, err = execute(t, "text", NewTestCommand, dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_LoadErrorIsScenarioFailure(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	out, err := execute(t, "text", NewTestCommand, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
}

func TestTest_NoScenarios(t *testing.T) {
	out, err := execute(t, "text", NewTestCommand, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, "text", NewTestCommand, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
