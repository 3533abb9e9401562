package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

// copyScenarios copies the harness scenarios into a temp dir so golden
// files can be written next to them.
func copyScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(scenariosDir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scenariosDir, e.Name()))
		require.NoError(t, err)
		writeFile(t, dir, e.Name(), string(data))
	}
	return dir
}

func TestTest_AllScenariosPass(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", scenariosDir)
	require.NoError(t, err)

	var result TestResult
	decodeData(t, out, &result)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Passed)
	assert.Zero(t, result.Failed)
	for _, s := range result.Scenarios {
		assert.True(t, s.Pass, s.Name)
		assert.Equal(t, goldenNone, s.Golden, s.Name)
	}
}

func TestTest_UpdateThenMatch(t *testing.T) {
	dir := copyScenarios(t)

	out, _, err := execute(t, "--format", "json", "test", dir, "--update")
	require.NoError(t, err)
	var updated TestResult
	decodeData(t, out, &updated)
	for _, s := range updated.Scenarios {
		assert.Equal(t, goldenUpdated, s.Golden, s.Name)
	}
	assert.FileExists(t, filepath.Join(dir, "golden", "muon_links.golden"))

	out, _, err = execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)
	var matched TestResult
	decodeData(t, out, &matched)
	assert.Equal(t, 3, matched.Passed)
	for _, s := range matched.Scenarios {
		assert.Equal(t, goldenMatch, s.Golden, s.Name)
	}
}

func TestTest_GoldenDrift(t *testing.T) {
	dir := copyScenarios(t)
	_, _, err := execute(t, "test", dir, "--update", "--filter", "failed_event")
	require.NoError(t, err)

	golden := filepath.Join(dir, "golden", "failed_event.golden")
	writeFile(t, filepath.Dir(golden), filepath.Base(golden), `{"stale":true}`)

	out, _, err := execute(t, "test", dir, "--filter", "failed_event")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL failed_event")
	assert.Contains(t, out, "does not match golden file")
}

func TestTest_Filter(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", scenariosDir, "--filter", "muon_*")
	require.NoError(t, err)

	var result TestResult
	decodeData(t, out, &result)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "muon_links", result.Scenarios[0].Name)
}

func TestTest_FailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "Expects a vertex that is not there"
config: |
  fillers: ["vertices"]
  isRealData: true
  useTrigger: false
events:
  - run: 1
    lumi: 1
    event: 1
assertions:
  - {type: count, event: 0, collection: vertices, count: 1}
`)

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL wrong")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFilterScenarioFiles(t *testing.T) {
	files := []string{"/s/muon_links.yaml", "/s/failed_event.yaml", "/s/trigger_match.yml"}

	assert.Equal(t, []string{"/s/muon_links.yaml"}, filterScenarioFiles(files, "muon_*"))
	assert.Equal(t, []string{"/s/trigger_match.yml"}, filterScenarioFiles(files, "*.yml"))
	assert.Equal(t, []string{"/s/failed_event.yaml"}, filterScenarioFiles(files, "failed_event"))
	assert.Empty(t, filterScenarioFiles(files, "jets*"))
}
