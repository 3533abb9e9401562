package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/pandafill/internal/ir"
)

func runFile(t *testing.T, path string) (*Scenario, *Result) {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(context.Background(), s, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, result
}

func TestRun_Scenarios(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			_, result := runFile(t, file)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_RecordsAndDocuments(t *testing.T) {
	_, result := runFile(t, "testdata/scenarios/failed_event.yaml")

	require.Len(t, result.Records, 2)
	require.Len(t, result.Documents, 2)

	assert.Equal(t, int64(1), result.Records[0].Seq)
	assert.Equal(t, "scenario-failed-event", result.Records[0].RunToken)
	assert.Equal(t, ir.StatusFailed, result.Records[0].Status)
	assert.Nil(t, result.Documents[0])

	assert.Equal(t, int64(2), result.Records[1].Seq)
	assert.Equal(t, ir.StatusOK, result.Records[1].Status)
	require.NotNil(t, result.Documents[1])
	assert.Contains(t, result.Documents[1], "vertices")
}

func TestRun_FailingAssertions(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/muon_links.yaml")
	require.NoError(t, err)

	three, wrongTarget := 3, 1
	s.Assertions = []Assertion{
		{Type: AssertStatus, Status: "failed"},
		{Type: AssertCount, Collection: "muons", Count: &three},
		{Type: AssertField, Path: "muons.0.pt", Equals: 25},
		{Type: AssertAbsent, Path: "muons.0.pt"},
		{Type: AssertRef, Collection: "muons", Index: 0, Field: "matchedPF_", TargetIndex: &wrongTarget},
	}

	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expected: failed")
	assert.Contains(t, result.Errors[1], "3 records in muons")
	assert.Contains(t, result.Errors[2], "muons.0.pt = 25")
	assert.Contains(t, result.Errors[3], "muons.0.pt absent")
	assert.Contains(t, result.Errors[4], "muons[0].matchedPF_ -> 1")
}

func TestRun_AssertionOnFailedEvent(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/failed_event.yaml")
	require.NoError(t, err)

	zero := 0
	s.Assertions = []Assertion{{Type: AssertCount, Event: 0, Collection: "muons", Count: &zero}}

	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	require.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "an output document")
	assert.Contains(t, result.Errors[0], "TYPE_MISMATCH")
}

func TestRun_InvalidConfig(t *testing.T) {
	s := &Scenario{
		Name:        "bad_config",
		Description: "unknown filler",
		Config:      `fillers: ["muons", "jets"]`,
		Events:      []ir.Event{{EventID: ir.EventID{Run: 1, Lumi: 1, Number: 1}}},
		Assertions:  []Assertion{{Type: AssertStatus, Status: "ok"}},
	}

	_, err := Run(context.Background(), s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_config")
}

func TestRun_DefaultRunToken(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/failed_event.yaml")
	require.NoError(t, err)
	s.RunToken = ""

	result, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, "test-run-default", result.Records[0].RunToken)
}
