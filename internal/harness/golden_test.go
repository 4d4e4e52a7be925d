package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenScenario loads one of the example scenarios shipped with the package.
func goldenScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return scenario
}

// The golden tests pin the exact update sequence for the core journeys:
// a clean play/pause session, seek recovery after a renderer fault, and the
// no-events terminal state.

func TestGolden_PlayPauseBaseline(t *testing.T) {
	require.NoError(t, RunWithGolden(t, goldenScenario(t, "play_pause_baseline")))
}

func TestGolden_SeekRecoveryResumes(t *testing.T) {
	require.NoError(t, RunWithGolden(t, goldenScenario(t, "seek_recovery_resumes")))
}

func TestGolden_NoEventsTerminal(t *testing.T) {
	require.NoError(t, RunWithGolden(t, goldenScenario(t, "no_events_terminal")))
}

func TestRunWithGolden_FailingScenarioStopsBeforeGolden(t *testing.T) {
	scenario := &Scenario{
		Name:        "golden_failure_guard",
		Description: "Failures surface before the golden comparison",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Assertions:  []Assertion{{Type: AssertPhase, Phase: "playing"}},
	}

	err := RunWithGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario golden_failure_guard failed")
}

func TestTraceSnapshot_JSONShape(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "sample",
		SessionToken: "tok",
		Trace: []TraceEvent{
			{Seq: 1, Type: TraceOp, Op: &OpTrace{Name: "load"}},
			{Seq: 2, Type: TraceState, State: &StateTrace{Phase: "ready", DurationMs: 1000, Speed: 1}},
		},
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"scenario_name": "sample"`)
	assert.Contains(t, text, `"session_token": "tok"`)
	assert.Contains(t, text, `"name": "load"`)
	assert.Contains(t, text, `"phase": "ready"`)
	// Unset optional fields stay out of the snapshot so goldens stay small.
	assert.NotContains(t, text, `"state": null`)
	assert.NotContains(t, text, `"highlight"`)
	assert.NotContains(t, text, `"error"`)
}

func TestTraceSnapshot_OmitsEmptyToken(t *testing.T) {
	snapshot := TraceSnapshot{ScenarioName: "sample", Trace: []TraceEvent{}}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "session_token")
}
