package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Pointer helpers for scenario literals.
func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func boolp(v bool) *bool     { return &v }

func joinedErrors(r *Result) string {
	return strings.Join(r.Errors, "\n")
}

func TestRun_PlayPauseTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "baseline",
		Description: "Play, report progress, pause",
		Session:     SessionFixture{Events: []int64{1000, 2000, 3000}},
		Steps: []Step{
			{Op: OpPlay},
			{Op: OpProgress, Fraction: f64(0.5)},
			{Op: OpPause},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "paused"},
			{Type: AssertPosition, Position: i64(1000)},
			{Type: AssertSpeed, Speed: f64(1.0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "unexpected failures:\n%s", joinedErrors(result))

	// One op entry per interaction, each followed by the states it caused.
	require.Len(t, result.Trace, 9)
	for i, ev := range result.Trace {
		assert.Equal(t, i+1, ev.Seq, "trace seq must be contiguous")
	}

	assert.Equal(t, TraceOp, result.Trace[0].Type)
	require.NotNil(t, result.Trace[0].Op)
	assert.Equal(t, "load", result.Trace[0].Op.Name)
	assert.Empty(t, result.Trace[0].Op.Error)

	require.NotNil(t, result.Trace[1].State)
	assert.Equal(t, "initializing", result.Trace[1].State.Phase)
	assert.Equal(t, int64(2000), result.Trace[1].State.DurationMs)
	require.NotNil(t, result.Trace[2].State)
	assert.Equal(t, "ready", result.Trace[2].State.Phase)

	require.NotNil(t, result.Trace[3].Op)
	assert.Equal(t, "play", result.Trace[3].Op.Name)
	require.NotNil(t, result.Trace[4].State)
	assert.Equal(t, "playing", result.Trace[4].State.Phase)
	assert.Equal(t, int64(0), result.Trace[4].State.PositionMs)

	require.NotNil(t, result.Trace[5].Op)
	assert.Equal(t, "progress", result.Trace[5].Op.Name)
	require.NotNil(t, result.Trace[6].State)
	assert.Equal(t, "playing", result.Trace[6].State.Phase)
	assert.Equal(t, int64(1000), result.Trace[6].State.PositionMs)

	require.NotNil(t, result.Trace[7].Op)
	assert.Equal(t, "pause", result.Trace[7].Op.Name)
	require.NotNil(t, result.Trace[8].State)
	assert.Equal(t, "paused", result.Trace[8].State.Phase)
	assert.Equal(t, int64(1000), result.Trace[8].State.PositionMs)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "Same scenario, same trace",
		Session:     SessionFixture{Events: []int64{1000, 2000, 3000}},
		Steps: []Step{
			{Op: OpPlay},
			{Op: OpSeek, Ms: i64(1500)},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "playing"},
		},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Pass, second.Pass)
}

func TestRun_ExpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_error",
		Description: "Play is illegal with no events",
		Session:     SessionFixture{Events: []int64{}},
		Steps: []Step{
			{Op: OpPlay, Expect: &ExpectClause{Error: "INVALID_PHASE"}},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "no-events"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "unexpected failures:\n%s", joinedErrors(result))

	// The rejected op is in the trace with its error code.
	require.Len(t, result.Trace, 3)
	assert.Equal(t, "play", result.Trace[2].Op.Name)
	assert.Equal(t, "INVALID_PHASE", result.Trace[2].Op.Error)
}

func TestRun_UnexpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_error",
		Description: "A step without an expect clause must succeed",
		Session:     SessionFixture{Events: []int64{}},
		Steps: []Step{
			{Op: OpPlay},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "no-events"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "steps[0] play: unexpected error")
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_error_missing",
		Description: "Expecting an error that does not happen fails the step",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Steps: []Step{
			{Op: OpPlay, Expect: &ExpectClause{Error: "INVALID_PHASE"}},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "playing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "expected error INVALID_PHASE, got success")
}

func TestRun_ExpectPhaseMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "phase_mismatch",
		Description: "Expect clauses check the phase after the step",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Steps: []Step{
			{Op: OpPlay, Expect: &ExpectClause{Phase: "paused"}},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "playing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "expected phase paused after step, got playing")
}

func TestRun_ExpectPositionMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "position_mismatch",
		Description: "Expect clauses check the position after the step",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Steps: []Step{
			{Op: OpPlay, Expect: &ExpectClause{Position: i64(500)}},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "playing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "expected position 500 after step, got 0")
}

func TestRun_LoadErrorExpected(t *testing.T) {
	scenario := &Scenario{
		Name:            "load_error",
		Description:     "Corrupt captures are rejected at load",
		Session:         SessionFixture{Events: []int64{1000, -5}},
		ExpectLoadError: "negative timestamp",
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "no-events"},
			{Type: AssertTransitions, Reasons: []string{"invalid-events"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "unexpected failures:\n%s", joinedErrors(result))
}

func TestRun_LoadErrorTextMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:            "load_error_text",
		Description:     "The load error must contain the expected text",
		Session:         SessionFixture{Events: []int64{1000, -5}},
		ExpectLoadError: "zero timestamp",
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "no-events"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), `expected error containing "zero timestamp"`)
}

func TestRun_LoadErrorExpectedButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:            "load_error_missing",
		Description:     "Expecting a load error on a valid capture fails",
		Session:         SessionFixture{Events: []int64{1000, 2000}},
		ExpectLoadError: "negative timestamp",
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "ready"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "got success")
}

func TestRun_LoadErrorUnexpected(t *testing.T) {
	scenario := &Scenario{
		Name:        "load_error_unexpected",
		Description: "A load error without expect_load_error fails the scenario",
		Session:     SessionFixture{Events: []int64{1000, -5}},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "no-events"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "load: unexpected error")
}

func TestRun_FactoryErrorSurfacesAsLoadError(t *testing.T) {
	scenario := &Scenario{
		Name:            "factory_error",
		Description:     "Renderer construction failure aborts the load",
		Session:         SessionFixture{Events: []int64{1000, 2000}},
		Renderer:        RendererScript{FactoryError: true},
		ExpectLoadError: "RENDERER_FAILED",
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "idle"},
			// No renderer was constructed, so no goto calls happened.
			{Type: AssertGotoTargets, Targets: []int64{}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "unexpected failures:\n%s", joinedErrors(result))
}

func TestRun_ConfigOverridesApplied(t *testing.T) {
	scenario := &Scenario{
		Name:        "config_override",
		Description: "Scenario config narrows the speed bounds",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Config:      ConfigOverrides{MaxSpeed: f64(2.0)},
		Steps: []Step{
			{Op: OpSetSpeed, Multiplier: f64(4.0), Expect: &ExpectClause{Error: "INVALID_SPEED"}},
			{Op: OpSetSpeed, Multiplier: f64(2.0)},
		},
		Assertions: []Assertion{
			{Type: AssertSpeed, Speed: f64(2.0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "unexpected failures:\n%s", joinedErrors(result))
}

func TestRun_PumpWithNothingScheduled(t *testing.T) {
	scenario := &Scenario{
		Name:        "pump_empty",
		Description: "Pumping an empty scheduler is a scenario bug",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Steps: []Step{
			{Op: OpPump},
		},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "ready"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "nothing scheduled to run")
}

func TestRun_MarkerClickOutOfRange(t *testing.T) {
	scenario := &Scenario{
		Name:        "marker_out_of_range",
		Description: "Clicking a marker the session does not have is a scenario bug",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Steps: []Step{
			{Op: OpMarkerClick, Marker: intp(0)},
		},
		Assertions: []Assertion{
			{Type: AssertMarkerCount, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "marker index 0 out of range")
}

func TestRun_AssertionFailuresCollected(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion_failure",
		Description: "Failed assertions mark the result and keep the trace",
		Session:     SessionFixture{Events: []int64{1000, 2000}},
		Assertions: []Assertion{
			{Type: AssertPhase, Phase: "playing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, joinedErrors(result), "Assertion failed")
	assert.NotEmpty(t, result.Trace, "the trace survives assertion failures for debugging")
}
