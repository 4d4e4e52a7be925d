package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviola/moviola/internal/session"
)

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	content := `
name: test_scenario
description: "Scenario parse coverage"
session_token: "fixed-token-1"
session:
  events: [1000, 2000]
  metadata:
    startedAt: 900
    signals:
      - type: rage_click
        timestamp: 1500
  console:
    - timestamp: 950
      level: error
      message: "boom"
  network:
    - timestamp: 980
      status: 503
      message: "GET /api"
renderer:
  goto_failures: 2
  hold_loaded: true
config:
  seek_retry_limit: 5
  seek_skip_ms: 250
steps:
  - op: play
  - op: seek
    ms: 1500
    expect:
      phase: faulted
      position: 1500
  - op: pump
    count: 2
assertions:
  - type: phase
    phase: paused
`
	scenario, err := LoadScenario(writeScenario(t, content))
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Scenario parse coverage", scenario.Description)
	assert.Equal(t, "fixed-token-1", scenario.SessionToken)
	assert.Equal(t, []int64{1000, 2000}, scenario.Session.Events)
	assert.Equal(t, int64(900), scenario.Session.Metadata.StartedAt)
	require.Len(t, scenario.Session.Metadata.Signals, 1)
	assert.Equal(t, "rage_click", scenario.Session.Metadata.Signals[0].Type)
	require.Len(t, scenario.Session.Console, 1)
	assert.Equal(t, "boom", scenario.Session.Console[0].Message)
	require.Len(t, scenario.Session.Network, 1)
	assert.Equal(t, 503, scenario.Session.Network[0].Status)
	assert.Equal(t, 2, scenario.Renderer.GotoFailures)
	assert.True(t, scenario.Renderer.HoldLoaded)
	require.NotNil(t, scenario.Config.SeekRetryLimit)
	assert.Equal(t, 5, *scenario.Config.SeekRetryLimit)
	require.NotNil(t, scenario.Config.SeekSkipMs)
	assert.Equal(t, int64(250), *scenario.Config.SeekSkipMs)

	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, OpPlay, scenario.Steps[0].Op)
	require.NotNil(t, scenario.Steps[1].Ms)
	assert.Equal(t, int64(1500), *scenario.Steps[1].Ms)
	require.NotNil(t, scenario.Steps[1].Expect)
	assert.Equal(t, "faulted", scenario.Steps[1].Expect.Phase)
	require.NotNil(t, scenario.Steps[1].Expect.Position)
	assert.Equal(t, int64(1500), *scenario.Steps[1].Expect.Position)
	assert.Equal(t, 2, scenario.Steps[2].Count)

	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertPhase, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingName(t *testing.T) {
	content := `
description: "Missing name"
session:
  events: []
assertions:
  - type: phase
    phase: no-events
`
	_, err := LoadScenario(writeScenario(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_MissingDescription(t *testing.T) {
	content := `
name: test
session:
  events: []
assertions:
  - type: phase
    phase: no-events
`
	_, err := LoadScenario(writeScenario(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestLoadScenario_MissingEvents(t *testing.T) {
	// A scenario must state its capture explicitly, even when empty.
	content := `
name: test
description: "Test"
session: {}
assertions:
  - type: phase
    phase: no-events
`
	_, err := LoadScenario(writeScenario(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.events is required")
}

func TestLoadScenario_EmptyEventsAllowed(t *testing.T) {
	// events: [] is the explicit empty capture, distinct from a missing key.
	content := `
name: test
description: "Test"
session:
  events: []
assertions:
  - type: phase
    phase: no-events
`
	scenario, err := LoadScenario(writeScenario(t, content))
	require.NoError(t, err)
	assert.NotNil(t, scenario.Session.Events)
	assert.Len(t, scenario.Session.Events, 0)
}

func TestLoadScenario_MissingAssertions(t *testing.T) {
	content := `
name: test
description: "Test"
session:
  events: [1000, 2000]
assertions: []
`
	_, err := LoadScenario(writeScenario(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions list is required")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	content := `
name: test
description: "Test"
session:
  events: [1000
  unclosed: bracket
`
	_, err := LoadScenario(writeScenario(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	// YAML files with typos (unknown fields) should be rejected.
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "typo_assertion_singular",
			yaml: `
name: test
description: Test typo
session:
  events: [1000, 2000]
assertion:
  - type: phase
    phase: ready
assertions:
  - type: phase
    phase: ready
`,
			wantErr: "field assertion not found",
		},
		{
			name: "typo_in_step",
			yaml: `
name: test
description: Test typo
session:
  events: [1000, 2000]
steps:
  - opp: play
assertions:
  - type: phase
    phase: ready
`,
			wantErr: "field opp not found",
		},
		{
			name: "unknown_top_level_field",
			yaml: `
name: test
description: Test typo
session:
  events: [1000, 2000]
unknown_field: value
assertions:
  - type: phase
    phase: ready
`,
			wantErr: "field unknown_field not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_StepValidation(t *testing.T) {
	tests := []struct {
		name     string
		stepYAML string
		wantErr  string
	}{
		{
			name:     "play_needs_no_args",
			stepYAML: "  - op: play",
			wantErr:  "",
		},
		{
			name:     "missing_op",
			stepYAML: "  - ms: 500",
			wantErr:  "steps[0]: op is required",
		},
		{
			name:     "unknown_op",
			stepYAML: "  - op: rewind",
			wantErr:  `steps[0]: unknown op "rewind"`,
		},
		{
			name:     "seek_missing_ms",
			stepYAML: "  - op: seek",
			wantErr:  "ms is required for seek",
		},
		{
			name:     "set_speed_missing_multiplier",
			stepYAML: "  - op: set_speed",
			wantErr:  "multiplier is required for set_speed",
		},
		{
			name:     "progress_missing_fraction",
			stepYAML: "  - op: progress",
			wantErr:  "fraction is required for progress",
		},
		{
			name:     "marker_click_missing_index",
			stepYAML: "  - op: marker_click",
			wantErr:  "marker index is required for marker_click",
		},
		{
			name:     "marker_click_negative_index",
			stepYAML: "  - op: marker_click\n    marker: -1",
			wantErr:  "marker index must not be negative",
		},
		{
			name:     "pump_negative_count",
			stepYAML: "  - op: pump\n    count: -1",
			wantErr:  "count must not be negative for pump",
		},
		{
			name:     "pump_default_count",
			stepYAML: "  - op: pump",
			wantErr:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
name: test
description: "Test"
session:
  events: [1000, 2000]
steps:
` + tt.stepYAML + `
assertions:
  - type: phase
    phase: ready
`
			_, err := LoadScenario(writeScenario(t, content))
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadScenario_AssertionTypes(t *testing.T) {
	tests := []struct {
		name          string
		assertionYAML string
		wantErr       string
	}{
		{
			name:          "phase_valid",
			assertionYAML: "  - type: phase\n    phase: paused",
			wantErr:       "",
		},
		{
			name:          "phase_missing_phase",
			assertionYAML: "  - type: phase",
			wantErr:       "phase is required for phase",
		},
		{
			name:          "position_valid",
			assertionYAML: "  - type: position\n    position: 0",
			wantErr:       "",
		},
		{
			name:          "position_missing_position",
			assertionYAML: "  - type: position",
			wantErr:       "position is required for position",
		},
		{
			name:          "speed_missing_speed",
			assertionYAML: "  - type: speed",
			wantErr:       "speed is required for speed",
		},
		{
			name:          "trace_contains_missing_phase",
			assertionYAML: "  - type: trace_contains\n    position: 500",
			wantErr:       "phase is required for trace_contains",
		},
		{
			name:          "trace_order_missing_phases",
			assertionYAML: "  - type: trace_order",
			wantErr:       "phases list is required for trace_order",
		},
		{
			name:          "transitions_missing_reasons",
			assertionYAML: "  - type: transitions",
			wantErr:       "reasons list is required for transitions",
		},
		{
			name:          "transition_count_missing_reason",
			assertionYAML: "  - type: transition_count\n    count: 2",
			wantErr:       "reason is required for transition_count",
		},
		{
			name:          "transition_count_negative",
			assertionYAML: "  - type: transition_count\n    reason: seek\n    count: -1",
			wantErr:       "count must be non-negative for transition_count",
		},
		{
			name:          "transition_count_zero_allowed",
			assertionYAML: "  - type: transition_count\n    reason: seek\n    count: 0",
			wantErr:       "",
		},
		{
			name:          "goto_targets_missing_targets",
			assertionYAML: "  - type: goto_targets",
			wantErr:       "targets list is required for goto_targets",
		},
		{
			name:          "goto_targets_empty_allowed",
			assertionYAML: "  - type: goto_targets\n    targets: []",
			wantErr:       "",
		},
		{
			name:          "marker_count_zero_allowed",
			assertionYAML: "  - type: marker_count\n    count: 0",
			wantErr:       "",
		},
		{
			name:          "marker_count_negative",
			assertionYAML: "  - type: marker_count\n    count: -2",
			wantErr:       "count must be non-negative for marker_count",
		},
		{
			name:          "reconciliation_missing_source",
			assertionYAML: "  - type: reconciliation\n    start: 1000",
			wantErr:       "source is required for reconciliation",
		},
		{
			name:          "highlighted_missing_on",
			assertionYAML: "  - type: highlighted\n    label: boom",
			wantErr:       "on is required for highlighted",
		},
		{
			name:          "unknown_type",
			assertionYAML: "  - type: unknown_assertion",
			wantErr:       "unknown assertion type",
		},
		{
			name:          "missing_type",
			assertionYAML: "  - phase: ready",
			wantErr:       "type is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
name: test
description: "Test"
session:
  events: [1000, 2000]
assertions:
` + tt.assertionYAML + `
`
			_, err := LoadScenario(writeScenario(t, content))
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSessionFixture_Builders(t *testing.T) {
	f := SessionFixture{
		Events: []int64{1000, 2000, 3000},
		Metadata: MetadataFixture{
			StartedAt: 900,
			Signals:   []SignalFixture{{Type: "rage_click", Timestamp: 1500}},
		},
		Console: []TelemetryFixture{{Timestamp: 950, Level: "error", Message: "boom"}},
		Network: []TelemetryFixture{{Timestamp: 980, Status: 503, Message: "GET /api"}},
	}

	events := f.events()
	require.Len(t, events, 3)
	// First event carries the full snapshot, the rest are mutations.
	assert.Equal(t, session.KindFullSnapshot, events[0].Kind)
	assert.Equal(t, session.KindMutation, events[1].Kind)
	assert.Equal(t, session.KindMutation, events[2].Kind)
	assert.Equal(t, int64(1000), events[0].TimestampMs)

	metadata := f.metadata()
	assert.Equal(t, int64(900), metadata.StartedAtMs)
	require.Len(t, metadata.Signals, 1)
	assert.Equal(t, session.SignalRageClick, metadata.Signals[0].Type)
	assert.Equal(t, int64(1500), metadata.Signals[0].TimestampMs)

	telemetry := f.telemetry()
	require.Len(t, telemetry.Console, 1)
	assert.Equal(t, "boom", telemetry.Console[0].Message)
	assert.Equal(t, "error", telemetry.Console[0].Level)
	require.Len(t, telemetry.Network, 1)
	assert.Equal(t, 503, telemetry.Network[0].Status)
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "phase", AssertPhase)
	assert.Equal(t, "position", AssertPosition)
	assert.Equal(t, "speed", AssertSpeed)
	assert.Equal(t, "trace_contains", AssertTraceContains)
	assert.Equal(t, "trace_order", AssertTraceOrder)
	assert.Equal(t, "transitions", AssertTransitions)
	assert.Equal(t, "transition_count", AssertTransitionCount)
	assert.Equal(t, "goto_targets", AssertGotoTargets)
	assert.Equal(t, "marker_count", AssertMarkerCount)
	assert.Equal(t, "reconciliation", AssertReconciliation)
	assert.Equal(t, "highlighted", AssertHighlighted)
}

// TestLoadExampleScenarios validates every scenario file shipped in
// testdata/scenarios. These serve as documentation and regression tests.
func TestLoadExampleScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "expected example scenarios in testdata/scenarios")

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			// Scenario names match their file names.
			base := filepath.Base(path)
			assert.Equal(t, base[:len(base)-len(".yaml")], scenario.Name)
		})
	}
}
