package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moviola/moviola/internal/session"
)

// Scenario defines a conformance test scenario.
// A scenario loads one session fixture into a real player, drives it through
// a list of steps, and asserts on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the capture fixture loaded before the steps run.
	Session SessionFixture `yaml:"session"`

	// Renderer scripts the renderer double's failures.
	Renderer RendererScript `yaml:"renderer,omitempty"`

	// Config overrides engine tunables for this scenario.
	Config ConfigOverrides `yaml:"config,omitempty"`

	// SessionToken is an optional fixed token for deterministic traces.
	// If empty, a shared default keeps golden files stable.
	SessionToken string `yaml:"session_token,omitempty"`

	// ExpectLoadError marks the load itself as the behavior under test.
	// When set, the load must fail and the error must contain this text.
	ExpectLoadError string `yaml:"expect_load_error,omitempty"`

	// Steps drive the engine after the load. May be empty for scenarios
	// that only assert on the load outcome.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// SessionFixture describes the capture a scenario replays.
type SessionFixture struct {
	// Events lists recorded-event timestamps in milliseconds. The first
	// event becomes a full snapshot, the rest mutations. Use [] for an
	// empty capture.
	Events []int64 `yaml:"events"`

	// Metadata mirrors the recording agent's session header.
	Metadata MetadataFixture `yaml:"metadata,omitempty"`

	// Console and Network are the out-of-band telemetry streams.
	Console []TelemetryFixture `yaml:"console,omitempty"`
	Network []TelemetryFixture `yaml:"network,omitempty"`
}

// MetadataFixture mirrors session metadata in scenario YAML.
type MetadataFixture struct {
	StartedAt int64           `yaml:"startedAt,omitempty"`
	Signals   []SignalFixture `yaml:"signals,omitempty"`
}

// SignalFixture is one behavioral signal in scenario YAML.
type SignalFixture struct {
	Type      string `yaml:"type"`
	Timestamp int64  `yaml:"timestamp"`
}

// TelemetryFixture is one console or network observation in scenario YAML.
type TelemetryFixture struct {
	Timestamp int64  `yaml:"timestamp"`
	Level     string `yaml:"level,omitempty"`
	Status    int    `yaml:"status,omitempty"`
	Message   string `yaml:"message,omitempty"`
}

// RendererScript configures the scripted renderer double.
type RendererScript struct {
	// GotoFailures fails the first N goto calls, driving seek recovery.
	GotoFailures int `yaml:"goto_failures,omitempty"`

	// PlayError, PauseError, and SetSpeedError make the corresponding
	// renderer command fail.
	PlayError     bool `yaml:"play_error,omitempty"`
	PauseError    bool `yaml:"pause_error,omitempty"`
	SetSpeedError bool `yaml:"set_speed_error,omitempty"`

	// HoldLoaded suppresses the automatic content-loaded callback; the
	// scenario fires it later with an emit_loaded step.
	HoldLoaded bool `yaml:"hold_loaded,omitempty"`

	// FactoryError fails renderer construction during the load.
	FactoryError bool `yaml:"factory_error,omitempty"`
}

// ConfigOverrides replaces selected engine tunables for one scenario.
type ConfigOverrides struct {
	SeekRetryLimit *int     `yaml:"seek_retry_limit,omitempty"`
	SeekSkipMs     *int64   `yaml:"seek_skip_ms,omitempty"`
	MinSpeed       *float64 `yaml:"min_speed,omitempty"`
	MaxSpeed       *float64 `yaml:"max_speed,omitempty"`
}

// Step is one scripted interaction with the engine or its renderer.
type Step struct {
	// Op names the operation. See the Op constants.
	Op string `yaml:"op"`

	// Ms is the target for seek and the distance for skips. Skips fall
	// back to the engine's configured step when omitted.
	Ms *int64 `yaml:"ms,omitempty"`

	// Multiplier is the set_speed argument.
	Multiplier *float64 `yaml:"multiplier,omitempty"`

	// Fraction is the progress argument.
	Fraction *float64 `yaml:"fraction,omitempty"`

	// Marker indexes the session's correlated markers for marker_click.
	Marker *int `yaml:"marker,omitempty"`

	// Count is how many scheduled tasks a pump step runs. Defaults to 1.
	Count int `yaml:"count,omitempty"`

	// Expect validates the step outcome. A step without an expect clause
	// must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of one step.
type ExpectClause struct {
	// Error is the expected engine error code (INVALID_PHASE, NO_SESSION,
	// RENDERER_FAILED, INVALID_SPEED). Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Phase is the expected playback phase right after the step.
	Phase string `yaml:"phase,omitempty"`

	// Position is the expected playback position right after the step.
	Position *int64 `yaml:"position,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type selects the assertion. See the Assert constants.
	Type string `yaml:"type"`

	// Phase is the expected phase (phase, trace_contains).
	Phase string `yaml:"phase,omitempty"`

	// Phases is the expected phase order (trace_order).
	Phases []string `yaml:"phases,omitempty"`

	// Position is the expected playback position (position, trace_contains).
	Position *int64 `yaml:"position,omitempty"`

	// Speed is the expected multiplier (speed).
	Speed *float64 `yaml:"speed,omitempty"`

	// Reason and Count pin transition occurrences (transition_count).
	// Count is also the expected marker total (marker_count).
	Reason string `yaml:"reason,omitempty"`
	Count  int    `yaml:"count,omitempty"`

	// Reasons is the exact transition history (transitions).
	Reasons []string `yaml:"reasons,omitempty"`

	// Targets is the exact renderer goto sequence (goto_targets).
	Targets []int64 `yaml:"targets,omitempty"`

	// MarkerType filters marker_count to one marker type.
	MarkerType string `yaml:"marker_type,omitempty"`

	// Source and Start pin timeline reconciliation (reconciliation).
	Source string `yaml:"source,omitempty"`
	Start  *int64 `yaml:"start,omitempty"`

	// On and Label pin the active highlight (highlighted).
	On    *bool  `yaml:"on,omitempty"`
	Label string `yaml:"label,omitempty"`
}

// Step operations.
const (
	OpPlay         = "play"
	OpPause        = "pause"
	OpSeek         = "seek"
	OpSkipForward  = "skip_forward"
	OpSkipBackward = "skip_backward"
	OpSetSpeed     = "set_speed"
	OpMarkerClick  = "marker_click"
	OpProgress     = "progress"
	OpEmitPlay     = "emit_play"
	OpEmitPause    = "emit_pause"
	OpEmitLoaded   = "emit_loaded"
	OpPump         = "pump"
	OpDrain        = "drain"
)

// Assertion type constants.
const (
	AssertPhase           = "phase"
	AssertPosition        = "position"
	AssertSpeed           = "speed"
	AssertTraceContains   = "trace_contains"
	AssertTraceOrder      = "trace_order"
	AssertTransitions     = "transitions"
	AssertTransitionCount = "transition_count"
	AssertGotoTargets     = "goto_targets"
	AssertMarkerCount     = "marker_count"
	AssertReconciliation  = "reconciliation"
	AssertHighlighted     = "highlighted"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Session.Events == nil {
		return fmt.Errorf("session.events is required (use [] for an empty capture)")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates one step based on its op.
func validateStep(index int, step *Step) error {
	switch step.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpSeek:
		if step.Ms == nil {
			return fmt.Errorf("steps[%d]: ms is required for seek", index)
		}
	case OpSetSpeed:
		if step.Multiplier == nil {
			return fmt.Errorf("steps[%d]: multiplier is required for set_speed", index)
		}
	case OpProgress:
		if step.Fraction == nil {
			return fmt.Errorf("steps[%d]: fraction is required for progress", index)
		}
	case OpMarkerClick:
		if step.Marker == nil {
			return fmt.Errorf("steps[%d]: marker index is required for marker_click", index)
		}
		if *step.Marker < 0 {
			return fmt.Errorf("steps[%d]: marker index must not be negative", index)
		}
	case OpPump:
		if step.Count < 0 {
			return fmt.Errorf("steps[%d]: count must not be negative for pump", index)
		}
	case OpPlay, OpPause, OpSkipForward, OpSkipBackward,
		OpEmitPlay, OpEmitPause, OpEmitLoaded, OpDrain:
		// No arguments.
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required for phase", index)
		}
	case AssertPosition:
		if a.Position == nil {
			return fmt.Errorf("assertions[%d]: position is required for position", index)
		}
	case AssertSpeed:
		if a.Speed == nil {
			return fmt.Errorf("assertions[%d]: speed is required for speed", index)
		}
	case AssertTraceContains:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Phases) == 0 {
			return fmt.Errorf("assertions[%d]: phases list is required for trace_order", index)
		}
	case AssertTransitions:
		if len(a.Reasons) == 0 {
			return fmt.Errorf("assertions[%d]: reasons list is required for transitions", index)
		}
	case AssertTransitionCount:
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for transition_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for transition_count", index)
		}
	case AssertGotoTargets:
		if a.Targets == nil {
			return fmt.Errorf("assertions[%d]: targets list is required for goto_targets (use [] for none)", index)
		}
	case AssertMarkerCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for marker_count", index)
		}
	case AssertReconciliation:
		if a.Source == "" {
			return fmt.Errorf("assertions[%d]: source is required for reconciliation", index)
		}
	case AssertHighlighted:
		if a.On == nil {
			return fmt.Errorf("assertions[%d]: on is required for highlighted", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// events expands the fixture timestamps into a recorded sequence.
func (f SessionFixture) events() []session.RecordedEvent {
	events := make([]session.RecordedEvent, len(f.Events))
	for i, ts := range f.Events {
		kind := session.KindMutation
		if i == 0 {
			kind = session.KindFullSnapshot
		}
		events[i] = session.RecordedEvent{Kind: kind, TimestampMs: ts}
	}
	return events
}

func (f SessionFixture) metadata() session.SessionMetadata {
	signals := make([]session.Signal, len(f.Metadata.Signals))
	for i, sig := range f.Metadata.Signals {
		signals[i] = session.Signal{
			Type:        session.SignalType(sig.Type),
			TimestampMs: sig.Timestamp,
		}
	}
	return session.SessionMetadata{
		StartedAtMs: f.Metadata.StartedAt,
		Signals:     signals,
	}
}

func (f SessionFixture) telemetry() session.Telemetry {
	return session.Telemetry{
		Console: telemetryEvents(f.Console),
		Network: telemetryEvents(f.Network),
	}
}

func telemetryEvents(fixtures []TelemetryFixture) []session.TelemetryEvent {
	if len(fixtures) == 0 {
		return nil
	}
	events := make([]session.TelemetryEvent, len(fixtures))
	for i, f := range fixtures {
		events[i] = session.TelemetryEvent{
			TimestampMs: f.Timestamp,
			Level:       f.Level,
			Status:      f.Status,
			Message:     f.Message,
		}
	}
	return events
}
