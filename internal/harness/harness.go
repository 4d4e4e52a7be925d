package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/moviola/moviola/internal/player"
	"github.com/moviola/moviola/internal/testutil"
)

// DefaultSessionToken keys traces when the scenario does not pin one.
const DefaultSessionToken = "scenario-session-0001"

// DefaultWallClockMs is the frozen wall-clock instant scenarios run at. It
// only matters for event-free sessions, whose reconciled start falls back to
// the wall clock.
const DefaultWallClockMs = 1_700_000_000_000

// Harness wires one scenario's engine and doubles together.
//
// Every scenario gets a fresh engine, a fresh scripted renderer, and a fresh
// manual scheduler, so scenarios are isolated and deterministic: the trace a
// scenario produces depends only on its YAML.
type Harness struct {
	player    *player.Player
	factory   *testutil.ScriptedFactory
	renderer  *testutil.ScriptedRenderer
	scheduler *testutil.ManualScheduler
	cfg       player.Config
}

// Run executes a scenario against a real engine and returns the result.
//
// Execution flow:
//  1. Build the engine with deterministic doubles (scripted renderer,
//     manual scheduler, fixed session token, frozen wall clock).
//  2. Load the session fixture and run deferred listener attachment.
//  3. Apply the steps in order, validating each expect clause.
//  4. Drain engine updates into the trace after the load and every step.
//  5. Evaluate the assertions against the final trace and state.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.player.Close()

	result := NewResult()
	h.load(scenario, result)

	for i, step := range scenario.Steps {
		h.runStep(i, step, result)
	}

	actx := &AssertionContext{
		Player:   h.player,
		Renderer: h.renderer,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError("%s", msg)
	}

	return result, nil
}

// newHarness builds the engine under test and its scripted surroundings.
func newHarness(s *Scenario) (*Harness, error) {
	cfg := player.DefaultConfig()
	if s.Config.SeekRetryLimit != nil {
		cfg.SeekRetryLimit = *s.Config.SeekRetryLimit
	}
	if s.Config.SeekSkipMs != nil {
		cfg.SeekSkipMs = *s.Config.SeekSkipMs
	}
	if s.Config.MinSpeed != nil {
		cfg.MinSpeed = *s.Config.MinSpeed
	}
	if s.Config.MaxSpeed != nil {
		cfg.MaxSpeed = *s.Config.MaxSpeed
	}

	rend := testutil.NewScriptedRenderer()
	rend.GotoFailures = s.Renderer.GotoFailures
	rend.HoldLoaded = s.Renderer.HoldLoaded
	if s.Renderer.PlayError {
		rend.PlayErr = errors.New("scripted play failure")
	}
	if s.Renderer.PauseError {
		rend.PauseErr = errors.New("scripted pause failure")
	}
	if s.Renderer.SetSpeedError {
		rend.SetSpeedErr = errors.New("scripted set-speed failure")
	}

	factory := testutil.NewScriptedFactory()
	factory.Next = rend
	if s.Renderer.FactoryError {
		factory.NewErr = errors.New("scripted renderer construction failure")
	}

	token := s.SessionToken
	if token == "" {
		token = DefaultSessionToken
	}

	scheduler := testutil.NewManualScheduler()
	p, err := player.New(factory,
		player.WithConfig(cfg),
		player.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
		player.WithScheduler(scheduler),
		player.WithTokenGenerator(testutil.NewStaticTokenGenerator(token)),
		player.WithWallClock(testutil.NewFrozenClock(DefaultWallClockMs)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to construct player: %w", err)
	}

	return &Harness{
		player:    p,
		factory:   factory,
		scheduler: scheduler,
		cfg:       cfg,
	}, nil
}

// load runs the session fixture through the engine and drains the resulting
// updates into the trace.
func (h *Harness) load(s *Scenario, result *Result) {
	err := h.player.LoadSession(s.Session.events(), s.Session.metadata(), s.Session.telemetry())
	result.recordOp("load", "")

	if s.ExpectLoadError != "" {
		if err == nil {
			result.AddError("load: expected error containing %q, got success", s.ExpectLoadError)
		} else if !strings.Contains(err.Error(), s.ExpectLoadError) {
			result.AddError("load: expected error containing %q, got %q", s.ExpectLoadError, err)
		}
	} else if err != nil {
		result.AddError("load: unexpected error: %v", err)
	}

	// Listener attachment is deferred through the scheduler. Run it so
	// the scripted renderer can report content loaded before the steps.
	h.scheduler.Drain()

	if created := h.factory.Created(); len(created) > 0 {
		h.renderer = created[len(created)-1]
	}

	h.drainFeed(result)
}

// runStep applies one step, validates its expect clause, and drains the
// engine updates it produced.
func (h *Harness) runStep(index int, step Step, result *Result) {
	opErr := h.applyStep(step)

	var code string
	var replayErr *player.ReplayError
	if errors.As(opErr, &replayErr) {
		code = string(replayErr.Code)
	}
	result.recordOp(step.Op, code)

	expected := ""
	if step.Expect != nil {
		expected = step.Expect.Error
	}
	switch {
	case expected == "" && opErr != nil:
		result.AddError("steps[%d] %s: unexpected error: %v", index, step.Op, opErr)
	case expected != "" && opErr == nil:
		result.AddError("steps[%d] %s: expected error %s, got success", index, step.Op, expected)
	case expected != "" && code != expected:
		result.AddError("steps[%d] %s: expected error %s, got %v", index, step.Op, expected, opErr)
	}

	if step.Expect != nil {
		state := h.player.State()
		if step.Expect.Phase != "" && string(state.Phase) != step.Expect.Phase {
			result.AddError("steps[%d] %s: expected phase %s after step, got %s",
				index, step.Op, step.Expect.Phase, state.Phase)
		}
		if step.Expect.Position != nil && state.CurrentTimeMs != *step.Expect.Position {
			result.AddError("steps[%d] %s: expected position %d after step, got %d",
				index, step.Op, *step.Expect.Position, state.CurrentTimeMs)
		}
	}

	h.drainFeed(result)
}

// applyStep dispatches one step to the engine, the scripted renderer, or the
// scheduler.
func (h *Harness) applyStep(step Step) error {
	switch step.Op {
	case OpPlay:
		return h.player.Play()
	case OpPause:
		return h.player.Pause()
	case OpSeek:
		return h.player.Seek(*step.Ms)
	case OpSkipForward:
		if step.Ms != nil {
			return h.player.SkipForward(*step.Ms)
		}
		return h.player.SkipForward(h.cfg.SkipStepMs)
	case OpSkipBackward:
		if step.Ms != nil {
			return h.player.SkipBackward(*step.Ms)
		}
		return h.player.SkipBackward(h.cfg.SkipStepMs)
	case OpSetSpeed:
		return h.player.SetSpeed(*step.Multiplier)
	case OpMarkerClick:
		markers := h.player.Markers()
		if *step.Marker >= len(markers) {
			return fmt.Errorf("marker index %d out of range (%d markers)", *step.Marker, len(markers))
		}
		return h.player.OnMarkerClick(markers[*step.Marker])
	case OpProgress:
		if h.renderer == nil {
			return fmt.Errorf("no renderer constructed")
		}
		h.renderer.EmitProgress(*step.Fraction)
		return nil
	case OpEmitPlay:
		if h.renderer == nil {
			return fmt.Errorf("no renderer constructed")
		}
		h.renderer.EmitPlay(0)
		return nil
	case OpEmitPause:
		if h.renderer == nil {
			return fmt.Errorf("no renderer constructed")
		}
		h.renderer.EmitPause(0)
		return nil
	case OpEmitLoaded:
		if h.renderer == nil {
			return fmt.Errorf("no renderer constructed")
		}
		h.renderer.EmitLoaded()
		return nil
	case OpPump:
		count := step.Count
		if count == 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			if !h.scheduler.RunNext() {
				return fmt.Errorf("nothing scheduled to run")
			}
		}
		return nil
	case OpDrain:
		h.scheduler.Drain()
		return nil
	default:
		// validateScenario rejects unknown ops before execution.
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// drainFeed moves every pending engine update into the trace, in order.
func (h *Harness) drainFeed(result *Result) {
	feed := h.player.Updates()
	for {
		u, ok := feed.TryNext()
		if !ok {
			return
		}
		switch u.Kind {
		case player.UpdateState:
			result.recordState(StateTrace{
				Phase:      string(u.State.Phase),
				PositionMs: u.State.CurrentTimeMs,
				DurationMs: u.State.DurationMs,
				Speed:      u.State.SpeedMultiplier,
			})
		case player.UpdateHighlight:
			result.recordHighlight(HighlightTrace{
				On:       u.Highlighted,
				Type:     string(u.Marker.Type),
				Label:    u.Marker.Label,
				OffsetMs: u.Marker.TimestampMs,
			})
		}
	}
}
