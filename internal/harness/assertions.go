package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/moviola/moviola/internal/player"
	"github.com/moviola/moviola/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, describeTraceEvent(event))
		}
	}

	return buf.String()
}

func describeTraceEvent(event TraceEvent) string {
	switch event.Type {
	case TraceOp:
		if event.Op.Error != "" {
			return fmt.Sprintf("op %s (error %s)", event.Op.Name, event.Op.Error)
		}
		return fmt.Sprintf("op %s", event.Op.Name)
	case TraceState:
		return fmt.Sprintf("state %s position=%dms speed=%gx",
			event.State.Phase, event.State.PositionMs, event.State.Speed)
	case TraceHighlight:
		if event.Highlight.On {
			return fmt.Sprintf("highlight on %s at %dms", event.Highlight.Type, event.Highlight.OffsetMs)
		}
		return fmt.Sprintf("highlight off %s", event.Highlight.Type)
	default:
		return event.Type
	}
}

// AssertionContext provides engine access for final-state assertions.
type AssertionContext struct {
	// Player is the engine the scenario ran against, still loaded.
	Player *player.Player

	// Renderer is the scripted renderer the scenario drove. Nil when the
	// load never constructed one (no-events and factory-failure scenarios).
	Renderer *testutil.ScriptedRenderer
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the engine and renderer for state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertPhase:
			err = assertPhase(actx.Player, assertion)
		case AssertPosition:
			err = assertPosition(actx.Player, assertion)
		case AssertSpeed:
			err = assertSpeed(actx.Player, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTransitions:
			err = assertTransitions(actx.Player, assertion)
		case AssertTransitionCount:
			err = assertTransitionCount(actx.Player, assertion)
		case AssertGotoTargets:
			err = assertGotoTargets(actx.Renderer, assertion)
		case AssertMarkerCount:
			err = assertMarkerCount(actx.Player, assertion)
		case AssertReconciliation:
			err = assertReconciliation(actx.Player, assertion)
		case AssertHighlighted:
			err = assertHighlighted(actx.Player, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertPhase checks the engine's final phase.
func assertPhase(p *player.Player, assertion Assertion) error {
	actual := string(p.State().Phase)
	if actual != assertion.Phase {
		return &AssertionError{
			Type:     AssertPhase,
			Expected: fmt.Sprintf("final phase %s", assertion.Phase),
			Actual:   fmt.Sprintf("final phase %s", actual),
		}
	}
	return nil
}

// assertPosition checks the engine's final playback position.
func assertPosition(p *player.Player, assertion Assertion) error {
	actual := p.State().CurrentTimeMs
	if actual != *assertion.Position {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: fmt.Sprintf("final position %dms", *assertion.Position),
			Actual:   fmt.Sprintf("final position %dms", actual),
		}
	}
	return nil
}

// assertSpeed checks the engine's final speed multiplier.
func assertSpeed(p *player.Player, assertion Assertion) error {
	actual := p.State().SpeedMultiplier
	if actual != *assertion.Speed {
		return &AssertionError{
			Type:     AssertSpeed,
			Expected: fmt.Sprintf("final speed %gx", *assertion.Speed),
			Actual:   fmt.Sprintf("final speed %gx", actual),
		}
	}
	return nil
}

// assertTraceContains checks that some state update in the trace matches the
// given phase, and position when specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type != TraceState {
			continue
		}
		if event.State.Phase != assertion.Phase {
			continue
		}
		if assertion.Position != nil && event.State.PositionMs != *assertion.Position {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("state update with phase %s", assertion.Phase)
	if assertion.Position != nil {
		expected = fmt.Sprintf("state update with phase %s at %dms", assertion.Phase, *assertion.Position)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the listed phases appear in the trace's state
// updates in order. They need not be consecutive, and the same phase may be
// listed more than once (play, seek, play again).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Phases) {
			break
		}
		if event.Type == TraceState && event.State.Phase == assertion.Phases[next] {
			next++
		}
	}

	if next < len(assertion.Phases) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("phases in order: %v", assertion.Phases),
			Actual:   fmt.Sprintf("no state update with phase %s after the first %d matched", assertion.Phases[next], next),
			Trace:    trace,
		}
	}
	return nil
}

// assertTransitions checks the exact transition reason history.
func assertTransitions(p *player.Player, assertion Assertion) error {
	history := p.History()
	actual := make([]string, len(history))
	for i, tr := range history {
		actual[i] = tr.Reason
	}

	if !slices.Equal(actual, assertion.Reasons) {
		return &AssertionError{
			Type:     AssertTransitions,
			Expected: fmt.Sprintf("transition reasons %v", assertion.Reasons),
			Actual:   fmt.Sprintf("transition reasons %v", actual),
		}
	}
	return nil
}

// assertTransitionCount checks how many transitions carry one reason.
func assertTransitionCount(p *player.Player, assertion Assertion) error {
	count := 0
	for _, tr := range p.History() {
		if tr.Reason == assertion.Reason {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTransitionCount,
			Expected: fmt.Sprintf("%d transitions with reason %q", assertion.Count, assertion.Reason),
			Actual:   fmt.Sprintf("%d transitions", count),
		}
	}
	return nil
}

// assertGotoTargets checks the exact renderer goto sequence, failed attempts
// included. This is how scenarios pin seek recovery's retry targets.
func assertGotoTargets(rend *testutil.ScriptedRenderer, assertion Assertion) error {
	var actual []int64
	if rend != nil {
		actual = rend.GotoCalls()
	}

	if len(actual) == 0 && len(assertion.Targets) == 0 {
		return nil
	}
	if !slices.Equal(actual, assertion.Targets) {
		return &AssertionError{
			Type:     AssertGotoTargets,
			Expected: fmt.Sprintf("goto targets %v", assertion.Targets),
			Actual:   fmt.Sprintf("goto targets %v", actual),
		}
	}
	return nil
}

// assertMarkerCount checks the number of correlated markers, optionally
// filtered by marker type.
func assertMarkerCount(p *player.Player, assertion Assertion) error {
	count := 0
	for _, m := range p.Markers() {
		if assertion.MarkerType != "" && string(m.Type) != assertion.MarkerType {
			continue
		}
		count++
	}

	if count != assertion.Count {
		expected := fmt.Sprintf("%d markers", assertion.Count)
		if assertion.MarkerType != "" {
			expected = fmt.Sprintf("%d markers of type %s", assertion.Count, assertion.MarkerType)
		}
		return &AssertionError{
			Type:     AssertMarkerCount,
			Expected: expected,
			Actual:   fmt.Sprintf("%d markers", count),
		}
	}
	return nil
}

// assertReconciliation checks which input supplied the timeline start, and
// optionally the start instant itself.
func assertReconciliation(p *player.Player, assertion Assertion) error {
	r := p.Reconciliation()

	if string(r.Source) != assertion.Source {
		return &AssertionError{
			Type:     AssertReconciliation,
			Expected: fmt.Sprintf("timeline start from %s", assertion.Source),
			Actual:   fmt.Sprintf("timeline start from %s", r.Source),
		}
	}
	if assertion.Start != nil && r.StartMs != *assertion.Start {
		return &AssertionError{
			Type:     AssertReconciliation,
			Expected: fmt.Sprintf("timeline start %dms", *assertion.Start),
			Actual:   fmt.Sprintf("timeline start %dms", r.StartMs),
		}
	}
	return nil
}

// assertHighlighted checks whether a marker highlight is active, and when
// one is expected, which marker holds it.
func assertHighlighted(p *player.Player, assertion Assertion) error {
	marker, on := p.HighlightedMarker()

	if on != *assertion.On {
		return &AssertionError{
			Type:     AssertHighlighted,
			Expected: fmt.Sprintf("highlight active: %t", *assertion.On),
			Actual:   fmt.Sprintf("highlight active: %t", on),
		}
	}
	if !on {
		return nil
	}

	if assertion.MarkerType != "" && string(marker.Type) != assertion.MarkerType {
		return &AssertionError{
			Type:     AssertHighlighted,
			Expected: fmt.Sprintf("highlighted marker type %s", assertion.MarkerType),
			Actual:   fmt.Sprintf("highlighted marker type %s", marker.Type),
		}
	}
	if assertion.Label != "" && marker.Label != assertion.Label {
		return &AssertionError{
			Type:     AssertHighlighted,
			Expected: fmt.Sprintf("highlighted marker label %q", assertion.Label),
			Actual:   fmt.Sprintf("highlighted marker label %q", marker.Label),
		}
	}
	return nil
}
