package harness

import "fmt"

// Trace event types.
const (
	// TraceOp records a scenario step being applied to the engine.
	TraceOp = "op"
	// TraceState records a state update drained from the engine's feed.
	TraceState = "state"
	// TraceHighlight records a marker highlight being raised or cleared.
	TraceHighlight = "highlight"
)

// TraceEvent is one entry in a scenario's execution trace. Exactly one of
// Op, State, and Highlight is set, matching Type. Seq is assigned by the
// harness in drain order, starting at 1.
type TraceEvent struct {
	Seq  int    `json:"seq"`
	Type string `json:"type"`

	Op        *OpTrace        `json:"op,omitempty"`
	State     *StateTrace     `json:"state,omitempty"`
	Highlight *HighlightTrace `json:"highlight,omitempty"`
}

// OpTrace records one applied operation and its outcome.
type OpTrace struct {
	Name string `json:"name"`

	// Error is the engine error code the operation returned, when the
	// scenario expected one. Empty for successful operations.
	Error string `json:"error,omitempty"`
}

// StateTrace is the engine state snapshot carried by a state update.
type StateTrace struct {
	Phase      string  `json:"phase"`
	PositionMs int64   `json:"positionMs"`
	DurationMs int64   `json:"durationMs"`
	Speed      float64 `json:"speed"`
}

// HighlightTrace records a highlight update.
type HighlightTrace struct {
	On       bool   `json:"on"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	OffsetMs int64  `json:"offsetMs"`
}

// Result holds the outcome of running one scenario.
type Result struct {
	// Pass is true when every step and every assertion held.
	Pass bool

	// Trace is the ordered record of operations and engine updates.
	Trace []TraceEvent

	// Errors lists step and assertion failures. Empty when Pass is true.
	Errors []string
}

// NewResult creates a passing result with an empty trace.
// Failures flip Pass as they are recorded.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// recordOp appends an op trace event with the next sequence number.
func (r *Result) recordOp(name, errCode string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:  len(r.Trace) + 1,
		Type: TraceOp,
		Op:   &OpTrace{Name: name, Error: errCode},
	})
}

// recordState appends a state trace event with the next sequence number.
func (r *Result) recordState(s StateTrace) {
	snapshot := s
	r.Trace = append(r.Trace, TraceEvent{
		Seq:   len(r.Trace) + 1,
		Type:  TraceState,
		State: &snapshot,
	})
}

// recordHighlight appends a highlight trace event.
func (r *Result) recordHighlight(h HighlightTrace) {
	snapshot := h
	r.Trace = append(r.Trace, TraceEvent{
		Seq:       len(r.Trace) + 1,
		Type:      TraceHighlight,
		Highlight: &snapshot,
	})
}
