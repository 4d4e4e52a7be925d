package player

// Phase is a playback lifecycle state. A player is always in exactly one.
type Phase string

// Playback phases.
const (
	// PhaseIdle means no session is loaded.
	PhaseIdle Phase = "idle"
	// PhaseInitializing means the renderer is constructed but has not
	// reported its content loaded yet.
	PhaseInitializing Phase = "initializing"
	// PhaseReady means the renderer can accept playback commands.
	PhaseReady Phase = "ready"
	// PhasePlaying and PhasePaused are the steady playback states.
	PhasePlaying Phase = "playing"
	PhasePaused  Phase = "paused"
	// PhaseSeeking means a position change is in flight.
	PhaseSeeking Phase = "seeking"
	// PhaseFaulted means the last seek attempt failed; recovery or
	// abandonment follows, never a silent drop.
	PhaseFaulted Phase = "faulted"
	// PhaseNoEvents is the terminal state for sessions whose capture has
	// fewer than two replayable events. Only a new load leaves it.
	PhaseNoEvents Phase = "no-events"
)

// PlaybackState is the externally visible snapshot of the machine.
//
// CurrentTimeMs is always within [0, DurationMs]. DurationMs is derived
// once from the normalized events when the session loads and never changes
// afterwards: renderer-reported durations are not trusted.
type PlaybackState struct {
	Phase           Phase   `json:"phase"`
	CurrentTimeMs   int64   `json:"currentTimeMs"`
	DurationMs      int64   `json:"durationMs"`
	SpeedMultiplier float64 `json:"speedMultiplier"`
}

// Transition records one phase change. Seq comes from the logical clock and
// orders transitions and update-feed entries on one axis.
type Transition struct {
	Seq    int64  `json:"seq"`
	From   Phase  `json:"from"`
	To     Phase  `json:"to"`
	Reason string `json:"reason"`
}

// legalTransitions enumerates every phase change an operation may request.
// Anything else is rejected with INVALID_PHASE and leaves state untouched.
// Teardown and failure reverts move the machine outside this table, with
// the reason recorded in the transition history.
var legalTransitions = map[Phase][]Phase{
	PhaseIdle:         {PhaseInitializing, PhaseNoEvents},
	PhaseInitializing: {PhaseReady},
	PhaseReady:        {PhasePlaying, PhasePaused, PhaseSeeking},
	PhasePlaying:      {PhasePaused, PhaseSeeking},
	PhasePaused:       {PhasePlaying, PhaseSeeking},
	PhaseSeeking:      {PhaseSeeking, PhasePlaying, PhasePaused, PhaseFaulted},
	PhaseFaulted:      {PhaseSeeking, PhasePaused},
	PhaseNoEvents:     {},
}

// canTransition reports whether the table allows from moving to to.
func canTransition(from, to Phase) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
