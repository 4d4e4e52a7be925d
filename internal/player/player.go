package player

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/moviola/moviola/internal/renderer"
	"github.com/moviola/moviola/internal/session"
	"github.com/moviola/moviola/internal/timeline"
)

// Player is the replay state machine. It owns one loaded session at a time:
// the normalized events, the reconciled timeline, the correlated markers,
// and the renderer instance playing them back.
//
// See the package documentation for the locking and token discipline.
type Player struct {
	// loadMu serializes LoadSession and Close against each other. It is
	// never held while renderer listeners run.
	loadMu sync.Mutex
	mu     sync.Mutex

	factory   renderer.Factory
	cfg       Config
	logger    *slog.Logger
	scheduler Scheduler
	tokens    TokenGenerator
	wallClock session.Clock
	clock     *Clock
	feed      *UpdateFeed
	closed    bool

	// Session state, replaced wholesale on every load.
	phase       Phase
	token       string
	events      []session.RecordedEvent
	start       timeline.Reconciliation
	markers     []timeline.Marker
	rend        renderer.Renderer
	playClock   PlaybackClock
	currentMs   int64
	lastApplied int64
	speed       float64
	history     []Transition
	seekSeq     int64
	wasPlaying  bool
	highlight   timeline.Marker
	highlighted bool

	attachCancel    func()
	retryCancel     func()
	highlightCancel func()
}

// Option configures a Player at construction.
type Option func(*Player)

// WithConfig replaces the default tunables.
func WithConfig(cfg Config) Option {
	return func(p *Player) { p.cfg = cfg }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// WithScheduler replaces the wall-clock scheduler, for deterministic tests.
func WithScheduler(s Scheduler) Option {
	return func(p *Player) { p.scheduler = s }
}

// WithTokenGenerator replaces the UUIDv7 session token source.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(p *Player) { p.tokens = g }
}

// WithWallClock replaces the wall clock consulted when an event-free
// session has nothing to anchor its timeline on.
func WithWallClock(c session.Clock) Option {
	return func(p *Player) { p.wallClock = c }
}

// New creates a Player around a renderer factory.
func New(factory renderer.Factory, opts ...Option) (*Player, error) {
	if factory == nil {
		return nil, fmt.Errorf("renderer factory is required")
	}
	p := &Player{
		factory:   factory,
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
		scheduler: TimerScheduler{},
		tokens:    UUIDv7Generator{},
		wallClock: session.SystemClock{},
		clock:     NewClock(),
		feed:      newUpdateFeed(),
		phase:     PhaseIdle,
		speed:     1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid player configuration: %w", err)
	}
	return p, nil
}

// LoadSession replaces the loaded session. The previous renderer is torn
// down, the capture is normalized, the timeline reconciled, markers
// correlated, and a renderer constructed when there is anything to replay.
//
// A capture with fewer than two events settles in the no-events terminal
// phase with zero duration and no renderer. A capture with invalid events
// (missing or negative timestamps) does the same and additionally returns
// the validation error.
func (p *Player) LoadSession(events []session.RecordedEvent, metadata session.SessionMetadata, telemetry session.Telemetry) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player is closed")
	}
	old, playing := p.beginTeardownLocked("load-session")
	p.mu.Unlock()

	// Outside the state lock: destroying the old renderer may make it emit
	// events synchronously, and those listeners re-enter the player.
	p.destroyRenderer(old, playing)

	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.tokens.Generate()
	p.token = token

	normalized, err := session.Normalize(events)
	if err != nil {
		p.logger.Error("session rejected", "token", token, "error", err)
		p.resetSessionLocked(nil)
		p.forceLocked(PhaseNoEvents, "invalid-events")
		return fmt.Errorf("failed to load session: %w", err)
	}

	p.resetSessionLocked(normalized)
	p.start = timeline.Reconcile(normalized, metadata, telemetry, p.wallClock)
	p.markers = timeline.Correlate(telemetry, metadata.Signals, p.start.StartMs)

	if len(normalized) < 2 {
		p.logger.Info("session has no replayable events",
			"token", token, "events", len(normalized))
		p.forceLocked(PhaseNoEvents, "no-events")
		return nil
	}

	// The transition table is the initialization guard: a second
	// initialization for a live session has no legal edge and is rejected
	// instead of being absorbed by timing.
	if err := p.transitionLocked(PhaseInitializing, "load-session"); err != nil {
		return err
	}

	rend, err := p.factory.New(normalized, p.cfg.rendererConfig())
	if err != nil {
		p.logger.Error("renderer construction failed", "token", token, "error", err)
		p.forceLocked(PhaseIdle, "renderer-construction-failed")
		return NewRendererError("load", PhaseIdle, err)
	}
	p.rend = rend

	// Renderers do not reliably accept listeners synchronously after
	// construction; attachment is deferred through the scheduler.
	p.attachCancel = p.scheduler.AfterFunc(p.cfg.ListenerAttachDelay, func() {
		p.attachListeners(token)
	})

	p.logger.Info("session loaded",
		"token", token,
		"events", len(normalized),
		"durationMs", p.playClock.DurationMs(),
		"markers", len(p.markers),
		"start", p.start.StartMs,
		"startSource", string(p.start.Source))
	return nil
}

// resetSessionLocked installs a new normalized sequence and zeroes all
// per-session playback state.
func (p *Player) resetSessionLocked(normalized []session.RecordedEvent) {
	p.events = normalized
	p.start = timeline.Reconciliation{}
	p.markers = nil
	p.playClock = NewPlaybackClock(session.Duration(normalized))
	p.currentMs = 0
	p.lastApplied = 0
	p.speed = 1
	p.wasPlaying = false
}

// Play starts playback. Legal from ready and paused; the phase is unchanged
// when the renderer rejects the command.
func (p *Player) Play() error {
	p.mu.Lock()
	rend, token, err := p.validateOpLocked("play", PhasePlaying)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	playErr := rend.Play()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token {
		return nil
	}
	if playErr != nil {
		p.logger.Error("renderer play failed", "token", token, "phase", string(p.phase), "error", playErr)
		return NewRendererError("play", p.phase, playErr)
	}
	if p.phase != PhasePlaying {
		if terr := p.transitionLocked(PhasePlaying, "play"); terr != nil {
			return terr
		}
	}
	return nil
}

// Pause stops playback. Legal from ready and playing; the phase is
// unchanged when the renderer rejects the command.
func (p *Player) Pause() error {
	p.mu.Lock()
	rend, token, err := p.validateOpLocked("pause", PhasePaused)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	pauseErr := rend.Pause()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token {
		return nil
	}
	if pauseErr != nil {
		p.logger.Error("renderer pause failed", "token", token, "phase", string(p.phase), "error", pauseErr)
		return NewRendererError("pause", p.phase, pauseErr)
	}
	if p.phase != PhasePaused {
		if terr := p.transitionLocked(PhasePaused, "pause"); terr != nil {
			return terr
		}
	}
	return nil
}

// SetSpeed changes the playback multiplier within the configured bounds.
// The speed survives seeks but resets to 1 on the next load.
func (p *Player) SetSpeed(multiplier float64) error {
	p.mu.Lock()
	if p.rend == nil {
		err := p.noRendererErrLocked("set-speed")
		p.mu.Unlock()
		return err
	}
	if multiplier < p.cfg.MinSpeed || multiplier > p.cfg.MaxSpeed {
		p.mu.Unlock()
		return NewInvalidSpeedError(multiplier, p.cfg.MinSpeed, p.cfg.MaxSpeed)
	}
	rend := p.rend
	token := p.token
	p.mu.Unlock()

	speedErr := rend.SetSpeed(multiplier)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token {
		return nil
	}
	if speedErr != nil {
		p.logger.Error("renderer speed change failed", "token", token, "speed", multiplier, "error", speedErr)
		return NewRendererError("set-speed", p.phase, speedErr)
	}
	p.speed = multiplier
	p.publishStateLocked()
	return nil
}

// State returns the externally visible playback snapshot.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// Markers returns the session's correlated timeline markers, sorted
// ascending by offset.
func (p *Player) Markers() []timeline.Marker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]timeline.Marker(nil), p.markers...)
}

// Reconciliation reports how the session's start instant was established.
func (p *Player) Reconciliation() timeline.Reconciliation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.start
}

// History returns every phase transition since the player was created.
func (p *Player) History() []Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Transition(nil), p.history...)
}

// HighlightedMarker returns the marker currently highlighted by a marker
// click, if any.
func (p *Player) HighlightedMarker() (timeline.Marker, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highlight, p.highlighted
}

// SessionToken identifies the loaded session. Empty before the first load.
func (p *Player) SessionToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Updates exposes the seq-stamped feed of state and highlight changes.
func (p *Player) Updates() *UpdateFeed {
	return p.feed
}

// Close tears down the live session and closes the update feed. The player
// rejects loads afterwards.
func (p *Player) Close() {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.Lock()
	old, playing := p.beginTeardownLocked("close")
	p.closed = true
	p.mu.Unlock()

	p.destroyRenderer(old, playing)
	p.feed.Close()
}

// validateOpLocked performs the common operation checks: a renderer must be
// loaded and the transition table must allow moving to the target phase.
func (p *Player) validateOpLocked(op string, target Phase) (renderer.Renderer, string, error) {
	if p.rend == nil {
		return nil, "", p.noRendererErrLocked(op)
	}
	if p.phase != target && !canTransition(p.phase, target) {
		return nil, "", NewInvalidPhaseError(op, p.phase)
	}
	return p.rend, p.token, nil
}

// noRendererErrLocked distinguishes "nothing loaded" from "loaded but not
// replayable".
func (p *Player) noRendererErrLocked(op string) error {
	if p.phase == PhaseNoEvents {
		return NewInvalidPhaseError(op, p.phase)
	}
	return NewNoSessionError(op, p.phase)
}

func (p *Player) stateLocked() PlaybackState {
	return PlaybackState{
		Phase:           p.phase,
		CurrentTimeMs:   p.currentMs,
		DurationMs:      p.playClock.DurationMs(),
		SpeedMultiplier: p.speed,
	}
}

// transitionLocked moves the machine along a table edge, records the
// transition, and publishes the new state. Illegal moves return
// INVALID_PHASE and change nothing.
func (p *Player) transitionLocked(to Phase, reason string) error {
	if !canTransition(p.phase, to) {
		p.logger.Warn("transition rejected",
			"from", string(p.phase), "to", string(to), "reason", reason)
		return NewInvalidPhaseError(reason, p.phase)
	}
	p.applyTransitionLocked(to, reason)
	return nil
}

// forceLocked moves the machine outside the table. Teardown and failure
// reverts use it; the reason is recorded like any other transition.
func (p *Player) forceLocked(to Phase, reason string) {
	p.applyTransitionLocked(to, reason)
}

func (p *Player) applyTransitionLocked(to Phase, reason string) {
	from := p.phase
	p.phase = to
	t := Transition{Seq: p.clock.Next(), From: from, To: to, Reason: reason}
	p.history = append(p.history, t)
	p.logger.Debug("phase transition",
		"from", string(from), "to", string(to), "reason", reason, "seq", t.Seq)
	p.publishStateLocked()
}

func (p *Player) publishStateLocked() {
	p.feed.publish(Update{Seq: p.clock.Next(), Kind: UpdateState, State: p.stateLocked()})
}

func (p *Player) publishHighlightLocked(m timeline.Marker, on bool) {
	p.feed.publish(Update{Seq: p.clock.Next(), Kind: UpdateHighlight, Marker: m, Highlighted: on})
}

// beginTeardownLocked detaches the live session under the state lock: the
// token is cleared first so deferred work drops itself, pending timers are
// cancelled, the renderer is taken out, and the phase is forced to idle.
// The caller destroys the returned renderer after releasing the lock.
func (p *Player) beginTeardownLocked(reason string) (renderer.Renderer, bool) {
	p.token = ""

	for _, cancel := range []func(){p.attachCancel, p.retryCancel, p.highlightCancel} {
		if cancel != nil {
			cancel()
		}
	}
	p.attachCancel, p.retryCancel, p.highlightCancel = nil, nil, nil
	p.highlighted = false
	p.highlight = timeline.Marker{}

	rend := p.rend
	playing := p.phase == PhasePlaying
	p.rend = nil

	if p.phase != PhaseIdle {
		p.forceLocked(PhaseIdle, reason)
	}
	return rend, playing
}

// destroyRenderer finishes a teardown without holding the state lock.
// Teardown must always complete: renderer errors are swallowed and logged,
// and a renderer that panics mid-teardown is contained.
func (p *Player) destroyRenderer(rend renderer.Renderer, playing bool) {
	if rend == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("renderer panicked during teardown", "panic", r)
		}
	}()
	if playing {
		if err := rend.Pause(); err != nil {
			p.logger.Warn("pause during teardown failed", "error", err)
		}
	}
	if err := rend.Destroy(); err != nil {
		p.logger.Warn("renderer destroy failed", "error", err)
	}
}
