package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moviola/moviola/internal/session"
)

// ErrDestroyed is returned by every operation on a destroyed renderer.
var ErrDestroyed = errors.New("renderer destroyed")

const defaultTick = 25 * time.Millisecond

// Headless replays a session without drawing anything. It advances a
// playback position across the recorded time span in real time, scaled by
// the speed multiplier, and reports the position as progress fractions. The
// terminal player and integration tests run on it.
//
// Headless ignores the mouse-trail and speed-option hints in Config; it has
// nothing to draw and accepts any positive speed.
//
// Thread-safety: all methods are safe for concurrent use. Listeners are
// invoked without internal locks held and may call back into the renderer.
type Headless struct {
	mu         sync.Mutex
	durationMs int64
	positionMs int64
	speed      float64
	playing    bool
	destroyed  bool
	loaded     bool
	stop       chan struct{}
	listeners  map[Event][]func(float64)
	tick       time.Duration
}

// NewHeadless builds a headless renderer over a normalized event sequence.
// Fewer than two events cannot span time and are rejected.
func NewHeadless(events []session.RecordedEvent, cfg Config) (*Headless, error) {
	return newHeadless(events, cfg, defaultTick)
}

func newHeadless(events []session.RecordedEvent, cfg Config, tick time.Duration) (*Headless, error) {
	if len(events) < 2 {
		return nil, fmt.Errorf("headless renderer requires at least 2 events, got %d", len(events))
	}
	h := &Headless{
		durationMs: session.Duration(events),
		speed:      1,
		loaded:     true,
		listeners:  make(map[Event][]func(float64)),
		tick:       tick,
	}
	if cfg.Autoplay {
		_ = h.Play()
	}
	return h, nil
}

// Play starts or resumes advancing. Pressing play at the end of the session
// restarts from the top. Playing while already playing is a no-op.
func (h *Headless) Play() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	if h.playing {
		h.mu.Unlock()
		return nil
	}
	if h.positionMs >= h.durationMs {
		h.positionMs = 0
	}
	h.playing = true
	h.stop = make(chan struct{})
	stop := h.stop
	fraction := h.fractionLocked()
	h.mu.Unlock()

	go h.run(stop)
	h.emit(EventPlay, fraction)
	return nil
}

// Pause stops advancing. Pausing while paused is a no-op.
func (h *Headless) Pause() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	if !h.playing {
		h.mu.Unlock()
		return nil
	}
	h.playing = false
	close(h.stop)
	h.stop = nil
	fraction := h.fractionLocked()
	h.mu.Unlock()

	h.emit(EventPause, fraction)
	return nil
}

// Goto moves the playback position, clamped to the session span, and
// reports the new position as a progress event.
func (h *Headless) Goto(ms int64) error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	if ms < 0 {
		ms = 0
	}
	if ms > h.durationMs {
		ms = h.durationMs
	}
	h.positionMs = ms
	fraction := h.fractionLocked()
	h.mu.Unlock()

	h.emit(EventProgress, fraction)
	return nil
}

// SetSpeed changes the playback speed multiplier.
func (h *Headless) SetSpeed(multiplier float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return ErrDestroyed
	}
	if multiplier <= 0 {
		return fmt.Errorf("speed multiplier must be positive, got %v", multiplier)
	}
	h.speed = multiplier
	return nil
}

// Destroy stops playback and drops all listeners. Destroy is idempotent.
func (h *Headless) Destroy() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return nil
	}
	h.destroyed = true
	h.playing = false
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
	h.listeners = nil
	return nil
}

// On registers a listener. Content is ingested synchronously at
// construction, so an EventContentLoaded listener attached afterwards is
// invoked immediately; it would otherwise never hear the event.
func (h *Headless) On(event Event, fn func(fraction float64)) error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	h.listeners[event] = append(h.listeners[event], fn)
	alreadyLoaded := h.loaded && event == EventContentLoaded
	fraction := h.fractionLocked()
	h.mu.Unlock()

	if alreadyLoaded {
		fn(fraction)
	}
	return nil
}

// Position reports the current playback offset in milliseconds.
func (h *Headless) Position() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionMs
}

// Playing reports whether the position is advancing.
func (h *Headless) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *Headless) run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			h.advance(now.Sub(last))
			last = now
		}
	}
}

func (h *Headless) advance(elapsed time.Duration) {
	h.mu.Lock()
	if !h.playing || h.destroyed {
		h.mu.Unlock()
		return
	}
	h.positionMs += int64(float64(elapsed.Milliseconds()) * h.speed)
	ended := h.positionMs >= h.durationMs
	if ended {
		h.positionMs = h.durationMs
		h.playing = false
		close(h.stop)
		h.stop = nil
	}
	fraction := h.fractionLocked()
	h.mu.Unlock()

	h.emit(EventProgress, fraction)
	if ended {
		h.emit(EventPause, fraction)
	}
}

func (h *Headless) fractionLocked() float64 {
	if h.durationMs <= 0 {
		return 1
	}
	f := float64(h.positionMs) / float64(h.durationMs)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// emit copies the listener list under lock and invokes outside it, so a
// listener that re-enters the renderer cannot deadlock.
func (h *Headless) emit(event Event, fraction float64) {
	h.mu.Lock()
	fns := append(([]func(float64))(nil), h.listeners[event]...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(fraction)
	}
}

// HeadlessFactory builds Headless renderers.
type HeadlessFactory struct {
	// Tick overrides the progress emission interval. Zero keeps the
	// default.
	Tick time.Duration
}

// New implements Factory.
func (f HeadlessFactory) New(events []session.RecordedEvent, cfg Config) (Renderer, error) {
	tick := f.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	h, err := newHeadless(events, cfg, tick)
	if err != nil {
		return nil, err
	}
	return h, nil
}
