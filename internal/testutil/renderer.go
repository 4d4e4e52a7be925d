package testutil

import (
	"fmt"
	"sync"

	"github.com/moviola/moviola/internal/renderer"
	"github.com/moviola/moviola/internal/session"
)

// ScriptedRenderer is a renderer whose failures are scripted per method,
// for driving the engine through its recovery paths without any timing.
//
// The zero value succeeds at everything. Configure the public fields before
// handing the renderer to the engine; they are read at call time under the
// internal mutex.
//
// Like the real implementations, a content-loaded listener attached after
// construction is invoked immediately, unless HoldLoaded is set, in which
// case the test fires EmitLoaded itself.
type ScriptedRenderer struct {
	mu sync.Mutex

	// GotoFailures fails the next N Goto calls.
	GotoFailures int
	// Per-method scripted errors. Non-nil fails the call.
	PlayErr     error
	PauseErr    error
	SetSpeedErr error
	DestroyErr  error
	OnErr       error
	// HoldLoaded suppresses the immediate content-loaded callback.
	HoldLoaded bool

	gotoCalls  []int64
	playCalls  int
	pauseCalls int
	speeds     []float64
	destroyed  bool
	listeners  map[renderer.Event][]func(float64)
}

// NewScriptedRenderer creates a renderer that succeeds at everything.
func NewScriptedRenderer() *ScriptedRenderer {
	return &ScriptedRenderer{}
}

// Play implements renderer.Renderer.
func (r *ScriptedRenderer) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playCalls++
	return r.PlayErr
}

// Pause implements renderer.Renderer.
func (r *ScriptedRenderer) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseCalls++
	return r.PauseErr
}

// Goto records the target and fails while GotoFailures is positive. Failed
// attempts are recorded too, so tests can assert the retry targets.
func (r *ScriptedRenderer) Goto(ms int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotoCalls = append(r.gotoCalls, ms)
	if r.GotoFailures > 0 {
		r.GotoFailures--
		return fmt.Errorf("scripted goto failure at %dms", ms)
	}
	return nil
}

// SetSpeed implements renderer.Renderer.
func (r *ScriptedRenderer) SetSpeed(multiplier float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SetSpeedErr != nil {
		return r.SetSpeedErr
	}
	r.speeds = append(r.speeds, multiplier)
	return nil
}

// Destroy implements renderer.Renderer.
func (r *ScriptedRenderer) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed = true
	return r.DestroyErr
}

// On implements renderer.Renderer.
func (r *ScriptedRenderer) On(event renderer.Event, fn func(fraction float64)) error {
	r.mu.Lock()
	if r.OnErr != nil {
		err := r.OnErr
		r.mu.Unlock()
		return err
	}
	if r.listeners == nil {
		r.listeners = make(map[renderer.Event][]func(float64))
	}
	r.listeners[event] = append(r.listeners[event], fn)
	fireLoaded := event == renderer.EventContentLoaded && !r.HoldLoaded
	r.mu.Unlock()

	if fireLoaded {
		fn(0)
	}
	return nil
}

// EmitLoaded fires content-loaded to current listeners.
func (r *ScriptedRenderer) EmitLoaded() { r.emit(renderer.EventContentLoaded, 0) }

// EmitProgress fires a progress fraction to current listeners.
func (r *ScriptedRenderer) EmitProgress(fraction float64) {
	r.emit(renderer.EventProgress, fraction)
}

// EmitPlay fires a renderer-initiated play notification.
func (r *ScriptedRenderer) EmitPlay(fraction float64) { r.emit(renderer.EventPlay, fraction) }

// EmitPause fires a renderer-initiated pause notification, as the real
// renderer does when playback reaches the end of the session.
func (r *ScriptedRenderer) EmitPause(fraction float64) { r.emit(renderer.EventPause, fraction) }

func (r *ScriptedRenderer) emit(event renderer.Event, fraction float64) {
	r.mu.Lock()
	fns := append(([]func(float64))(nil), r.listeners[event]...)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(fraction)
	}
}

// GotoCalls returns every Goto target in call order.
func (r *ScriptedRenderer) GotoCalls() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.gotoCalls...)
}

// PlayCalls counts Play invocations.
func (r *ScriptedRenderer) PlayCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playCalls
}

// PauseCalls counts Pause invocations.
func (r *ScriptedRenderer) PauseCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pauseCalls
}

// Speeds returns every accepted SetSpeed multiplier in call order.
func (r *ScriptedRenderer) Speeds() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.speeds...)
}

// Destroyed reports whether Destroy was called.
func (r *ScriptedRenderer) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Listeners counts registered callbacks for an event.
func (r *ScriptedRenderer) Listeners(event renderer.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[event])
}

// ScriptedFactory hands out prepared renderers and records construction.
type ScriptedFactory struct {
	mu sync.Mutex

	// NewErr fails construction when non-nil.
	NewErr error
	// Next is returned by the next New call. Nil creates a fresh
	// zero-configured ScriptedRenderer.
	Next *ScriptedRenderer

	created    []*ScriptedRenderer
	lastConfig renderer.Config
	lastEvents int
}

// NewScriptedFactory creates a factory that builds succeeding renderers.
func NewScriptedFactory() *ScriptedFactory {
	return &ScriptedFactory{}
}

// New implements renderer.Factory.
func (f *ScriptedFactory) New(events []session.RecordedEvent, cfg renderer.Config) (renderer.Renderer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastConfig = cfg
	f.lastEvents = len(events)
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	r := f.Next
	f.Next = nil
	if r == nil {
		r = NewScriptedRenderer()
	}
	f.created = append(f.created, r)
	return r, nil
}

// Created returns every renderer the factory has built, in order.
func (f *ScriptedFactory) Created() []*ScriptedRenderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ScriptedRenderer(nil), f.created...)
}

// CreatedCount counts constructions.
func (f *ScriptedFactory) CreatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// LastConfig returns the renderer configuration of the latest construction.
func (f *ScriptedFactory) LastConfig() renderer.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastConfig
}

// LastEventCount returns the event count of the latest construction.
func (f *ScriptedFactory) LastEventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastEvents
}
