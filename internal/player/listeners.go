package player

import "github.com/moviola/moviola/internal/renderer"

// attachListeners wires the renderer event handlers for the session
// identified by token. It runs from the scheduler shortly after the
// renderer is constructed; by the time it fires the session may already
// have been replaced, so everything is token-guarded.
//
// Registration happens without the state lock because renderers may invoke
// a handler synchronously during On (content-loaded in particular, when
// the renderer finished loading before attachment).
func (p *Player) attachListeners(token string) {
	p.mu.Lock()
	if p.token != token || p.rend == nil {
		p.mu.Unlock()
		return
	}
	rend := p.rend
	p.attachCancel = nil
	p.mu.Unlock()

	registrations := []struct {
		event   renderer.Event
		handler func(float64)
	}{
		{renderer.EventProgress, func(fraction float64) { p.handleProgress(token, fraction) }},
		{renderer.EventPlay, func(float64) { p.handlePlay(token) }},
		{renderer.EventPause, func(float64) { p.handlePause(token) }},
		// Last: content-loaded may fire synchronously during On when the
		// renderer is already loaded, and by then the rest must be wired.
		{renderer.EventContentLoaded, func(float64) { p.handleContentLoaded(token) }},
	}
	for _, r := range registrations {
		if err := rend.On(r.event, r.handler); err != nil {
			p.logger.Warn("listener attach failed",
				"token", token, "event", string(r.event), "error", err)
		}
	}
}

// handleContentLoaded completes initialization. Only the initializing
// phase accepts it; a renderer that re-announces readiness later is
// ignored.
func (p *Player) handleContentLoaded(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token || p.phase != PhaseInitializing {
		return
	}
	_ = p.transitionLocked(PhaseReady, "content-loaded")
}

// handleProgress folds renderer progress back into the timeline position.
// The renderer reports a fraction of its own content span; the position is
// always derived from the pinned session duration so marker offsets and the
// scrubber stay on the same axis.
//
// Progress is ignored while seeking or faulted: during recovery the
// optimistic target owns the position, and stray frames from a failing
// goto must not drag the scrubber backwards.
func (p *Player) handleProgress(token string, fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token {
		return
	}
	if p.phase == PhaseSeeking || p.phase == PhaseFaulted {
		return
	}
	ms := p.playClock.Elapsed(fraction)
	p.currentMs = ms
	p.lastApplied = ms
	p.publishStateLocked()
}

// handlePlay reflects renderer-initiated playback. Only ready and paused
// accept it; during a seek the recovery controller owns the phase and the
// renderer's own play echo is dropped.
func (p *Player) handlePlay(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token {
		return
	}
	if p.phase != PhaseReady && p.phase != PhasePaused {
		return
	}
	_ = p.transitionLocked(PhasePlaying, "renderer-play")
}

// handlePause reflects renderer-initiated pauses, including the automatic
// pause when playback reaches the end of the session.
func (p *Player) handlePause(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token || p.phase != PhasePlaying {
		return
	}
	_ = p.transitionLocked(PhasePaused, "renderer-pause")
}
