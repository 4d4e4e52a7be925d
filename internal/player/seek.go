package player

import (
	"github.com/cenkalti/backoff/v5"

	"github.com/moviola/moviola/internal/renderer"
	"github.com/moviola/moviola/internal/timeline"
)

// Seek moves playback to ms on the session timeline, clamped to
// [0, duration].
//
// The position updates optimistically so the scrubber tracks the user's
// intent before the renderer confirms. Active playback pauses first (a
// pause failure is logged and the seek proceeds). The renderer goto then
// runs with bounded frame-skipping recovery: every failed attempt schedules
// a retry at target+skip after a backoff delay, up to the configured retry
// budget, never in a synchronous loop. Recovery that exhausts its budget or
// runs past the end of the session degrades to paused at the last position
// the renderer actually reached. If playback was active and the seek lands,
// playback resumes by itself.
//
// Seek returns once the move is initiated. Goto failures surface through
// the phase (faulted, then paused or a successful retry) and the update
// feed, not through the return value. A newer seek or a teardown supersedes
// the in-flight recovery.
func (p *Player) Seek(ms int64) error {
	p.mu.Lock()
	if p.rend == nil {
		err := p.noRendererErrLocked("seek")
		p.mu.Unlock()
		return err
	}
	if !canTransition(p.phase, PhaseSeeking) {
		err := NewInvalidPhaseError("seek", p.phase)
		p.mu.Unlock()
		return err
	}

	target := p.playClock.Clamp(ms)

	// Supersede any in-flight recovery.
	p.seekSeq++
	seek := p.seekSeq
	if p.retryCancel != nil {
		p.retryCancel()
		p.retryCancel = nil
	}

	wasPlaying := p.phase == PhasePlaying ||
		((p.phase == PhaseSeeking || p.phase == PhaseFaulted) && p.wasPlaying)
	p.wasPlaying = wasPlaying

	p.currentMs = target
	if terr := p.transitionLocked(PhaseSeeking, "seek"); terr != nil {
		p.mu.Unlock()
		return terr
	}
	rend := p.rend
	token := p.token
	policy := p.cfg.seekBackOff()
	p.mu.Unlock()

	if wasPlaying {
		if err := rend.Pause(); err != nil {
			p.logger.Warn("pause before seek failed", "token", token, "error", err)
		}
	}

	p.attemptSeek(token, seek, target, 0, policy)
	return nil
}

// SkipForward jumps ms forward from the current position.
func (p *Player) SkipForward(ms int64) error {
	p.mu.Lock()
	current := p.currentMs
	p.mu.Unlock()
	return p.Seek(current + ms)
}

// SkipBackward jumps ms back from the current position. Jumps past the
// start clamp to 0.
func (p *Player) SkipBackward(ms int64) error {
	p.mu.Lock()
	current := p.currentMs
	p.mu.Unlock()
	return p.Seek(current - ms)
}

// OnMarkerClick jumps playback to a marker's offset and raises a transient
// highlight on it; the highlight decays after the configured window.
func (p *Player) OnMarkerClick(m timeline.Marker) error {
	if err := p.Seek(m.TimestampMs); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.highlightCancel != nil {
		p.highlightCancel()
	}
	p.highlight = m
	p.highlighted = true
	p.publishHighlightLocked(m, true)

	token := p.token
	p.highlightCancel = p.scheduler.AfterFunc(p.cfg.HighlightDecay, func() {
		p.clearHighlight(token)
	})
	return nil
}

func (p *Player) clearHighlight(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token || !p.highlighted {
		return
	}
	m := p.highlight
	p.highlighted = false
	p.highlight = timeline.Marker{}
	p.publishHighlightLocked(m, false)
}

// attemptSeek performs one renderer goto and routes the outcome. attempt
// counts prior failures for this seek: attempt 0 carries the user's target,
// attempt n the target skipped ahead n times.
func (p *Player) attemptSeek(token string, seek, targetMs int64, attempt int, policy backoff.BackOff) {
	p.mu.Lock()
	if p.token != token || p.seekSeq != seek || p.rend == nil {
		p.mu.Unlock()
		return
	}
	rend := p.rend
	p.mu.Unlock()

	gotoErr := rend.Goto(targetMs)

	p.mu.Lock()
	if p.token != token || p.seekSeq != seek {
		p.mu.Unlock()
		return
	}

	if gotoErr == nil {
		p.commitSeek(token, seek, targetMs, rend)
		return
	}

	p.logger.Warn("seek attempt failed",
		"token", token, "targetMs", targetMs, "attempt", attempt, "error", gotoErr)
	_ = p.transitionLocked(PhaseFaulted, "goto-failed")

	nextTarget := targetMs + p.cfg.SeekSkipMs
	if attempt >= p.cfg.SeekRetryLimit || nextTarget > p.playClock.DurationMs() {
		p.abandonSeekLocked(token, targetMs, attempt)
		p.mu.Unlock()
		return
	}

	delay := policy.NextBackOff()
	if delay == backoff.Stop {
		p.abandonSeekLocked(token, targetMs, attempt)
		p.mu.Unlock()
		return
	}
	nextAttempt := attempt + 1
	p.retryCancel = p.scheduler.AfterFunc(delay, func() {
		p.retrySeek(token, seek, nextTarget, nextAttempt, policy)
	})
	p.mu.Unlock()
}

// commitSeek finishes a landed goto: position confirmed, playback resumed
// when it was active before the seek. Called with the state lock held;
// releases it.
func (p *Player) commitSeek(token string, seek, targetMs int64, rend renderer.Renderer) {
	p.lastApplied = targetMs
	p.currentMs = targetMs
	p.retryCancel = nil
	resume := p.wasPlaying
	p.wasPlaying = false

	if !resume {
		_ = p.transitionLocked(PhasePaused, "seek-complete")
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	playErr := rend.Play()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token || p.seekSeq != seek {
		return
	}
	if playErr != nil {
		p.logger.Error("resume after seek failed", "token", token, "error", playErr)
		_ = p.transitionLocked(PhasePaused, "seek-complete")
		return
	}
	_ = p.transitionLocked(PhasePlaying, "seek-complete")
}

// retrySeek is the scheduled recovery step: move the optimistic position to
// the skipped-ahead target, re-enter seeking, and try again.
func (p *Player) retrySeek(token string, seek, targetMs int64, attempt int, policy backoff.BackOff) {
	p.mu.Lock()
	if p.token != token || p.seekSeq != seek {
		p.mu.Unlock()
		return
	}
	p.retryCancel = nil
	p.currentMs = targetMs
	if p.phase == PhaseFaulted {
		_ = p.transitionLocked(PhaseSeeking, "seek-retry")
	} else {
		p.publishStateLocked()
	}
	p.mu.Unlock()

	p.attemptSeek(token, seek, targetMs, attempt, policy)
}

// abandonSeekLocked rests the machine at the last renderer-confirmed
// position, paused. Never an ambiguous playing state, never an unbounded
// retry loop.
func (p *Player) abandonSeekLocked(token string, targetMs int64, attempts int) {
	p.currentMs = p.lastApplied
	p.wasPlaying = false
	p.retryCancel = nil
	err := NewSeekExhaustedError(targetMs, p.lastApplied, attempts+1)
	p.logger.Error("seek recovery abandoned", "token", token, "error", err)
	_ = p.transitionLocked(PhasePaused, "seek-exhausted")
}
