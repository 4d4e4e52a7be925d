package player

import (
	"math"
	"sync/atomic"
)

// Clock is the monotonic logical clock stamping phase transitions and
// update-feed entries.
//
// Observable ordering inside the engine never depends on wall-clock time;
// every transition and update carries a strictly increasing seq from this
// clock, so two runs over the same inputs produce comparable traces.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// PlaybackClock converts renderer progress fractions into elapsed
// milliseconds on the session timeline.
//
// The duration is pinned from the normalized event sequence when the
// session loads. A renderer-reported duration is never consulted: the
// scrubber and marker-highlight lookups all move on this value.
type PlaybackClock struct {
	durationMs int64
}

// NewPlaybackClock pins a session duration. Negative durations are treated
// as zero.
func NewPlaybackClock(durationMs int64) PlaybackClock {
	if durationMs < 0 {
		durationMs = 0
	}
	return PlaybackClock{durationMs: durationMs}
}

// Elapsed converts a progress fraction to elapsed milliseconds. Fractions
// outside [0, 1] clamp, so a renderer overshooting its last frame cannot
// push the position past the session extent.
func (p PlaybackClock) Elapsed(fraction float64) int64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return int64(math.Round(fraction * float64(p.durationMs)))
}

// DurationMs reports the pinned session duration.
func (p PlaybackClock) DurationMs() int64 {
	return p.durationMs
}

// Clamp forces a position onto the session extent.
func (p PlaybackClock) Clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if ms > p.durationMs {
		return p.durationMs
	}
	return ms
}
