package testutil

import "sync"

// FrozenClock is a settable wall clock for tests.
//
// Unlike session.SystemClock, FrozenClock only moves when the test moves
// it. This pins the reconciled start of event-free sessions to a known
// instant so assertions stay exact.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FrozenClock struct {
	mu    sync.Mutex
	nowMs int64
}

// NewFrozenClock creates a clock frozen at the given epoch-ms instant.
func NewFrozenClock(nowMs int64) *FrozenClock {
	return &FrozenClock{nowMs: nowMs}
}

// NowMs returns the frozen instant.
func (c *FrozenClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowMs
}

// Set moves the clock to a specific instant.
func (c *FrozenClock) Set(nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowMs = nowMs
}

// Advance moves the clock forward by deltaMs milliseconds.
func (c *FrozenClock) Advance(deltaMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowMs += deltaMs
}
