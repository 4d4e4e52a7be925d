package player

import (
	"sync"

	"github.com/moviola/moviola/internal/timeline"
)

// UpdateKind distinguishes update-feed entries.
type UpdateKind int

const (
	// UpdateState reports a phase or playback-position change.
	UpdateState UpdateKind = iota + 1
	// UpdateHighlight reports a marker highlight being raised or cleared.
	UpdateHighlight
)

// Update is one observable engine change. Seq comes from the engine's
// logical clock; consumers may rely on it strictly increasing across both
// update kinds.
type Update struct {
	Seq   int64
	Kind  UpdateKind
	State PlaybackState

	// Marker and Highlighted carry highlight updates.
	Marker      timeline.Marker
	Highlighted bool
}

// UpdateFeed is a thread-safe FIFO of engine updates.
//
// The feed is unbounded so the engine never blocks publishing; the UI
// drains at its own pace. A buffered signal channel of size 1 coalesces
// wakeups, which is all the information "something changed" carries.
type UpdateFeed struct {
	mu      sync.Mutex
	updates []Update
	closed  bool
	signal  chan struct{}
}

func newUpdateFeed() *UpdateFeed {
	return &UpdateFeed{
		updates: make([]Update, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// publish appends an update. Returns false if the feed is closed.
func (f *UpdateFeed) publish(u Update) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}

	f.updates = append(f.updates, u)

	// Non-blocking signal; the buffer of 1 coalesces bursts.
	select {
	case f.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext pops the oldest update without blocking.
// Returns (Update{}, false) if the feed is empty.
func (f *UpdateFeed) TryNext() (Update, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.updates) == 0 {
		return Update{}, false
	}

	u := f.updates[0]

	// Zero the slot so the backing array does not retain marker strings
	// until it is reallocated.
	f.updates[0] = Update{}

	if len(f.updates) == 1 {
		f.updates = f.updates[:0]
	} else {
		f.updates = f.updates[1:]
	}

	return u, true
}

// Wait returns a channel that signals when updates may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-feed.Wait():
//	    // TryNext until empty
//	}
func (f *UpdateFeed) Wait() <-chan struct{} {
	return f.signal
}

// Len returns the current feed length.
func (f *UpdateFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// Closed reports whether the feed has been closed.
func (f *UpdateFeed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close signals that no more updates will be published.
// Wakes any blocked waiters by closing the signal channel.
func (f *UpdateFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	close(f.signal)
}
