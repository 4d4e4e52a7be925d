package player

import "time"

// Scheduler defers work. Listener attachment, seek retries, and highlight
// decay all go through this seam, so tests can pump deferred work
// synchronously instead of sleeping.
type Scheduler interface {
	// AfterFunc runs fn on its own goroutine after d elapses. The returned
	// function cancels the work; cancelling after it ran is a no-op.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the production Scheduler, backed by time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
