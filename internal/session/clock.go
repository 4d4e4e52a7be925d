package session

import "time"

// Clock is the engine's wall-clock source, in epoch milliseconds. It exists
// so that reconciliation of event-free sessions stays testable; everything
// else in the engine orders by capture timestamps, never by reading this.
type Clock interface {
	NowMs() int64
}

// SystemClock reads the operating system clock.
type SystemClock struct{}

// NowMs returns the current time as epoch milliseconds.
func (SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}
