package testutil

import (
	"sync"
	"time"
)

// ManualScheduler captures deferred work and runs it only when the test
// pumps it.
//
// The engine defers listener attachment, seek retries, and highlight decay
// through its scheduler seam. Swapping this in makes those paths
// synchronous and deterministic: tasks run in registration order, on the
// caller's goroutine, never concurrently.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*scheduledTask
}

type scheduledTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	done      bool
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers fn to run after d without starting any timer. The
// returned function cancels the task if it has not run yet.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &scheduledTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// RunNext runs the oldest pending task. It reports false when nothing is
// pending.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	var task *scheduledTask
	for _, t := range s.tasks {
		if !t.done && !t.cancelled {
			task = t
			break
		}
	}
	if task == nil {
		s.mu.Unlock()
		return false
	}
	task.done = true
	fn := task.fn
	s.mu.Unlock()

	// Outside the lock: the task may schedule more work.
	fn()
	return true
}

// Drain runs pending tasks, including tasks scheduled while draining, until
// none remain. It returns the number of tasks run. Bounded work only; a
// task chain that reschedules forever would never drain.
func (s *ManualScheduler) Drain() int {
	n := 0
	for s.RunNext() {
		n++
	}
	return n
}

// Pending counts tasks that have neither run nor been cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done && !t.cancelled {
			n++
		}
	}
	return n
}

// Delays returns the requested delay of every registration in order,
// including cancelled and completed tasks. Tests use it to assert retry
// pacing.
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	delays := make([]time.Duration, len(s.tasks))
	for i, t := range s.tasks {
		delays[i] = t.delay
	}
	return delays
}
