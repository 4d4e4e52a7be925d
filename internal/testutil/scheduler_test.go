package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_RunsInRegistrationOrder(t *testing.T) {
	s := NewManualScheduler()

	var order []string
	s.AfterFunc(time.Second, func() { order = append(order, "first") })
	s.AfterFunc(time.Millisecond, func() { order = append(order, "second") })

	assert.Equal(t, 2, s.Pending())
	assert.True(t, s.RunNext())
	assert.True(t, s.RunNext())
	assert.False(t, s.RunNext(), "nothing left to run")

	// Registration order wins, not delay order.
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManualScheduler_Cancel(t *testing.T) {
	s := NewManualScheduler()

	ran := false
	cancel := s.AfterFunc(time.Second, func() { ran = true })
	cancel()

	assert.Equal(t, 0, s.Pending())
	assert.False(t, s.RunNext())
	assert.False(t, ran)
}

func TestManualScheduler_DrainFollowsRescheduling(t *testing.T) {
	s := NewManualScheduler()

	// A task that schedules a follow-up, like a seek retry does.
	count := 0
	var chain func()
	chain = func() {
		count++
		if count < 3 {
			s.AfterFunc(100*time.Millisecond, chain)
		}
	}
	s.AfterFunc(100*time.Millisecond, chain)

	assert.Equal(t, 3, s.Drain())
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_Delays(t *testing.T) {
	s := NewManualScheduler()

	s.AfterFunc(50*time.Millisecond, func() {})
	cancel := s.AfterFunc(75*time.Millisecond, func() {})
	cancel()
	s.Drain()

	// Completed and cancelled registrations are both visible.
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 75 * time.Millisecond}, s.Delays())
}
