package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrozenClock(t *testing.T) {
	clock := NewFrozenClock(5000)
	assert.Equal(t, int64(5000), clock.NowMs())
	assert.Equal(t, int64(5000), clock.NowMs(), "reading must not move the clock")

	clock.Advance(250)
	assert.Equal(t, int64(5250), clock.NowMs())

	clock.Set(1000)
	assert.Equal(t, int64(1000), clock.NowMs())
}
