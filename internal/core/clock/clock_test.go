package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	clock := NewManual(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())

	later := start.Add(time.Hour)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestSystemClockMovesForward(t *testing.T) {
	var clock Clock = System{}
	first := clock.Now()
	second := clock.Now()
	assert.False(t, second.Before(first))
}

func TestSystemClockUsesWallTime(t *testing.T) {
	now := System{}.Now()
	assert.NotContains(t, now.String(), "m=", "monotonic reading must be stripped")
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
