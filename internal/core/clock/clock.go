// Package clock supplies wall-clock time to the routine components.
//
// Countdowns are derived from absolute timestamps, so anything that can
// report the current time is enough; no tick counting happens here.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the process clock.
type System struct{}

// Now returns the wall-clock time with the monotonic reading stripped.
// The monotonic clock can stop while the machine sleeps, so differences
// taken from it would leave a countdown behind after a resume.
func (System) Now() time.Time {
	return time.Now().Round(0)
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (clock *Manual) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

// Advance moves the clock forward by delta.
func (clock *Manual) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

// Set jumps the clock to now.
func (clock *Manual) Set(now time.Time) {
	clock.mu.Lock()
	clock.now = now
	clock.mu.Unlock()
}
