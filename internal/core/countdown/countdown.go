// Package countdown implements a single countdown tracked by an absolute end
// time.
//
// Remaining time is always computed from the end timestamp and the clock, so
// a countdown stays correct when the process is suspended and periodic checks
// are delayed or skipped. An Engine is not safe for concurrent use; its owner
// serializes access.
package countdown

import (
	"time"

	"routinetimer/internal/core/clock"
)

// AlertScheduler is the part of the prompt sink used by the engine.
type AlertScheduler interface {
	ScheduleAlert(id int, title, body string, at time.Time)
	CancelAlert(id int)
}

// Alert is the external alert tied to a countdown.
type Alert struct {
	Title string
	Body  string
}

// Engine owns at most one live countdown.
type Engine struct {
	clock   clock.Clock
	alerts  AlertScheduler
	alertID int

	endAt time.Time
	armed bool
}

// New creates an engine that schedules its alert under alertID.
func New(clk clock.Clock, alerts AlertScheduler, alertID int) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	return &Engine{
		clock:   clk,
		alerts:  alerts,
		alertID: alertID,
	}
}

// Start begins a countdown of d, replacing any previous one.
func (engine *Engine) Start(d time.Duration, alert Alert) {
	engine.Cancel()
	if d < 0 {
		d = 0
	}
	engine.endAt = engine.clock.Now().Add(d)
	engine.armed = true
	if engine.alerts != nil {
		engine.alerts.ScheduleAlert(engine.alertID, alert.Title, alert.Body, engine.endAt)
	}
}

// Cancel clears the countdown and its alert. Safe to call when idle.
func (engine *Engine) Cancel() {
	if engine.endAt.IsZero() {
		return
	}
	wasArmed := engine.armed
	engine.endAt = time.Time{}
	engine.armed = false
	if wasArmed && engine.alerts != nil {
		engine.alerts.CancelAlert(engine.alertID)
	}
}

// Check reports whether the countdown expired at now.
// It returns true exactly once per Start.
func (engine *Engine) Check(now time.Time) bool {
	if !engine.armed || now.Before(engine.endAt) {
		return false
	}
	engine.armed = false
	return true
}

// Remaining returns the whole seconds left, rounded up. Zero when idle or expired.
func (engine *Engine) Remaining() int {
	return Seconds(engine.RemainingDuration())
}

// RemainingDuration returns the time left before expiry.
func (engine *Engine) RemainingDuration() time.Duration {
	if engine.endAt.IsZero() {
		return 0
	}
	left := engine.endAt.Sub(engine.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// EndAt returns the end of the current or last expired countdown, or zero time.
func (engine *Engine) EndAt() time.Time {
	return engine.endAt
}

// Active reports whether a countdown is running and has not expired yet.
func (engine *Engine) Active() bool {
	return engine.armed
}

// Seconds rounds d up to whole seconds.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
