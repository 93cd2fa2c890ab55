// Package escalation keeps prompting an unresponsive user after a countdown
// expires, up to a repeat cap.
//
// The loop is driven by its owner through Check; it keeps no goroutine or
// timer of its own, so Stop can never leave a live handle behind.
package escalation

import (
	"time"

	"routinetimer/internal/core/clock"
	"routinetimer/internal/prompt"
)

// DefaultInterval is the time between two reminders.
const DefaultInterval = 15 * time.Second

// Announcer is the part of the prompt sink used by the loop.
type Announcer interface {
	Say(text string)
	ScheduleAlert(id int, title, body string, at time.Time)
}

// Trigger describes the countdown expiry that started a loop.
type Trigger struct {
	Break      bool
	ExpiredAt  time.Time
	MaxRepeats int
}

// Tick is the outcome of one due reminder.
type Tick struct {
	Count  int
	Phrase string
	Final  bool
}

// Loop repeats reminders at a fixed interval.
type Loop struct {
	clock     clock.Clock
	announcer Announcer
	phrases   prompt.Phrases
	interval  time.Duration
	alertID   int

	running    bool
	nextAt     time.Time
	count      int
	maxRepeats int
}

// New creates a stopped loop.
func New(clk clock.Clock, announcer Announcer, phrases prompt.Phrases, interval time.Duration, alertID int) *Loop {
	if clk == nil {
		clk = clock.System{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		clock:     clk,
		announcer: announcer,
		phrases:   phrases,
		interval:  interval,
		alertID:   alertID,
	}
}

// Begin announces the expiry and arms the repeat cycle.
// Any loop already running is replaced.
func (loop *Loop) Begin(trigger Trigger) {
	loop.Stop()

	loop.announcer.Say(loop.phrases.Completion(trigger.Break))
	title, body := loop.phrases.CompletionAlert(trigger.Break)
	at := trigger.ExpiredAt
	if at.IsZero() {
		at = loop.clock.Now()
	}
	loop.announcer.ScheduleAlert(loop.alertID, title, body, at)

	loop.maxRepeats = max(trigger.MaxRepeats, 0)
	loop.running = true
	loop.nextAt = loop.clock.Now().Add(loop.interval)
}

// Stop cancels the repeat cycle and resets the count. Safe to call when stopped.
func (loop *Loop) Stop() {
	loop.running = false
	loop.nextAt = time.Time{}
	loop.count = 0
}

// Check runs one reminder if one is due at now.
// After a long gap only a single reminder is produced; the next one is
// scheduled a full interval after now.
func (loop *Loop) Check(now time.Time) (Tick, bool) {
	if !loop.running || now.Before(loop.nextAt) {
		return Tick{}, false
	}

	if loop.count >= loop.maxRepeats {
		loop.running = false
		loop.nextAt = time.Time{}
		loop.announcer.Say(loop.phrases.NagStopping)
		return Tick{Count: loop.count, Phrase: loop.phrases.NagStopping, Final: true}, true
	}

	phrase := loop.phrases.Nag(loop.count)
	loop.count++
	loop.nextAt = now.Add(loop.interval)
	loop.announcer.Say(phrase)
	return Tick{Count: loop.count, Phrase: phrase}, true
}

// Running reports whether reminders are still scheduled.
func (loop *Loop) Running() bool {
	return loop.running
}

// Count returns how many reminders have been given since Begin.
func (loop *Loop) Count() int {
	return loop.count
}

// Interval returns the time between reminders.
func (loop *Loop) Interval() time.Duration {
	return loop.interval
}

// SetPhrases replaces the phrase set used by future reminders.
func (loop *Loop) SetPhrases(phrases prompt.Phrases) {
	loop.phrases = phrases
}
