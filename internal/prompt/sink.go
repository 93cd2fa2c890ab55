// Package prompt delivers spoken phrases and scheduled alerts.
//
// Delivery is fire-and-forget: a Prompter logs failures from its Speaker or
// Alerter and carries on, so routine timing never depends on them.
package prompt

import (
	"log/slog"
	"sync"
	"time"
)

// ReservedAlertID is the alert id reused by every countdown.
const ReservedAlertID = 1

// Speaker turns text into speech.
type Speaker interface {
	Speak(text string, rate float64, voiceID string) error
}

// Alerter schedules and cancels user-visible alerts.
type Alerter interface {
	ScheduleAlert(id int, title, body string, at time.Time) error
	CancelAlert(id int) error
}

// Prompter wraps a Speaker and an Alerter with the current voice settings.
type Prompter struct {
	mu      sync.Mutex
	speaker Speaker
	alerter Alerter
	logger  *slog.Logger
	rate    float64
	voiceID string
}

// NewPrompter creates a Prompter. Nil collaborators fall back to logging ones.
func NewPrompter(speaker Speaker, alerter Alerter, logger *slog.Logger) *Prompter {
	if logger == nil {
		logger = slog.Default()
	}
	if speaker == nil {
		speaker = NewLogSpeaker(logger)
	}
	if alerter == nil {
		alerter = NewLogAlerter(logger)
	}
	return &Prompter{
		speaker: speaker,
		alerter: alerter,
		logger:  logger,
		rate:    1,
	}
}

// SetVoice updates the rate and voice used by Say.
func (prompter *Prompter) SetVoice(rate float64, voiceID string) {
	prompter.mu.Lock()
	defer prompter.mu.Unlock()
	if rate > 0 {
		prompter.rate = rate
	}
	prompter.voiceID = voiceID
}

// Say speaks text with the current voice settings.
func (prompter *Prompter) Say(text string) {
	if text == "" {
		return
	}
	prompter.mu.Lock()
	rate, voiceID := prompter.rate, prompter.voiceID
	prompter.mu.Unlock()

	if err := prompter.speaker.Speak(text, rate, voiceID); err != nil {
		prompter.logger.Warn("speech failed", slog.String("text", text), slog.Any("error", err))
	}
}

// ScheduleAlert schedules alert id at the given time.
func (prompter *Prompter) ScheduleAlert(id int, title, body string, at time.Time) {
	if err := prompter.alerter.ScheduleAlert(id, title, body, at); err != nil {
		prompter.logger.Warn("schedule alert failed",
			slog.Int("alert_id", id),
			slog.Time("at", at),
			slog.Any("error", err),
		)
	}
}

// CancelAlert cancels alert id.
func (prompter *Prompter) CancelAlert(id int) {
	if err := prompter.alerter.CancelAlert(id); err != nil {
		prompter.logger.Warn("cancel alert failed", slog.Int("alert_id", id), slog.Any("error", err))
	}
}
