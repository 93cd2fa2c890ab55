package prompt

import (
	"log/slog"
	"time"
)

// LogSpeaker is the speech fallback used when no TTS engine is available.
type LogSpeaker struct {
	logger *slog.Logger
}

// NewLogSpeaker creates a speaker that writes phrases to the log.
func NewLogSpeaker(logger *slog.Logger) *LogSpeaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpeaker{logger: logger}
}

// Speak logs the phrase.
func (speaker *LogSpeaker) Speak(text string, rate float64, voiceID string) error {
	speaker.logger.Info("say", slog.String("text", text), slog.Float64("rate", rate), slog.String("voice", voiceID))
	return nil
}

// LogAlerter is the alert fallback used when no notification backend is available.
type LogAlerter struct {
	logger *slog.Logger
}

// NewLogAlerter creates an alerter that writes alerts to the log.
func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAlerter{logger: logger}
}

// ScheduleAlert logs the alert.
func (alerter *LogAlerter) ScheduleAlert(id int, title, body string, at time.Time) error {
	alerter.logger.Debug("alert scheduled",
		slog.Int("alert_id", id),
		slog.String("title", title),
		slog.String("body", body),
		slog.Time("at", at),
	)
	return nil
}

// CancelAlert logs the cancellation.
func (alerter *LogAlerter) CancelAlert(id int) error {
	alerter.logger.Debug("alert canceled", slog.Int("alert_id", id))
	return nil
}
