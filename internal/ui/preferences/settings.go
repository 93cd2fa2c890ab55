package preferences

import (
	"strconv"
	"strings"

	"routinetimer/internal/core/model"
)

// ConfigForm holds the raw text of the configuration fields.
type ConfigForm struct {
	BreakMinutes string
	MaxRepeats   string
	Passcode     string
	VoiceRate    float64
	VoiceID      string
}

// FormFromConfig fills the form from config.
func FormFromConfig(config model.RoutineConfig) ConfigForm {
	return ConfigForm{
		BreakMinutes: strconv.Itoa(config.BreakDurationMinutes),
		MaxRepeats:   strconv.Itoa(config.MaxWarnRepeats),
		Passcode:     config.StopPasscode,
		VoiceRate:    config.VoiceRate,
		VoiceID:      config.VoiceID,
	}
}

// Patch returns the changes between the form and current.
// An empty passcode field keeps the current passcode.
func (form ConfigForm) Patch(current model.RoutineConfig) (model.ConfigPatch, error) {
	var patch model.ConfigPatch

	breakMinutes, err := parseInt("breakDurationMinutes", form.BreakMinutes)
	if err != nil {
		return patch, err
	}
	if breakMinutes != current.BreakDurationMinutes {
		patch.BreakDurationMinutes = &breakMinutes
	}

	maxRepeats, err := parseInt("maxWarnRepeats", form.MaxRepeats)
	if err != nil {
		return patch, err
	}
	if maxRepeats != current.MaxWarnRepeats {
		patch.MaxWarnRepeats = &maxRepeats
	}

	if passcode := form.Passcode; passcode != "" && passcode != current.StopPasscode {
		patch.StopPasscode = &passcode
	}
	if rate := form.VoiceRate; rate != current.VoiceRate {
		patch.VoiceRate = &rate
	}
	if voiceID := strings.TrimSpace(form.VoiceID); voiceID != current.VoiceID {
		patch.VoiceID = &voiceID
	}
	return patch, nil
}

// ParseMinutes reads a task duration field.
func ParseMinutes(value string) (int, error) {
	return parseInt("duration", value)
}

func parseInt(field, value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &model.FieldError{Field: field, Reason: "must be a whole number"}
	}
	return parsed, nil
}
