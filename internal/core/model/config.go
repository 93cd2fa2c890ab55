package model

import (
	"strconv"
	"strings"
)

// Config defaults.
const (
	DefaultBreakDurationMinutes = 5
	DefaultMaxWarnRepeats       = 3
	DefaultStopPasscode         = "123"
	DefaultVoiceRate            = 1.2
)

// RoutineConfig contains the persisted routine settings.
type RoutineConfig struct {
	BreakDurationMinutes int     `json:"breakDurationMinutes"`
	MaxWarnRepeats       int     `json:"maxWarnRepeats"`
	StopPasscode         string  `json:"stopPasscode"`
	VoiceRate            float64 `json:"voiceRate"`
	VoiceID              string  `json:"voiceId,omitempty"`
}

// DefaultRoutineConfig returns the built-in configuration.
func DefaultRoutineConfig() RoutineConfig {
	return RoutineConfig{
		BreakDurationMinutes: DefaultBreakDurationMinutes,
		MaxWarnRepeats:       DefaultMaxWarnRepeats,
		StopPasscode:         DefaultStopPasscode,
		VoiceRate:            DefaultVoiceRate,
	}
}

// Normalize clamps out of range values and replaces unusable ones with defaults.
func (config RoutineConfig) Normalize() RoutineConfig {
	config.BreakDurationMinutes = ClampMinutes(config.BreakDurationMinutes)
	if config.MaxWarnRepeats < 0 {
		config.MaxWarnRepeats = 0
	}
	if config.VoiceRate <= 0 {
		config.VoiceRate = DefaultVoiceRate
	}
	if config.StopPasscode == "" {
		config.StopPasscode = DefaultStopPasscode
	}
	config.VoiceID = strings.TrimSpace(config.VoiceID)
	return config
}

// ConfigPatch is a partial update of RoutineConfig. Nil fields are left unchanged.
type ConfigPatch struct {
	BreakDurationMinutes *int
	MaxWarnRepeats       *int
	StopPasscode         *string
	VoiceRate            *float64
	VoiceID              *string
}

// IsEmpty reports whether the patch changes nothing.
func (patch ConfigPatch) IsEmpty() bool {
	return patch.BreakDurationMinutes == nil &&
		patch.MaxWarnRepeats == nil &&
		patch.StopPasscode == nil &&
		patch.VoiceRate == nil &&
		patch.VoiceID == nil
}

// Apply returns config with the patch applied.
// Durations and repeat counts are clamped; an empty passcode or a
// non-positive voice rate is rejected with a FieldError.
func (patch ConfigPatch) Apply(config RoutineConfig) (RoutineConfig, error) {
	if patch.BreakDurationMinutes != nil {
		config.BreakDurationMinutes = ClampMinutes(*patch.BreakDurationMinutes)
	}
	if patch.MaxWarnRepeats != nil {
		config.MaxWarnRepeats = max(*patch.MaxWarnRepeats, 0)
	}
	if patch.StopPasscode != nil {
		if *patch.StopPasscode == "" {
			return config, &FieldError{Field: "stopPasscode", Reason: "must not be empty"}
		}
		config.StopPasscode = *patch.StopPasscode
	}
	if patch.VoiceRate != nil {
		if *patch.VoiceRate <= 0 {
			return config, &FieldError{Field: "voiceRate", Reason: "must be greater than zero"}
		}
		config.VoiceRate = *patch.VoiceRate
	}
	if patch.VoiceID != nil {
		config.VoiceID = strings.TrimSpace(*patch.VoiceID)
	}
	return config, nil
}

// ParseConfigField builds a patch that sets one field from its text form.
// Keys are the JSON field names or their short aliases.
func ParseConfigField(key, value string) (ConfigPatch, error) {
	var patch ConfigPatch
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "breakdurationminutes", "break":
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return patch, &FieldError{Field: "breakDurationMinutes", Reason: "must be a whole number"}
		}
		patch.BreakDurationMinutes = &minutes
	case "maxwarnrepeats", "repeats":
		repeats, err := strconv.Atoi(value)
		if err != nil {
			return patch, &FieldError{Field: "maxWarnRepeats", Reason: "must be a whole number"}
		}
		patch.MaxWarnRepeats = &repeats
	case "stoppasscode", "passcode":
		patch.StopPasscode = &value
	case "voicerate", "rate":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return patch, &FieldError{Field: "voiceRate", Reason: "must be a number"}
		}
		patch.VoiceRate = &rate
	case "voiceid", "voice":
		patch.VoiceID = &value
	default:
		return patch, &FieldError{Field: key, Reason: "unknown setting"}
	}
	return patch, nil
}
