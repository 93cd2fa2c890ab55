// Package config loads the application options: where the routine is stored,
// how it talks and how often it checks the clock.
//
// The routine itself (tasks, break length, passcode, voice) is user data and
// lives in the storage package instead.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory and default files.
const AppName = "routinetimer"

const (
	fileName  = "config.yaml"
	envPrefix = "ROUTINE"
)

// Default timings.
const (
	DefaultTick       = time.Second
	DefaultEscalation = 15 * time.Second
	DefaultRetry      = 3 * time.Minute
)

// Options is the full set of application options.
type Options struct {
	LogLevel string        `mapstructure:"log_level"`
	Language string        `mapstructure:"language"`
	Store    StoreOptions  `mapstructure:"store"`
	Timing   TimingOptions `mapstructure:"timing"`
	Speech   SpeechOptions `mapstructure:"speech"`
	Nags     []string      `mapstructure:"nags"`
}

// StoreOptions selects the persistence backend.
type StoreOptions struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// TimingOptions tunes the routine clocks.
type TimingOptions struct {
	Tick       time.Duration `mapstructure:"tick"`
	Escalation time.Duration `mapstructure:"escalation"`
	Retry      time.Duration `mapstructure:"retry"`
}

// SpeechOptions controls the text to speech backend.
type SpeechOptions struct {
	Enabled bool   `mapstructure:"enabled"`
	Command string `mapstructure:"command"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		LogLevel: "info",
		Language: "en",
		Store:    StoreOptions{Backend: "yaml"},
		Timing: TimingOptions{
			Tick:       DefaultTick,
			Escalation: DefaultEscalation,
			Retry:      DefaultRetry,
		},
		Speech: SpeechOptions{Enabled: true},
	}
}

// DefaultPath returns <user config dir>/routinetimer/config.yaml.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, fileName)
}

// Load reads options from path and ROUTINE_* environment variables.
// An empty path uses DefaultPath; a missing file is not an error.
func Load(path string) (Options, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Default(), fmt.Errorf("read options %s: %w", path, err)
			}
		}
	}

	var options Options
	if err := v.Unmarshal(&options); err != nil {
		return Default(), fmt.Errorf("decode options: %w", err)
	}
	return options.normalize(), nil
}

func setDefaults(v *viper.Viper, defaults Options) {
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("language", defaults.Language)
	v.SetDefault("store.backend", defaults.Store.Backend)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("timing.tick", defaults.Timing.Tick)
	v.SetDefault("timing.escalation", defaults.Timing.Escalation)
	v.SetDefault("timing.retry", defaults.Timing.Retry)
	v.SetDefault("speech.enabled", defaults.Speech.Enabled)
	v.SetDefault("speech.command", defaults.Speech.Command)
	v.SetDefault("nags", defaults.Nags)
}

// normalize replaces unusable timings with their defaults.
func (options Options) normalize() Options {
	if options.Timing.Tick <= 0 {
		options.Timing.Tick = DefaultTick
	}
	if options.Timing.Escalation <= 0 {
		options.Timing.Escalation = DefaultEscalation
	}
	if options.Timing.Retry <= 0 {
		options.Timing.Retry = DefaultRetry
	}
	options.LogLevel = strings.ToLower(strings.TrimSpace(options.LogLevel))
	options.Store.Backend = strings.ToLower(strings.TrimSpace(options.Store.Backend))
	if options.Store.Backend == "" {
		options.Store.Backend = "yaml"
	}
	return options
}

// SlogLevel parses LogLevel, falling back to info.
func (options Options) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(options.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
