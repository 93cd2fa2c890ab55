package cli

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"routinetimer/internal/config"
	"routinetimer/internal/core/model"
	"routinetimer/internal/core/routine"
	"routinetimer/internal/platform"
	"routinetimer/internal/prompt"
	"routinetimer/internal/storage"
)

// app is the routine with everything it was built from.
type app struct {
	options config.Options
	logger  *slog.Logger
	store   storage.Store
	routine *routine.Routine
}

// sinks selects how the routine talks to the user.
type sinks struct {
	speech  bool
	alerter prompt.Alerter
}

// loadOptions reads the options file and applies the persistent flags.
func loadOptions(cmd *cobra.Command) (config.Options, error) {
	options, err := config.Load(configPath)
	if err != nil {
		return options, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		options.LogLevel = logLevel
	}
	if flags.Changed("store") {
		options.Store.Backend = storeKind
	}
	if flags.Changed("store-path") {
		options.Store.Path = storePath
	}
	return options, nil
}

func newLogger(options config.Options, out io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: options.SlogLevel()}))
}

// openApp builds the routine. Storage and speech failures fall back to
// memory and log output so the routine always starts.
func openApp(options config.Options, logger *slog.Logger, with sinks) *app {
	store, err := storage.Open(options.Store.Backend, options.Store.Path, config.AppName)
	if err != nil {
		logger.Warn("storage unavailable, changes will not be saved",
			slog.String("backend", options.Store.Backend),
			slog.Any("error", err),
		)
		store = storage.NewMemory()
	}

	var speaker prompt.Speaker
	if with.speech && options.Speech.Enabled {
		commandSpeaker, err := platform.NewSpeaker(options.Speech.Command, logger)
		if err != nil {
			logger.Warn("speech unavailable, phrases will be logged", slog.Any("error", err))
		} else {
			speaker = commandSpeaker
		}
	}

	phrases := prompt.ForLanguage(options.Language).WithNags(options.Nags)
	r := routine.New(
		routine.NewLibrary(store, logger).WithDefaultTasks(model.DefaultTasksFor(options.Language)),
		prompt.NewPrompter(speaker, with.alerter, logger),
		routine.Options{
			TickInterval:       options.Timing.Tick,
			EscalationInterval: options.Timing.Escalation,
			RetryDuration:      options.Timing.Retry,
			Phrases:            phrases,
			Logger:             logger,
		},
	)

	return &app{options: options, logger: logger, store: store, routine: r}
}

// openQuiet builds a routine for one-shot commands: no speech, no alerts.
func openQuiet(cmd *cobra.Command) (*app, error) {
	options, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}
	return openApp(options, newLogger(options, os.Stderr), sinks{}), nil
}

func (a *app) Close() {
	a.routine.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close storage", slog.Any("error", err))
	}
}

// switchWriter lets log output move to another writer after startup.
type switchWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *switchWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

func (w *switchWriter) Set(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}
