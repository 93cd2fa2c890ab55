package routine

import (
	"fmt"
	"log/slog"

	"routinetimer/internal/core/model"
	"routinetimer/internal/storage"
)

// Library loads and saves the task list and configuration.
type Library struct {
	store    storage.Store
	logger   *slog.Logger
	defaults []model.Task
}

// NewLibrary creates a Library backed by store. A nil store keeps everything in memory.
func NewLibrary(store storage.Store, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = storage.NewMemory()
	}
	return &Library{store: store, logger: logger, defaults: model.DefaultTasks()}
}

// WithDefaultTasks sets the tasks used when none have been saved.
func (lib *Library) WithDefaultTasks(tasks []model.Task) *Library {
	lib.defaults = model.CloneTasks(tasks)
	return lib
}

// Load returns the saved routine. Missing, unreadable or corrupt data is
// replaced by the defaults.
func (lib *Library) Load() ([]model.Task, model.RoutineConfig) {
	tasks := model.CloneTasks(lib.defaults)
	config := model.DefaultRoutineConfig()

	if raw, ok := lib.read(model.TasksKey); ok {
		decoded, err := model.DecodeTasks(raw)
		if err != nil {
			lib.logger.Warn("saved tasks unusable, using defaults", slog.Any("error", err))
		} else {
			tasks = decoded
		}
	}

	if raw, ok := lib.read(model.ConfigKey); ok {
		decoded, err := model.DecodeConfig(raw)
		if err != nil {
			lib.logger.Warn("saved config unusable, using defaults", slog.Any("error", err))
		} else {
			config = decoded
		}
	}

	return tasks, config
}

// SaveTasks persists the task list.
func (lib *Library) SaveTasks(tasks []model.Task) error {
	encoded, err := model.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := lib.store.Set(model.TasksKey, encoded); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// SaveConfig persists the routine configuration.
func (lib *Library) SaveConfig(config model.RoutineConfig) error {
	encoded, err := model.EncodeConfig(config)
	if err != nil {
		return err
	}
	if err := lib.store.Set(model.ConfigKey, encoded); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (lib *Library) read(key string) (string, bool) {
	raw, ok, err := lib.store.Get(key)
	if err != nil {
		lib.logger.Warn("read saved routine failed", slog.String("key", key), slog.Any("error", err))
		return "", false
	}
	return raw, ok
}
