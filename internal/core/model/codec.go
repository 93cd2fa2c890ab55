package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Storage keys for the persisted routine.
const (
	TasksKey  = "routine_timer_tasks"
	ConfigKey = "routine_timer_config"
)

// EncodeTasks serializes tasks as a JSON array of {id,name,duration}.
func EncodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(data), nil
}

// DecodeTasks parses a saved task list.
// Durations are clamped, blank or repeated ids are regenerated from position
// (skipping ids already in use) and entries with a blank name are kept with
// a placeholder name.
func DecodeTasks(raw string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		return nil, fmt.Errorf("decode tasks: not an array")
	}
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.ID != "" {
			seen[task.ID] = false
		}
	}
	for index := range tasks {
		task := &tasks[index]
		task.DurationMinutes = ClampMinutes(task.DurationMinutes)
		task.Name = strings.TrimSpace(task.Name)
		if task.Name == "" {
			task.Name = fmt.Sprintf("Task %d", index+1)
		}
		if task.ID == "" || seen[task.ID] {
			task.ID = freeTaskID(seen, index+1)
		}
		seen[task.ID] = true
	}
	return tasks, nil
}

// freeTaskID returns the first task-<n> id, starting at n, that no entry
// uses or has claimed.
func freeTaskID(ids map[string]bool, n int) string {
	for ; ; n++ {
		id := fmt.Sprintf("task-%d", n)
		if _, taken := ids[id]; !taken {
			return id
		}
	}
}

// EncodeConfig serializes the routine configuration as a JSON object.
func EncodeConfig(config RoutineConfig) (string, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// DecodeConfig parses a saved configuration merged over the defaults.
func DecodeConfig(raw string) (RoutineConfig, error) {
	config := DefaultRoutineConfig()
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return DefaultRoutineConfig(), fmt.Errorf("decode config: %w", err)
	}
	return config.Normalize(), nil
}
