package model

import (
	"strings"

	"github.com/google/uuid"
)

// MinTaskMinutes is the shortest allowed task or break duration.
const MinTaskMinutes = 1

// Task is a single step of a routine.
type Task struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration"`
}

// NewTask creates a task with a fresh id.
// The name must not be blank; the duration is clamped to MinTaskMinutes.
func NewTask(name string, minutes int) (Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Task{}, &FieldError{Field: "name", Reason: "must not be empty"}
	}
	return Task{
		ID:              uuid.NewString(),
		Name:            name,
		DurationMinutes: ClampMinutes(minutes),
	}, nil
}

// TaskPatch edits a task in place. Nil fields are left unchanged.
type TaskPatch struct {
	Name            *string
	DurationMinutes *int
}

// Apply returns task with the patch applied.
func (patch TaskPatch) Apply(task Task) (Task, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return task, &FieldError{Field: "name", Reason: "must not be empty"}
		}
		task.Name = name
	}
	if patch.DurationMinutes != nil {
		task.DurationMinutes = ClampMinutes(*patch.DurationMinutes)
	}
	return task, nil
}

// DefaultTasks returns the English routine used when nothing has been saved yet.
func DefaultTasks() []Task {
	return DefaultTasksFor("")
}

// DefaultTasksFor returns the starter routine named in the given language.
// Only Japanese has its own names; other tags get English.
func DefaultTasksFor(language string) []Task {
	names := [4]string{"Open the curtains and get some light", "Wash face", "Brush teeth", "Get dressed"}
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "ja" || strings.HasPrefix(language, "ja-") || strings.HasPrefix(language, "ja_") {
		names = [4]string{"カーテンを開けて光を浴びる", "顔を洗う", "歯を磨く", "着替え"}
	}
	return []Task{
		{ID: "1", Name: names[0], DurationMinutes: 1},
		{ID: "2", Name: names[1], DurationMinutes: 3},
		{ID: "3", Name: names[2], DurationMinutes: 3},
		{ID: "4", Name: names[3], DurationMinutes: 5},
	}
}

// CloneTasks returns a copy of tasks that does not share the backing array.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	return append(make([]Task, 0, len(tasks)), tasks...)
}

// IndexOfTask returns the position of the task with id, or -1.
func IndexOfTask(tasks []Task, id string) int {
	for index, task := range tasks {
		if task.ID == id {
			return index
		}
	}
	return -1
}

// MoveTask moves the element at from to position to, shifting the others.
func MoveTask(tasks []Task, from, to int) ([]Task, error) {
	if from < 0 || from >= len(tasks) {
		return tasks, &FieldError{Field: "fromIndex", Reason: "out of range"}
	}
	if to < 0 || to >= len(tasks) {
		return tasks, &FieldError{Field: "toIndex", Reason: "out of range"}
	}
	moved := CloneTasks(tasks)
	item := moved[from]
	moved = append(moved[:from], moved[from+1:]...)
	moved = append(moved[:to], append([]Task{item}, moved[to:]...)...)
	return moved, nil
}

// ClampMinutes raises non-positive durations to MinTaskMinutes.
func ClampMinutes(minutes int) int {
	if minutes < MinTaskMinutes {
		return MinTaskMinutes
	}
	return minutes
}
