package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"routinetimer/internal/core/model"
	"routinetimer/internal/core/routine"
	"routinetimer/resources"
)

func TestStatusText(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Name: "Wash face", DurationMinutes: 3},
		{ID: "2", Name: "Get dressed", DurationMinutes: 5},
	}
	task := tasks[0]

	tests := []struct {
		name     string
		snapshot routine.Snapshot
		want     string
		icon     string
	}{
		{
			name:     "idle",
			snapshot: routine.Snapshot{Phase: routine.PhaseIdle, Tasks: tasks},
			want:     "Ready: 2 tasks",
			icon:     resources.IconIdle,
		},
		{
			name: "running task",
			snapshot: routine.Snapshot{
				Phase:     routine.PhaseTaskActive,
				Session:   routine.Session{ActiveTaskIndex: 0, Running: true},
				Task:      &task,
				Remaining: 125,
				Tasks:     tasks,
			},
			want: "1/2 Wash face 2:05",
			icon: resources.IconActive,
		},
		{
			name: "break",
			snapshot: routine.Snapshot{
				Phase:     routine.PhaseTaskOnBreak,
				Session:   routine.Session{ActiveTaskIndex: 0, OnBreak: true, Running: true},
				Task:      &task,
				Remaining: 300,
				Tasks:     tasks,
			},
			want: "Break: Wash face 5:00",
			icon: resources.IconBreak,
		},
		{
			name: "expired",
			snapshot: routine.Snapshot{
				Phase:      routine.PhaseTaskActive,
				Session:    routine.Session{ActiveTaskIndex: 0},
				Task:       &task,
				Escalating: true,
				Tasks:      tasks,
			},
			want: "1/2 Wash face (time is up)",
			icon: resources.IconAlert,
		},
		{
			name:     "complete",
			snapshot: routine.Snapshot{Phase: routine.PhaseAllComplete, Session: routine.Session{ActiveTaskIndex: 2}, Tasks: tasks},
			want:     "All tasks done",
			icon:     resources.IconDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.snapshot))
			assert.Equal(t, tt.icon, IconName(tt.snapshot))
		})
	}
}

func TestAdvanceLabel(t *testing.T) {
	assert.Equal(t, "Start routine", AdvanceLabel(routine.PhaseIdle))
	assert.Equal(t, "Next task", AdvanceLabel(routine.PhaseTaskActive))
	assert.Equal(t, "End break", AdvanceLabel(routine.PhaseTaskOnBreak))
	assert.Equal(t, "Reset", AdvanceLabel(routine.PhaseAllComplete))
}
