package routine

import (
	"fmt"
	"time"

	"routinetimer/internal/core/model"
)

// Phase is the position of the routine.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseTaskActive  Phase = "task_active"
	PhaseTaskOnBreak Phase = "task_on_break"
	PhaseAllComplete Phase = "all_complete"
)

// IdleIndex is the task index before the routine starts.
const IdleIndex = -1

// Session is the ephemeral progress of a routine. It is never persisted.
type Session struct {
	ActiveTaskIndex int
	OnBreak         bool
	CountdownEndAt  time.Time
	WarnRepeatCount int
	Running         bool
}

func newSession() Session {
	return Session{ActiveTaskIndex: IdleIndex}
}

// phase derives the state from the session and the task count.
func (session Session) phase(taskCount int) Phase {
	switch {
	case session.ActiveTaskIndex < 0:
		return PhaseIdle
	case session.ActiveTaskIndex >= taskCount:
		return PhaseAllComplete
	case session.OnBreak:
		return PhaseTaskOnBreak
	default:
		return PhaseTaskActive
	}
}

// Snapshot is what front-ends render after every action.
type Snapshot struct {
	Phase      Phase
	Session    Session
	Task       *model.Task
	Remaining  int
	Escalating bool
	Tasks      []model.Task
}

// Active reports whether a task or break is in progress.
func (snapshot Snapshot) Active() bool {
	return snapshot.Phase == PhaseTaskActive || snapshot.Phase == PhaseTaskOnBreak
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
