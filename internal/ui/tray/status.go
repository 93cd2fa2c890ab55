package tray

import (
	"fmt"

	"routinetimer/internal/core/routine"
	"routinetimer/resources"
)

// AdvanceLabel names the primary action for phase.
func AdvanceLabel(phase routine.Phase) string {
	switch phase {
	case routine.PhaseTaskActive:
		return "Next task"
	case routine.PhaseTaskOnBreak:
		return "End break"
	case routine.PhaseAllComplete:
		return "Reset"
	default:
		return "Start routine"
	}
}

// StatusText renders a snapshot as the one line shown at the top of the menu.
func StatusText(snapshot routine.Snapshot) string {
	switch snapshot.Phase {
	case routine.PhaseTaskActive, routine.PhaseTaskOnBreak:
		name := ""
		if snapshot.Task != nil {
			name = snapshot.Task.Name
		}
		step := fmt.Sprintf("%d/%d %s", snapshot.Session.ActiveTaskIndex+1, len(snapshot.Tasks), name)
		if snapshot.Phase == routine.PhaseTaskOnBreak {
			step = "Break: " + name
		}
		if !snapshot.Session.Running {
			return step + " (time is up)"
		}
		return fmt.Sprintf("%s %s", step, routine.FormatRemaining(snapshot.Remaining))
	case routine.PhaseAllComplete:
		return "All tasks done"
	default:
		return fmt.Sprintf("Ready: %d tasks", len(snapshot.Tasks))
	}
}

// IconName picks the tray icon for a snapshot.
func IconName(snapshot routine.Snapshot) string {
	switch {
	case snapshot.Escalating || (snapshot.Active() && !snapshot.Session.Running):
		return resources.IconAlert
	case snapshot.Phase == routine.PhaseTaskOnBreak:
		return resources.IconBreak
	case snapshot.Phase == routine.PhaseTaskActive:
		return resources.IconActive
	case snapshot.Phase == routine.PhaseAllComplete:
		return resources.IconDone
	default:
		return resources.IconIdle
	}
}
