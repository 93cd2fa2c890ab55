package routine

import "time"

// EventType defines the type of routine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventExpired     EventType = "expired"
	EventNag         EventType = "nag"
	EventRejected    EventType = "rejected"
	EventTasksChange EventType = "tasks_change"
	EventConfigSaved EventType = "config_saved"
)

// Event represents a routine update for observers.
type Event struct {
	Type      EventType
	Phase     Phase
	TaskIndex int
	TaskName  string
	Remaining int
	Count     int
	Message   string
	At        time.Time
}
