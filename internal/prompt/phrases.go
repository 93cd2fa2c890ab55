package prompt

import (
	"fmt"
	"strings"
)

// Phrases holds everything the routine says out loud.
type Phrases struct {
	Intro       string
	NextTask    string // format with the task name
	TaskDone    string
	BreakOver   string
	BreakStart  string
	Retry       string
	Stopped     string
	AllDone     string
	VoiceTest   string
	NagStopping string
	Nags        []string

	TaskAlertTitle  string
	BreakAlertTitle string
}

// English returns the default phrase set.
func English() Phrases {
	return Phrases{
		Intro:           "Starting.",
		NextTask:        "Next: %s.",
		TaskDone:        "Time is up.",
		BreakOver:       "Break is over.",
		BreakStart:      "Taking a break.",
		Retry:           "Extending the time.",
		Stopped:         "Routine stopped.",
		AllDone:         "All tasks are done.",
		VoiceTest:       "This is a voice test.",
		NagStopping:     "Stopping reminders.",
		Nags:            []string{"Please check the screen.", "Are you still there?", "Time to move on."},
		TaskAlertTitle:  "Timer finished",
		BreakAlertTitle: "Break finished",
	}
}

// Japanese returns the phrase set of the original app.
func Japanese() Phrases {
	return Phrases{
		Intro:           "開始します。",
		NextTask:        "次は、%s",
		TaskDone:        "時間です。",
		BreakOver:       "休憩終了です。",
		BreakStart:      "休憩します。",
		Retry:           "延長します。",
		Stopped:         "中断しました。",
		AllDone:         "全て完了です。",
		VoiceTest:       "テストです",
		NagStopping:     "通知を終了します。",
		Nags:            []string{"画面を操作してください。"},
		TaskAlertTitle:  "タイマー終了",
		BreakAlertTitle: "休憩終了",
	}
}

// ForLanguage picks a phrase set by language tag. Unknown tags get English.
func ForLanguage(language string) Phrases {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "ja" || strings.HasPrefix(language, "ja-") || strings.HasPrefix(language, "ja_") {
		return Japanese()
	}
	return English()
}

// WithNags replaces the nag sequence when nags is not empty.
func (phrases Phrases) WithNags(nags []string) Phrases {
	cleaned := make([]string, 0, len(nags))
	for _, nag := range nags {
		if nag = strings.TrimSpace(nag); nag != "" {
			cleaned = append(cleaned, nag)
		}
	}
	if len(cleaned) > 0 {
		phrases.Nags = cleaned
	}
	return phrases
}

// Next returns the announcement for the given task.
func (phrases Phrases) Next(taskName string) string {
	if !strings.Contains(phrases.NextTask, "%s") {
		return strings.TrimSpace(phrases.NextTask + " " + taskName)
	}
	return fmt.Sprintf(phrases.NextTask, taskName)
}

// Nag returns the nag phrase for the given repeat count, cycling through the set.
func (phrases Phrases) Nag(count int) string {
	if len(phrases.Nags) == 0 {
		return English().Nags[0]
	}
	if count < 0 {
		count = 0
	}
	return phrases.Nags[count%len(phrases.Nags)]
}

// Completion returns the spoken phrase for an expired countdown.
func (phrases Phrases) Completion(isBreak bool) string {
	if isBreak {
		return phrases.BreakOver
	}
	return phrases.TaskDone
}

// CompletionAlert returns the alert title and body for an expired countdown.
func (phrases Phrases) CompletionAlert(isBreak bool) (string, string) {
	if isBreak {
		return phrases.BreakAlertTitle, phrases.BreakOver
	}
	return phrases.TaskAlertTitle, phrases.TaskDone
}
