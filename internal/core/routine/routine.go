// Package routine drives a user through an ordered list of timed tasks with
// optional breaks.
//
// A Routine is the only owner of the session state. User actions and the
// periodic Tick are serialized by one mutex, so every transition runs to
// completion before the next one starts. Each transition stops the
// escalation loop and replaces or cancels the countdown before establishing
// the new state, which keeps exactly one countdown and at most one reminder
// cycle alive.
package routine

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"routinetimer/internal/core/clock"
	"routinetimer/internal/core/countdown"
	"routinetimer/internal/core/escalation"
	"routinetimer/internal/core/model"
	"routinetimer/internal/prompt"
)

// Rejections returned by user actions. None of them changes the session.
var (
	ErrPasscodeMismatch = errors.New("passcode does not match")
	ErrAlreadyStarted   = errors.New("routine already started")
	ErrNotActive        = errors.New("no task or break in progress")
	ErrRoutineActive    = errors.New("routine is in progress")
	ErrTaskNotFound     = errors.New("task not found")
)

// Defaults for Options.
const (
	DefaultTickInterval  = time.Second
	DefaultRetryDuration = 3 * time.Minute
)

// Options contains runtime options for a Routine.
type Options struct {
	Clock              clock.Clock
	TickInterval       time.Duration
	EscalationInterval time.Duration
	RetryDuration      time.Duration
	Phrases            prompt.Phrases
	Logger             *slog.Logger
}

// Routine is the routine progression state machine.
type Routine struct {
	mu         sync.Mutex
	options    Options
	clock      clock.Clock
	logger     *slog.Logger
	phrases    prompt.Phrases
	prompter   *prompt.Prompter
	library    *Library
	tasks      []model.Task
	config     model.RoutineConfig
	session    Session
	countdown  *countdown.Engine
	escalation *escalation.Loop
	events     []chan Event
	closed     bool
}

// New creates an idle Routine with the tasks and config saved in library.
func New(library *Library, prompter *prompt.Prompter, options Options) *Routine {
	if options.Clock == nil {
		options.Clock = clock.System{}
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.EscalationInterval <= 0 {
		options.EscalationInterval = escalation.DefaultInterval
	}
	if options.RetryDuration <= 0 {
		options.RetryDuration = DefaultRetryDuration
	}
	if options.Phrases.Intro == "" {
		options.Phrases = prompt.English()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if library == nil {
		library = NewLibrary(nil, options.Logger)
	}
	if prompter == nil {
		prompter = prompt.NewPrompter(nil, nil, options.Logger)
	}

	tasks, config := library.Load()
	prompter.SetVoice(config.VoiceRate, config.VoiceID)

	return &Routine{
		options:    options,
		clock:      options.Clock,
		logger:     options.Logger,
		phrases:    options.Phrases,
		prompter:   prompter,
		library:    library,
		tasks:      tasks,
		config:     config,
		session:    newSession(),
		countdown:  countdown.New(options.Clock, prompter, prompt.ReservedAlertID),
		escalation: escalation.New(options.Clock, prompter, options.Phrases, options.EscalationInterval, prompt.ReservedAlertID),
	}
}

// Subscribe registers a new observer channel.
func (routine *Routine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	routine.mu.Lock()
	defer routine.mu.Unlock()
	if routine.closed {
		close(ch)
		return ch
	}
	routine.events = append(routine.events, ch)
	return ch
}

// Run calls Tick every TickInterval until ctx is done.
func (routine *Routine) Run(ctx context.Context) {
	ticker := time.NewTicker(routine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			routine.Tick()
		}
	}
}

// Close cancels all timers and closes observer channels.
func (routine *Routine) Close() {
	routine.mu.Lock()
	if routine.closed {
		routine.mu.Unlock()
		return
	}
	routine.closed = true
	routine.countdown.Cancel()
	routine.escalation.Stop()
	events := routine.events
	routine.events = nil
	routine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Tick checks the countdown and the reminder cycle against the clock.
func (routine *Routine) Tick() {
	routine.mu.Lock()
	defer routine.mu.Unlock()
	routine.tickLocked(routine.clock.Now())
}

// Start begins the routine from Idle.
func (routine *Routine) Start() (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if routine.phaseLocked() != PhaseIdle {
		return routine.rejectLocked(ErrAlreadyStarted)
	}
	routine.beginLocked()
	return routine.snapshotLocked(), nil
}

// Advance moves to the next step: it starts the routine from Idle, finishes
// the current task, ends a break or returns to Idle after completion.
func (routine *Routine) Advance() (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	routine.escalation.Stop()
	switch routine.phaseLocked() {
	case PhaseIdle:
		routine.beginLocked()
	case PhaseTaskActive:
		next := routine.session.ActiveTaskIndex + 1
		if next < len(routine.tasks) {
			routine.startTaskLocked(next, "")
		} else {
			routine.completeLocked("")
		}
	case PhaseTaskOnBreak:
		// The break does not consume task time: the task restarts in full.
		routine.startTaskLocked(routine.session.ActiveTaskIndex, "")
	case PhaseAllComplete:
		routine.resetLocked()
		routine.emitStateLocked()
	}
	return routine.snapshotLocked(), nil
}

// TakeBreak pauses the current task for a break.
func (routine *Routine) TakeBreak() (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if !routine.activeLocked() {
		return routine.rejectLocked(ErrNotActive)
	}
	routine.escalation.Stop()
	routine.session.OnBreak = true
	routine.prompter.Say(routine.phrases.BreakStart)
	routine.startCountdownLocked(minutes(routine.config.BreakDurationMinutes))
	routine.emitStateLocked()
	return routine.snapshotLocked(), nil
}

// Retry gives more time in the current task or break without advancing.
func (routine *Routine) Retry() (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if !routine.activeLocked() {
		return routine.rejectLocked(ErrNotActive)
	}
	routine.escalation.Stop()
	routine.prompter.Say(routine.phrases.Retry)
	routine.startCountdownLocked(routine.options.RetryDuration)
	routine.emitStateLocked()
	return routine.snapshotLocked(), nil
}

// Stop returns to Idle when passcode matches the configured stop passcode.
func (routine *Routine) Stop(passcode string) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if subtle.ConstantTimeCompare([]byte(passcode), []byte(routine.config.StopPasscode)) != 1 {
		return routine.rejectLocked(ErrPasscodeMismatch)
	}

	wasIdle := routine.phaseLocked() == PhaseIdle
	routine.resetLocked()
	if !wasIdle {
		routine.prompter.Say(routine.phrases.Stopped)
	}
	routine.emitStateLocked()
	return routine.snapshotLocked(), nil
}

// TestVoice speaks a sample phrase with the current voice settings.
func (routine *Routine) TestVoice() Snapshot {
	routine.mu.Lock()
	defer routine.mu.Unlock()
	routine.prompter.Say(routine.phrases.VoiceTest)
	return routine.snapshotLocked()
}

// AddTask appends a task to the routine.
func (routine *Routine) AddTask(name string, durationMinutes int) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if err := routine.editableLocked(); err != nil {
		return routine.rejectLocked(err)
	}
	task, err := model.NewTask(name, durationMinutes)
	if err != nil {
		return routine.rejectLocked(err)
	}
	routine.replaceTasksLocked(append(model.CloneTasks(routine.tasks), task))
	return routine.snapshotLocked(), nil
}

// UpdateTask edits the name or duration of a task.
func (routine *Routine) UpdateTask(id string, patch model.TaskPatch) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if err := routine.editableLocked(); err != nil {
		return routine.rejectLocked(err)
	}
	index := model.IndexOfTask(routine.tasks, id)
	if index < 0 {
		return routine.rejectLocked(ErrTaskNotFound)
	}
	updated, err := patch.Apply(routine.tasks[index])
	if err != nil {
		return routine.rejectLocked(err)
	}
	tasks := model.CloneTasks(routine.tasks)
	tasks[index] = updated
	routine.replaceTasksLocked(tasks)
	return routine.snapshotLocked(), nil
}

// DeleteTask removes a task.
func (routine *Routine) DeleteTask(id string) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if err := routine.editableLocked(); err != nil {
		return routine.rejectLocked(err)
	}
	index := model.IndexOfTask(routine.tasks, id)
	if index < 0 {
		return routine.rejectLocked(ErrTaskNotFound)
	}
	tasks := model.CloneTasks(routine.tasks)
	routine.replaceTasksLocked(append(tasks[:index], tasks[index+1:]...))
	return routine.snapshotLocked(), nil
}

// ReorderTask moves the task at fromIndex to toIndex.
func (routine *Routine) ReorderTask(fromIndex, toIndex int) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	if err := routine.editableLocked(); err != nil {
		return routine.rejectLocked(err)
	}
	tasks, err := model.MoveTask(routine.tasks, fromIndex, toIndex)
	if err != nil {
		return routine.rejectLocked(err)
	}
	routine.replaceTasksLocked(tasks)
	return routine.snapshotLocked(), nil
}

// UpdateConfig applies and saves a configuration change.
// Changes to durations and repeat caps apply to the next countdown.
func (routine *Routine) UpdateConfig(patch model.ConfigPatch) (Snapshot, error) {
	routine.mu.Lock()
	defer routine.mu.Unlock()

	updated, err := patch.Apply(routine.config)
	if err != nil {
		return routine.rejectLocked(err)
	}
	routine.config = updated
	routine.prompter.SetVoice(updated.VoiceRate, updated.VoiceID)
	if err := routine.library.SaveConfig(updated); err != nil {
		routine.logger.Warn("config kept in memory only", slog.Any("error", err))
	}
	routine.emitLocked(routine.eventLocked(EventConfigSaved))
	return routine.snapshotLocked(), nil
}

// Snapshot returns the current session and task list.
func (routine *Routine) Snapshot() Snapshot {
	routine.mu.Lock()
	defer routine.mu.Unlock()
	return routine.snapshotLocked()
}

// Config returns the current configuration.
func (routine *Routine) Config() model.RoutineConfig {
	routine.mu.Lock()
	defer routine.mu.Unlock()
	return routine.config
}

// Tasks returns a copy of the task list.
func (routine *Routine) Tasks() []model.Task {
	routine.mu.Lock()
	defer routine.mu.Unlock()
	return model.CloneTasks(routine.tasks)
}

func (routine *Routine) tickLocked(now time.Time) {
	if routine.countdown.Check(now) {
		routine.escalation.Begin(escalation.Trigger{
			Break:      routine.session.OnBreak,
			ExpiredAt:  routine.countdown.EndAt(),
			MaxRepeats: routine.config.MaxWarnRepeats,
		})
		routine.emitLocked(routine.eventLocked(EventExpired))
	}

	if tick, ok := routine.escalation.Check(now); ok {
		event := routine.eventLocked(EventNag)
		event.Count = tick.Count
		event.Message = tick.Phrase
		routine.emitLocked(event)
	}

	if routine.countdown.Active() {
		routine.emitLocked(routine.eventLocked(EventProgress))
	}
}

func (routine *Routine) beginLocked() {
	if len(routine.tasks) == 0 {
		routine.completeLocked(routine.phrases.Intro)
		return
	}
	routine.startTaskLocked(0, routine.phrases.Intro)
}

func (routine *Routine) startTaskLocked(index int, preface string) {
	routine.session.ActiveTaskIndex = index
	routine.session.OnBreak = false
	task := routine.tasks[index]
	routine.prompter.Say(joinPhrases(preface, routine.phrases.Next(task.Name)))
	routine.startCountdownLocked(minutes(task.DurationMinutes))
	routine.emitStateLocked()
}

func (routine *Routine) startCountdownLocked(d time.Duration) {
	routine.escalation.Stop()
	title, body := routine.phrases.CompletionAlert(routine.session.OnBreak)
	routine.countdown.Start(d, countdown.Alert{Title: title, Body: body})
}

func (routine *Routine) completeLocked(preface string) {
	routine.escalation.Stop()
	routine.countdown.Cancel()
	routine.session.ActiveTaskIndex = len(routine.tasks)
	routine.session.OnBreak = false
	routine.prompter.Say(joinPhrases(preface, routine.phrases.AllDone))
	routine.emitStateLocked()
}

func (routine *Routine) resetLocked() {
	routine.escalation.Stop()
	routine.countdown.Cancel()
	routine.session = newSession()
}

// editableLocked allows task edits only while no task is in progress.
// Editing after completion returns the routine to Idle first.
func (routine *Routine) editableLocked() error {
	switch routine.phaseLocked() {
	case PhaseIdle:
		return nil
	case PhaseAllComplete:
		routine.resetLocked()
		routine.emitStateLocked()
		return nil
	default:
		return ErrRoutineActive
	}
}

func (routine *Routine) replaceTasksLocked(tasks []model.Task) {
	routine.tasks = tasks
	if err := routine.library.SaveTasks(tasks); err != nil {
		routine.logger.Warn("tasks kept in memory only", slog.Any("error", err))
	}
	routine.emitLocked(routine.eventLocked(EventTasksChange))
}

func (routine *Routine) rejectLocked(err error) (Snapshot, error) {
	routine.logger.Debug("action rejected", slog.Any("error", err))
	event := routine.eventLocked(EventRejected)
	event.Message = err.Error()
	routine.emitLocked(event)
	return routine.snapshotLocked(), err
}

func (routine *Routine) phaseLocked() Phase {
	return routine.session.phase(len(routine.tasks))
}

func (routine *Routine) activeLocked() bool {
	phase := routine.phaseLocked()
	return phase == PhaseTaskActive || phase == PhaseTaskOnBreak
}

func (routine *Routine) snapshotLocked() Snapshot {
	session := routine.session
	session.CountdownEndAt = routine.countdown.EndAt()
	session.WarnRepeatCount = routine.escalation.Count()
	session.Running = routine.countdown.Active()

	snapshot := Snapshot{
		Phase:      routine.phaseLocked(),
		Session:    session,
		Remaining:  routine.countdown.Remaining(),
		Escalating: routine.escalation.Running(),
		Tasks:      model.CloneTasks(routine.tasks),
	}
	if index := session.ActiveTaskIndex; index >= 0 && index < len(routine.tasks) {
		task := routine.tasks[index]
		snapshot.Task = &task
	}
	return snapshot
}

func (routine *Routine) eventLocked(eventType EventType) Event {
	event := Event{
		Type:      eventType,
		Phase:     routine.phaseLocked(),
		TaskIndex: routine.session.ActiveTaskIndex,
		Remaining: routine.countdown.Remaining(),
		At:        routine.clock.Now(),
	}
	if index := routine.session.ActiveTaskIndex; index >= 0 && index < len(routine.tasks) {
		event.TaskName = routine.tasks[index].Name
	}
	return event
}

func (routine *Routine) emitStateLocked() {
	routine.emitLocked(routine.eventLocked(EventStateChange))
}

func (routine *Routine) emitLocked(event Event) {
	for _, ch := range routine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func minutes(count int) time.Duration {
	return time.Duration(model.ClampMinutes(count)) * time.Minute
}

func joinPhrases(parts ...string) string {
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
