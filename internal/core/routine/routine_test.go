package routine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinetimer/internal/core/clock"
	"routinetimer/internal/core/model"
	"routinetimer/internal/prompt"
	"routinetimer/internal/storage"
)

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (speaker *recordingSpeaker) Speak(text string, rate float64, voiceID string) error {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	speaker.spoken = append(speaker.spoken, text)
	return nil
}

func (speaker *recordingSpeaker) Spoken() []string {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	return append([]string(nil), speaker.spoken...)
}

func (speaker *recordingSpeaker) Last() string {
	spoken := speaker.Spoken()
	if len(spoken) == 0 {
		return ""
	}
	return spoken[len(spoken)-1]
}

type recordingAlerter struct {
	mu    sync.Mutex
	calls []string
}

func (alerter *recordingAlerter) ScheduleAlert(id int, title, body string, at time.Time) error {
	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	alerter.calls = append(alerter.calls, fmt.Sprintf("schedule %d %s @%s", id, title, at.Format(time.TimeOnly)))
	return nil
}

func (alerter *recordingAlerter) CancelAlert(id int) error {
	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	alerter.calls = append(alerter.calls, fmt.Sprintf("cancel %d", id))
	return nil
}

func (alerter *recordingAlerter) Calls() []string {
	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	return append([]string(nil), alerter.calls...)
}

type fixture struct {
	routine *Routine
	clock   *clock.Manual
	speaker *recordingSpeaker
	alerter *recordingAlerter
	store   *storage.Memory
	events  <-chan Event
}

var testStart = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, tasks []model.Task) *fixture {
	t.Helper()

	store := storage.NewMemory()
	if tasks != nil {
		encoded, err := model.EncodeTasks(tasks)
		require.NoError(t, err)
		require.NoError(t, store.Set(model.TasksKey, encoded))
	}
	return newFixtureWithStore(t, store)
}

func newFixtureWithStore(t *testing.T, store *storage.Memory) *fixture {
	t.Helper()

	logger := discardLogger()
	clk := clock.NewManual(testStart)
	speaker := &recordingSpeaker{}
	alerter := &recordingAlerter{}

	routine := New(
		NewLibrary(store, logger),
		prompt.NewPrompter(speaker, alerter, logger),
		Options{Clock: clk, Logger: logger},
	)
	t.Cleanup(routine.Close)

	return &fixture{
		routine: routine,
		clock:   clk,
		speaker: speaker,
		alerter: alerter,
		store:   store,
		events:  routine.Subscribe(256),
	}
}

// advance moves the clock and runs one tick.
func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.routine.Tick()
}

func (f *fixture) drain() []Event {
	var events []Event
	for {
		select {
		case event, ok := <-f.events:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, event := range events {
		if event.Type != EventProgress {
			types = append(types, event.Type)
		}
	}
	return types
}

func morningTasks() []model.Task {
	return []model.Task{
		{ID: "a", Name: "Open curtains", DurationMinutes: 1},
		{ID: "b", Name: "Wash face", DurationMinutes: 3},
	}
}

func TestStartAnnouncesFirstTask(t *testing.T) {
	f := newFixture(t, morningTasks())

	snapshot, err := f.routine.Start()
	require.NoError(t, err)

	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Session.ActiveTaskIndex)
	assert.Equal(t, 60, snapshot.Remaining)
	assert.True(t, snapshot.Session.Running)
	assert.Equal(t, testStart.Add(time.Minute), snapshot.Session.CountdownEndAt)
	require.NotNil(t, snapshot.Task)
	assert.Equal(t, "Open curtains", snapshot.Task.Name)

	assert.Equal(t, []string{"Starting. Next: Open curtains."}, f.speaker.Spoken())
	assert.Equal(t, []string{"schedule 1 Timer finished @07:01:00"}, f.alerter.Calls())
	assert.Equal(t, []EventType{EventStateChange}, eventTypes(f.drain()))
}

func TestStartTwiceIsRejected(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	snapshot, err := f.routine.Start()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Len(t, f.speaker.Spoken(), 1)
}

func TestCountdownExpiryAndNextTask(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)
	f.drain()

	f.advance(30 * time.Second)
	assert.Equal(t, 30, f.routine.Snapshot().Remaining)

	f.advance(30 * time.Second)
	snapshot := f.routine.Snapshot()
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Remaining)
	assert.True(t, snapshot.Escalating)
	assert.False(t, snapshot.Session.Running)
	assert.Equal(t, "Time is up.", f.speaker.Last())
	assert.Equal(t, []EventType{EventExpired}, eventTypes(f.drain()))

	f.advance(15 * time.Second)
	assert.Equal(t, "Please check the screen.", f.speaker.Last())
	assert.Equal(t, 1, f.routine.Snapshot().Session.WarnRepeatCount)

	snapshot, err = f.routine.Advance()
	require.NoError(t, err)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Equal(t, 1, snapshot.Session.ActiveTaskIndex)
	assert.Equal(t, 180, snapshot.Remaining)
	assert.False(t, snapshot.Escalating)
	assert.Zero(t, snapshot.Session.WarnRepeatCount)
	assert.Equal(t, "Next: Wash face.", f.speaker.Last())

	spokenBefore := len(f.speaker.Spoken())
	f.advance(time.Minute)
	assert.Len(t, f.speaker.Spoken(), spokenBefore, "no reminder after advancing")
}

func TestEscalationStopsAtCap(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	f.advance(time.Minute)
	f.drain()
	for i := 0; i < 4; i++ {
		f.advance(15 * time.Second)
	}

	spoken := f.speaker.Spoken()
	assert.Equal(t, []string{
		"Time is up.",
		"Please check the screen.",
		"Are you still there?",
		"Time to move on.",
		"Stopping reminders.",
	}, spoken[len(spoken)-5:])

	snapshot := f.routine.Snapshot()
	assert.False(t, snapshot.Escalating)
	assert.Equal(t, 3, snapshot.Session.WarnRepeatCount)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)

	var nagCounts []int
	for _, event := range f.drain() {
		if event.Type == EventNag {
			nagCounts = append(nagCounts, event.Count)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 3}, nagCounts)

	f.advance(time.Hour)
	assert.Len(t, f.speaker.Spoken(), len(spoken))
}

func TestSuspensionProducesSingleExpiry(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	f.advance(10 * time.Minute)
	f.routine.Tick()

	assert.Equal(t, []string{"Starting. Next: Open curtains.", "Time is up."}, f.speaker.Spoken())
	assert.Zero(t, f.routine.Snapshot().Session.WarnRepeatCount)
}

// Expiry repeats the countdown alert under the same id so a sink whose timer
// ran late still shows it; the sink drops the repeat once shown.
func TestExpiryReassertsReservedAlert(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	f.advance(time.Minute)

	assert.Equal(t, []string{
		"schedule 1 Timer finished @07:01:00",
		"schedule 1 Timer finished @07:01:00",
	}, f.alerter.Calls())
}

func TestBreakResumesTaskWithFullDuration(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)
	f.advance(20 * time.Second)

	snapshot, err := f.routine.TakeBreak()
	require.NoError(t, err)
	assert.Equal(t, PhaseTaskOnBreak, snapshot.Phase)
	assert.Equal(t, 300, snapshot.Remaining)
	assert.Equal(t, "Taking a break.", f.speaker.Last())

	f.advance(5 * time.Minute)
	assert.Equal(t, "Break is over.", f.speaker.Last())

	snapshot, err = f.routine.Advance()
	require.NoError(t, err)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Session.ActiveTaskIndex)
	assert.Equal(t, 60, snapshot.Remaining)
	assert.Equal(t, "Next: Open curtains.", f.speaker.Last())
	assert.Contains(t, f.alerter.Calls(), "schedule 1 Break finished @07:05:20")
}

func TestBreakUsesConfiguredDuration(t *testing.T) {
	f := newFixture(t, morningTasks())
	breakMinutes := 2
	_, err := f.routine.UpdateConfig(model.ConfigPatch{BreakDurationMinutes: &breakMinutes})
	require.NoError(t, err)

	_, err = f.routine.Start()
	require.NoError(t, err)
	snapshot, err := f.routine.TakeBreak()
	require.NoError(t, err)
	assert.Equal(t, 120, snapshot.Remaining)
}

func TestRetryExtendsCurrentStep(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)
	f.advance(time.Minute)
	f.advance(15 * time.Second)

	snapshot, err := f.routine.Retry()
	require.NoError(t, err)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Session.ActiveTaskIndex)
	assert.Equal(t, 180, snapshot.Remaining)
	assert.False(t, snapshot.Escalating)
	assert.Zero(t, snapshot.Session.WarnRepeatCount)
	assert.Equal(t, "Extending the time.", f.speaker.Last())
}

func TestActionsRequireActiveStep(t *testing.T) {
	f := newFixture(t, morningTasks())

	_, err := f.routine.TakeBreak()
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = f.routine.Retry()
	assert.ErrorIs(t, err, ErrNotActive)

	assert.Equal(t, []EventType{EventRejected, EventRejected}, eventTypes(f.drain()))
	assert.Empty(t, f.speaker.Spoken())
	assert.Empty(t, f.alerter.Calls())
}

func TestAdvanceThroughCompletion(t *testing.T) {
	f := newFixture(t, morningTasks())

	snapshot, err := f.routine.Advance()
	require.NoError(t, err)
	assert.Equal(t, PhaseTaskActive, snapshot.Phase)

	_, err = f.routine.Advance()
	require.NoError(t, err)
	snapshot, err = f.routine.Advance()
	require.NoError(t, err)
	assert.Equal(t, PhaseAllComplete, snapshot.Phase)
	assert.Equal(t, 2, snapshot.Session.ActiveTaskIndex)
	assert.Zero(t, snapshot.Remaining)
	assert.False(t, snapshot.Session.Running)
	assert.Nil(t, snapshot.Task)
	assert.Equal(t, "All tasks are done.", f.speaker.Last())
	assert.Equal(t, "cancel 1", f.alerter.Calls()[len(f.alerter.Calls())-1])

	spoken := len(f.speaker.Spoken())
	f.advance(time.Hour)
	assert.Len(t, f.speaker.Spoken(), spoken)

	snapshot, err = f.routine.Advance()
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, IdleIndex, snapshot.Session.ActiveTaskIndex)
}

func TestZeroTasksCompleteImmediately(t *testing.T) {
	f := newFixture(t, []model.Task{})

	snapshot, err := f.routine.Start()
	require.NoError(t, err)
	assert.Equal(t, PhaseAllComplete, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Session.ActiveTaskIndex)
	assert.Equal(t, []string{"Starting. All tasks are done."}, f.speaker.Spoken())
	assert.Empty(t, f.alerter.Calls())
}

func TestStopRequiresPasscode(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{name: "task active", setup: func(t *testing.T, f *fixture) {}},
		{name: "on break", setup: func(t *testing.T, f *fixture) {
			_, err := f.routine.TakeBreak()
			require.NoError(t, err)
		}},
		{name: "escalating", setup: func(t *testing.T, f *fixture) {
			f.advance(time.Minute)
			f.advance(15 * time.Second)
		}},
		{name: "all complete", setup: func(t *testing.T, f *fixture) {
			_, err := f.routine.Advance()
			require.NoError(t, err)
			_, err = f.routine.Advance()
			require.NoError(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, morningTasks())
			_, err := f.routine.Start()
			require.NoError(t, err)
			tt.setup(t, f)

			before := f.routine.Snapshot()
			spoken := len(f.speaker.Spoken())

			after, err := f.routine.Stop("999")
			assert.ErrorIs(t, err, ErrPasscodeMismatch)
			assert.Equal(t, before, after)
			assert.Len(t, f.speaker.Spoken(), spoken)

			after, err = f.routine.Stop("123")
			require.NoError(t, err)
			assert.Equal(t, PhaseIdle, after.Phase)
			assert.Equal(t, IdleIndex, after.Session.ActiveTaskIndex)
			assert.False(t, after.Session.OnBreak)
			assert.False(t, after.Session.Running)
			assert.False(t, after.Escalating)
			assert.Zero(t, after.Session.WarnRepeatCount)
			assert.True(t, after.Session.CountdownEndAt.IsZero())
			assert.Equal(t, "Routine stopped.", f.speaker.Last())

			spoken = len(f.speaker.Spoken())
			f.advance(time.Hour)
			assert.Len(t, f.speaker.Spoken(), spoken)
		})
	}
}

func TestStopCancelsPendingAlert(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	_, err = f.routine.Stop("123")
	require.NoError(t, err)
	assert.Equal(t, []string{"schedule 1 Timer finished @07:01:00", "cancel 1"}, f.alerter.Calls())
}

func TestStopWhenIdleIsSilent(t *testing.T) {
	f := newFixture(t, morningTasks())

	snapshot, err := f.routine.Stop("123")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Empty(t, f.speaker.Spoken())
}

func TestEditsRejectedWhileActive(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	_, err = f.routine.AddTask("Stretch", 2)
	assert.ErrorIs(t, err, ErrRoutineActive)
	name := "Renamed"
	_, err = f.routine.UpdateTask("a", model.TaskPatch{Name: &name})
	assert.ErrorIs(t, err, ErrRoutineActive)
	_, err = f.routine.DeleteTask("a")
	assert.ErrorIs(t, err, ErrRoutineActive)
	_, err = f.routine.ReorderTask(0, 1)
	assert.ErrorIs(t, err, ErrRoutineActive)

	assert.Equal(t, morningTasks(), f.routine.Tasks())
	assert.Equal(t, PhaseTaskActive, f.routine.Snapshot().Phase)
}

func TestEditAfterCompletionReturnsToIdle(t *testing.T) {
	f := newFixture(t, morningTasks())
	for i := 0; i < 3; i++ {
		_, err := f.routine.Advance()
		require.NoError(t, err)
	}
	require.Equal(t, PhaseAllComplete, f.routine.Snapshot().Phase)

	snapshot, err := f.routine.AddTask("Stretch", 2)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	require.Len(t, snapshot.Tasks, 3)
	assert.Equal(t, "Stretch", snapshot.Tasks[2].Name)
}

func TestTaskEditsPersist(t *testing.T) {
	f := newFixture(t, morningTasks())

	snapshot, err := f.routine.AddTask("  Stretch  ", 0)
	require.NoError(t, err)
	require.Len(t, snapshot.Tasks, 3)
	added := snapshot.Tasks[2]
	assert.Equal(t, "Stretch", added.Name)
	assert.Equal(t, model.MinTaskMinutes, added.DurationMinutes)
	assert.NotEmpty(t, added.ID)

	minutes := 4
	_, err = f.routine.UpdateTask(added.ID, model.TaskPatch{DurationMinutes: &minutes})
	require.NoError(t, err)

	_, err = f.routine.DeleteTask("a")
	require.NoError(t, err)

	raw, ok, err := f.store.Get(model.TasksKey)
	require.NoError(t, err)
	require.True(t, ok)
	saved, err := model.DecodeTasks(raw)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{
		{ID: "b", Name: "Wash face", DurationMinutes: 3},
		{ID: added.ID, Name: "Stretch", DurationMinutes: 4},
	}, saved)

	types := eventTypes(f.drain())
	assert.Equal(t, []EventType{EventTasksChange, EventTasksChange, EventTasksChange}, types)
}

func TestTaskEditValidation(t *testing.T) {
	f := newFixture(t, morningTasks())

	_, err := f.routine.AddTask("   ", 3)
	var fieldErr *model.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "name", fieldErr.Field)

	_, err = f.routine.DeleteTask("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.routine.ReorderTask(0, 5)
	assert.Error(t, err)

	assert.Equal(t, morningTasks(), f.routine.Tasks())
}

func TestReorderPreservesIDs(t *testing.T) {
	f := newFixture(t, nil)

	snapshot, err := f.routine.ReorderTask(0, 2)
	require.NoError(t, err)

	ids := make([]string, 0, len(snapshot.Tasks))
	for _, task := range snapshot.Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids)
	assert.Equal(t, "Open the curtains and get some light", snapshot.Tasks[2].Name)
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(t, morningTasks())

	passcode := "4321"
	snapshot, err := f.routine.UpdateConfig(model.ConfigPatch{StopPasscode: &passcode})
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, "4321", f.routine.Config().StopPasscode)

	raw, ok, err := f.store.Get(model.ConfigKey)
	require.NoError(t, err)
	require.True(t, ok)
	saved, err := model.DecodeConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, "4321", saved.StopPasscode)

	empty := ""
	_, err = f.routine.UpdateConfig(model.ConfigPatch{StopPasscode: &empty})
	var fieldErr *model.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "stopPasscode", fieldErr.Field)
	assert.Equal(t, "4321", f.routine.Config().StopPasscode)

	_, err = f.routine.Start()
	require.NoError(t, err)
	_, err = f.routine.Stop("123")
	assert.ErrorIs(t, err, ErrPasscodeMismatch)
	_, err = f.routine.Stop("4321")
	assert.NoError(t, err)

	assert.Equal(t, []EventType{EventConfigSaved, EventRejected, EventStateChange, EventRejected, EventStateChange}, eventTypes(f.drain()))
}

func TestConfigChangeAllowedWhileActive(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	repeats := 1
	_, err = f.routine.UpdateConfig(model.ConfigPatch{MaxWarnRepeats: &repeats})
	require.NoError(t, err)

	f.advance(time.Minute)
	f.advance(15 * time.Second)
	f.advance(15 * time.Second)

	assert.Equal(t, "Stopping reminders.", f.speaker.Last())
	assert.Equal(t, 1, f.routine.Snapshot().Session.WarnRepeatCount)
}

func TestCorruptStorageFallsBackToDefaults(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(model.TasksKey, "not json"))
	require.NoError(t, store.Set(model.ConfigKey, "{broken"))

	f := newFixtureWithStore(t, store)

	assert.Equal(t, model.DefaultTasks(), f.routine.Tasks())
	assert.Equal(t, model.DefaultRoutineConfig(), f.routine.Config())
}

func TestLibraryDefaultTasksOnlyWhenNothingSaved(t *testing.T) {
	defaults := model.DefaultTasksFor("ja")

	empty := NewLibrary(storage.NewMemory(), discardLogger()).WithDefaultTasks(defaults)
	tasks, _ := empty.Load()
	assert.Equal(t, defaults, tasks)

	store := storage.NewMemory()
	encoded, err := model.EncodeTasks(morningTasks())
	require.NoError(t, err)
	require.NoError(t, store.Set(model.TasksKey, encoded))
	saved := NewLibrary(store, discardLogger()).WithDefaultTasks(defaults)
	tasks, _ = saved.Load()
	assert.Equal(t, morningTasks(), tasks)
}

func TestTestVoiceKeepsState(t *testing.T) {
	f := newFixture(t, morningTasks())

	snapshot := f.routine.TestVoice()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, []string{"This is a voice test."}, f.speaker.Spoken())
}

func TestCloseClosesSubscribers(t *testing.T) {
	f := newFixture(t, morningTasks())
	_, err := f.routine.Start()
	require.NoError(t, err)

	f.routine.Close()
	f.routine.Close()

	f.drain()
	_, ok := <-f.events
	assert.False(t, ok)

	late := f.routine.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 59, want: "0:59"},
		{seconds: 65, want: "1:05"},
		{seconds: 600, want: "10:00"},
		{seconds: -3, want: "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.seconds))
	}
}
