package preferences

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"routinetimer/internal/core/model"
	"routinetimer/internal/core/routine"
)

// Controller is the part of the routine the window edits.
type Controller interface {
	Snapshot() routine.Snapshot
	Config() model.RoutineConfig
	UpdateConfig(patch model.ConfigPatch) (routine.Snapshot, error)
	AddTask(name string, durationMinutes int) (routine.Snapshot, error)
	UpdateTask(id string, patch model.TaskPatch) (routine.Snapshot, error)
	DeleteTask(id string) (routine.Snapshot, error)
	ReorderTask(fromIndex, toIndex int) (routine.Snapshot, error)
	TestVoice() routine.Snapshot
}

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	controller Controller

	tasks    []model.Task
	selected int
	list     *widget.List
	taskName *widget.Entry
	taskDur  *widget.Entry

	breakMinutes *widget.Entry
	maxRepeats   *widget.Entry
	passcode     *widget.Entry
	voiceRate    *widget.Slider
	rateLabel    *widget.Label
	voiceID      *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, controller Controller) *Window {
	window := app.NewWindow("Routine Timer Settings")

	prefs := &Window{
		window:       window,
		controller:   controller,
		selected:     -1,
		taskName:     widget.NewEntry(),
		taskDur:      widget.NewEntry(),
		breakMinutes: widget.NewEntry(),
		maxRepeats:   widget.NewEntry(),
		passcode:     widget.NewPasswordEntry(),
		voiceRate:    widget.NewSlider(0.5, 2),
		rateLabel:    widget.NewLabel(""),
		voiceID:      widget.NewEntry(),
	}
	prefs.taskName.SetPlaceHolder("Task name")
	prefs.taskDur.SetPlaceHolder("min")
	prefs.passcode.SetPlaceHolder("unchanged")
	prefs.voiceID.SetPlaceHolder("system default")
	prefs.voiceRate.Step = 0.1
	prefs.voiceRate.OnChanged = func(value float64) {
		prefs.rateLabel.SetText(fmt.Sprintf("%.1fx", value))
	}

	prefs.list = widget.NewList(
		func() int { return len(prefs.tasks) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil, widget.NewLabel("00 min"), widget.NewLabel("task"))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			row := item.(*fyne.Container)
			task := prefs.tasks[id]
			row.Objects[0].(*widget.Label).SetText(task.Name)
			row.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%d min", task.DurationMinutes))
		},
	)
	prefs.list.OnSelected = prefs.handleSelect
	prefs.list.OnUnselected = func(widget.ListItemID) { prefs.selected = -1 }

	tabs := container.NewAppTabs(
		container.NewTabItem("Tasks", prefs.tasksTab()),
		container.NewTabItem("Routine", prefs.configTab()),
	)

	closeButton := widget.NewButton("Close", window.Hide)
	content := container.NewBorder(nil, container.NewHBox(layout.NewSpacer(), closeButton), nil, nil, tabs)
	window.SetContent(content)
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(460, 480))

	prefs.Reload()
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.Reload()
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Reload replaces the window values with the routine's current ones.
func (prefs *Window) Reload() {
	prefs.setTasks(prefs.controller.Snapshot().Tasks)

	form := FormFromConfig(prefs.controller.Config())
	prefs.breakMinutes.SetText(form.BreakMinutes)
	prefs.maxRepeats.SetText(form.MaxRepeats)
	prefs.passcode.SetText("")
	prefs.voiceRate.SetValue(form.VoiceRate)
	prefs.voiceID.SetText(form.VoiceID)
}

func (prefs *Window) tasksTab() fyne.CanvasObject {
	add := widget.NewButton("Add", prefs.handleAdd)
	save := widget.NewButton("Save", prefs.handleUpdate)
	remove := widget.NewButton("Delete", prefs.handleDelete)
	up := widget.NewButton("Up", func() { prefs.handleMove(-1) })
	down := widget.NewButton("Down", func() { prefs.handleMove(1) })

	editor := container.NewBorder(nil, nil, nil, container.NewHBox(prefs.taskDur, widget.NewLabel("min")), prefs.taskName)
	buttons := container.NewHBox(add, save, remove, layout.NewSpacer(), up, down)
	return container.NewBorder(nil, container.NewVBox(editor, buttons), nil, nil, prefs.list)
}

func (prefs *Window) configTab() fyne.CanvasObject {
	form := widget.NewForm(
		widget.NewFormItem("Break length (min)", prefs.breakMinutes),
		widget.NewFormItem("Reminders after time is up", prefs.maxRepeats),
		widget.NewFormItem("Stop passcode", prefs.passcode),
		widget.NewFormItem("Voice speed", container.NewBorder(nil, nil, nil, prefs.rateLabel, prefs.voiceRate)),
		widget.NewFormItem("Voice", prefs.voiceID),
	)

	save := widget.NewButton("Save", prefs.handleSaveConfig)
	test := widget.NewButton("Test voice", func() { prefs.controller.TestVoice() })
	return container.NewVBox(form, container.NewHBox(save, test))
}

func (prefs *Window) handleSelect(id widget.ListItemID) {
	if id < 0 || id >= len(prefs.tasks) {
		return
	}
	prefs.selected = id
	prefs.taskName.SetText(prefs.tasks[id].Name)
	prefs.taskDur.SetText(strconv.Itoa(prefs.tasks[id].DurationMinutes))
}

func (prefs *Window) handleAdd() {
	minutes, err := ParseMinutes(prefs.taskDur.Text)
	if err != nil {
		prefs.showError(err)
		return
	}
	snapshot, err := prefs.controller.AddTask(prefs.taskName.Text, minutes)
	if err != nil {
		prefs.showError(err)
		return
	}
	prefs.setTasks(snapshot.Tasks)
	prefs.taskName.SetText("")
	prefs.taskDur.SetText("")
}

func (prefs *Window) handleUpdate() {
	task, ok := prefs.selectedTask()
	if !ok {
		return
	}
	minutes, err := ParseMinutes(prefs.taskDur.Text)
	if err != nil {
		prefs.showError(err)
		return
	}
	name := prefs.taskName.Text
	snapshot, err := prefs.controller.UpdateTask(task.ID, model.TaskPatch{Name: &name, DurationMinutes: &minutes})
	if err != nil {
		prefs.showError(err)
		return
	}
	prefs.setTasks(snapshot.Tasks)
}

func (prefs *Window) handleDelete() {
	task, ok := prefs.selectedTask()
	if !ok {
		return
	}
	dialog.ShowConfirm("Delete task", fmt.Sprintf("Delete %q?", task.Name), func(confirmed bool) {
		if !confirmed {
			return
		}
		snapshot, err := prefs.controller.DeleteTask(task.ID)
		if err != nil {
			prefs.showError(err)
			return
		}
		prefs.list.UnselectAll()
		prefs.setTasks(snapshot.Tasks)
	}, prefs.window)
}

func (prefs *Window) handleMove(offset int) {
	if _, ok := prefs.selectedTask(); !ok {
		return
	}
	from := prefs.selected
	to := from + offset
	if to < 0 || to >= len(prefs.tasks) {
		return
	}
	snapshot, err := prefs.controller.ReorderTask(from, to)
	if err != nil {
		prefs.showError(err)
		return
	}
	prefs.setTasks(snapshot.Tasks)
	prefs.list.Select(to)
}

func (prefs *Window) handleSaveConfig() {
	form := ConfigForm{
		BreakMinutes: prefs.breakMinutes.Text,
		MaxRepeats:   prefs.maxRepeats.Text,
		Passcode:     prefs.passcode.Text,
		VoiceRate:    prefs.voiceRate.Value,
		VoiceID:      prefs.voiceID.Text,
	}
	patch, err := form.Patch(prefs.controller.Config())
	if err != nil {
		prefs.showError(err)
		return
	}
	if patch.IsEmpty() {
		return
	}
	if _, err := prefs.controller.UpdateConfig(patch); err != nil {
		prefs.showError(err)
		return
	}
	prefs.Reload()
}

func (prefs *Window) selectedTask() (model.Task, bool) {
	if prefs.selected < 0 || prefs.selected >= len(prefs.tasks) {
		return model.Task{}, false
	}
	return prefs.tasks[prefs.selected], true
}

func (prefs *Window) setTasks(tasks []model.Task) {
	prefs.tasks = tasks
	if prefs.selected >= len(tasks) {
		prefs.selected = -1
	}
	prefs.list.Refresh()
}

func (prefs *Window) showError(err error) {
	dialog.ShowError(err, prefs.window)
}
