package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"routinetimer/internal/core/routine"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnAdvance     func()
	OnBreak       func()
	OnRetry       func()
	OnStop        func()
	OnTestVoice   func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	advanceItem *fyne.MenuItem
	breakItem   *fyne.MenuItem
	retryItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	voiceItem   *fyne.MenuItem
	prefsItem   *fyne.MenuItem
	quitItem    *fyne.MenuItem
	callbacks   Callbacks
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Ready", nil)
	manager.statusItem.Disabled = true

	manager.advanceItem = fyne.NewMenuItem("Start routine", invoke(&manager.callbacks.OnAdvance))
	manager.breakItem = fyne.NewMenuItem("Take a break", invoke(&manager.callbacks.OnBreak))
	manager.retryItem = fyne.NewMenuItem("More time", invoke(&manager.callbacks.OnRetry))
	manager.stopItem = fyne.NewMenuItem("Stop...", invoke(&manager.callbacks.OnStop))
	manager.voiceItem = fyne.NewMenuItem("Test voice", invoke(&manager.callbacks.OnTestVoice))
	manager.prefsItem = fyne.NewMenuItem("Preferences", invoke(&manager.callbacks.OnPreferences))
	manager.quitItem = fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit))
	manager.quitItem.IsQuit = true

	manager.applyPhase(routine.PhaseIdle)
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if manager.statusItem.Label == status {
		return
	}
	manager.statusItem.Label = status
	manager.refreshMenu()
}

// SetPhase enables the actions that make sense in phase.
func (manager *Manager) SetPhase(phase routine.Phase) {
	manager.applyPhase(phase)
	manager.refreshMenu()
}

// SetIcon replaces the tray icon.
func (manager *Manager) SetIcon(icon fyne.Resource) {
	if manager.app != nil && icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) applyPhase(phase routine.Phase) {
	active := phase == routine.PhaseTaskActive || phase == routine.PhaseTaskOnBreak

	manager.advanceItem.Label = AdvanceLabel(phase)
	manager.breakItem.Disabled = !active
	manager.retryItem.Disabled = !active
	manager.stopItem.Disabled = phase == routine.PhaseIdle
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Routine Timer",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.advanceItem,
		manager.breakItem,
		manager.retryItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		manager.voiceItem,
		manager.prefsItem,
		manager.quitItem,
	))
}

// invoke defers the callback lookup to click time.
func invoke(callback *func()) func() {
	return func() {
		if *callback != nil {
			(*callback)()
		}
	}
}
