package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"routinetimer/internal/config"
	"routinetimer/internal/core/routine"
	"routinetimer/internal/platform"
	"routinetimer/internal/ui/notify"
	"routinetimer/internal/ui/preferences"
	"routinetimer/internal/ui/tray"
	"routinetimer/resources"
)

const showRequest = "show"

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the system tray app (default)",
	Args:  cobra.NoArgs,
	RunE:  runTray,
}

func runTray(cmd *cobra.Command, args []string) error {
	options, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(options, os.Stderr)

	guard, err := platform.AcquireSingleInstance(config.AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info("already running, bringing it forward")
		return platform.NotifyRunning(config.AppName, showRequest)
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := fyneapp.NewWithID("com.routinetimer.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconActive))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform, try the shell command")
	}

	alerts := notify.NewFyne(fyneApp, logger)
	defer alerts.Close()

	a := openApp(options, logger, sinks{speech: true, alerter: alerts})
	defer a.Close()

	trayWindow := fyneApp.NewWindow("Routine Timer")
	trayWindow.SetContent(widget.NewLabel("Routine Timer is running in the system tray."))
	trayWindow.SetCloseIntercept(trayWindow.Hide)
	desktopApp.SetSystemTrayWindow(trayWindow)

	prefsWindow := preferences.New(fyneApp, a.routine)
	stopPrompt := preferences.NewPasscodePrompt(fyneApp, func(passcode string) error {
		_, err := a.routine.Stop(passcode)
		return err
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	act := func(action func() (routine.Snapshot, error)) func() {
		return func() {
			if _, err := action(); err != nil {
				logger.Debug("tray action rejected", slog.Any("error", err))
			}
		}
	}
	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnAdvance:     act(a.routine.Advance),
		OnBreak:       act(a.routine.TakeBreak),
		OnRetry:       act(a.routine.Retry),
		OnStop:        stopPrompt.Show,
		OnTestVoice:   func() { a.routine.TestVoice() },
		OnPreferences: prefsWindow.Show,
		OnQuit: func() {
			cancel()
			fyneApp.Quit()
		},
	})

	render := func(snapshot routine.Snapshot) {
		trayManager.SetStatus(tray.StatusText(snapshot))
		trayManager.SetPhase(snapshot.Phase)
		trayManager.SetIcon(resources.MustIcon(tray.IconName(snapshot)))
	}
	render(a.routine.Snapshot())

	events := a.routine.Subscribe(16)
	go func() {
		for event := range events {
			if event.Type == routine.EventTasksChange || event.Type == routine.EventConfigSaved {
				continue
			}
			snapshot := a.routine.Snapshot()
			fyne.Do(func() {
				render(snapshot)
			})
		}
	}()

	go guard.Serve(func(request string) {
		if request == showRequest {
			fyne.Do(prefsWindow.Show)
		}
	}, logger)

	go a.routine.Run(ctx)

	fyneApp.Run()
	return nil
}
