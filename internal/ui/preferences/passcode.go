package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// PasscodePrompt asks for the stop passcode.
type PasscodePrompt struct {
	window   fyne.Window
	entry    *widget.Entry
	message  *widget.Label
	onSubmit func(passcode string) error
}

// NewPasscodePrompt creates the prompt. onSubmit returns an error to keep the
// prompt open, for example on a wrong passcode.
func NewPasscodePrompt(app fyne.App, onSubmit func(passcode string) error) *PasscodePrompt {
	prompt := &PasscodePrompt{
		window:   app.NewWindow("Stop routine"),
		entry:    widget.NewPasswordEntry(),
		message:  widget.NewLabel("Enter the passcode to stop the routine."),
		onSubmit: onSubmit,
	}
	prompt.entry.OnSubmitted = func(string) { prompt.submit() }

	stopButton := widget.NewButton("Stop", prompt.submit)
	stopButton.Importance = widget.DangerImportance
	cancelButton := widget.NewButton("Cancel", prompt.window.Hide)

	prompt.window.SetContent(container.NewVBox(
		prompt.message,
		prompt.entry,
		container.NewHBox(layout.NewSpacer(), cancelButton, stopButton),
	))
	prompt.window.SetCloseIntercept(prompt.window.Hide)
	prompt.window.Resize(fyne.NewSize(320, 140))
	return prompt
}

// Show clears and displays the prompt.
func (prompt *PasscodePrompt) Show() {
	prompt.entry.SetText("")
	prompt.message.SetText("Enter the passcode to stop the routine.")
	prompt.window.Show()
	prompt.window.RequestFocus()
	prompt.window.Canvas().Focus(prompt.entry)
}

func (prompt *PasscodePrompt) submit() {
	if err := prompt.onSubmit(prompt.entry.Text); err != nil {
		prompt.message.SetText("Wrong passcode, try again.")
		prompt.entry.SetText("")
		return
	}
	prompt.window.Hide()
}
