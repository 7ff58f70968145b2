package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	onCancel   func()
	serverURL  *widget.Entry
	authToken  *widget.Entry
	opacity    *widget.Slider
	fullscreen *widget.Check
	autostart  *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Pomotoro Settings")

	serverURL := widget.NewEntry()
	serverURL.SetText(settings.ServerURL)
	serverURL.SetPlaceHolder("http://localhost:8000")

	authToken := widget.NewPasswordEntry()
	authToken.SetText(settings.AuthToken)

	opacity := widget.NewSlider(0.7, 0.95)
	opacity.Value = settings.OverlayOpacity
	opacity.Step = 0.01

	fullscreen := widget.NewCheck("Fullscreen overlay", nil)
	fullscreen.SetChecked(settings.Fullscreen)

	autostart := widget.NewCheck("Start Pomotoro at login", nil)
	autostart.SetChecked(settings.Autostart)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Sync", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Server URL"),
		serverURL,
		widget.NewLabel("API token"),
		authToken,
		widget.NewLabelWithStyle("Breaks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Overlay opacity"),
		opacity,
		fullscreen,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 460))

	prefs := &Window{
		window:     window,
		settings:   settings,
		onSave:     onSave,
		serverURL:  serverURL,
		authToken:  authToken,
		opacity:    opacity,
		fullscreen: fullscreen,
		autostart:  autostart,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.serverURL.SetText(settings.ServerURL)
	prefs.authToken.SetText(settings.AuthToken)
	prefs.opacity.Value = settings.OverlayOpacity
	prefs.opacity.Refresh()
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if prefs.serverURL.Text != "" {
		settings.ServerURL = prefs.serverURL.Text
	}
	settings.AuthToken = prefs.authToken.Text
	settings.OverlayOpacity = prefs.opacity.Value
	settings.Fullscreen = prefs.fullscreen.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}
