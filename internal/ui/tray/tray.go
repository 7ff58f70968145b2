package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnPreferences func()
	OnToggleTimer func()
	OnResetTimer  func()
	OnSkipRest    func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	resetItem   *fyne.MenuItem
	skipItem    *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	inBreak     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: no active session", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start timer", func() {
		if manager.callbacks.OnToggleTimer != nil {
			manager.callbacks.OnToggleTimer()
		}
	})

	manager.resetItem = fyne.NewMenuItem("Reset timer", func() {
		if manager.callbacks.OnResetTimer != nil {
			manager.callbacks.OnResetTimer()
		}
	})

	manager.skipItem = fyne.NewMenuItem("Skip break", func() {
		if manager.callbacks.OnSkipRest != nil {
			manager.callbacks.OnSkipRest()
		}
	})
	manager.skipItem.Disabled = true

	app.SetSystemTrayMenu(manager.buildMenu())

	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning updates the start/pause label.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if running {
		manager.toggleItem.Label = "Pause timer"
	} else {
		manager.toggleItem.Label = "Start timer"
	}
	manager.refreshStatus()
}

// SetInBreak toggles break-related menu items.
func (manager *Manager) SetInBreak(inBreak bool) {
	manager.inBreak = inBreak
	manager.skipItem.Disabled = !inBreak
	manager.refreshMenu()
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if status == "" {
		status = "no active session"
	}
	if !manager.running {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.buildMenu())
	}
}

func (manager *Manager) buildMenu() *fyne.Menu {
	preferences := fyne.NewMenuItem("Preferences", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	return fyne.NewMenu("Pomotoro",
		manager.statusItem,
		preferences,
		manager.toggleItem,
		manager.resetItem,
		manager.skipItem,
		quit,
	)
}
