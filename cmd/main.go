package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/engine"
	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
	"github.com/jkalasas/pomotoro-app-sub000/internal/logging"
	"github.com/jkalasas/pomotoro-app-sub000/internal/platform"
	"github.com/jkalasas/pomotoro-app-sub000/internal/storage"
	"github.com/jkalasas/pomotoro-app-sub000/internal/syncapi"
	"github.com/jkalasas/pomotoro-app-sub000/internal/ui/overlay"
	"github.com/jkalasas/pomotoro-app-sub000/internal/ui/preferences"
	"github.com/jkalasas/pomotoro-app-sub000/internal/ui/tray"
)

const appName = "Pomotoro"

func main() {
	logger := logging.New(appName)

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		logger.Error().Err(err).Msg("single instance")
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.pomotoro.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error().Msg("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("Pomotoro is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		logger.Warn().Err(err).Msg("load settings, using defaults")
	}

	client := syncapi.NewClient(settings.ServerURL, settings.AuthToken)
	controller := engine.New(client, logger.With().Str("component", "engine").Logger(), engine.Config{})

	scheduleStore := openScheduleStore(logger)
	var selectedSessions []int
	if scheduleStore != nil {
		defer func() {
			_ = scheduleStore.Close()
		}()
		cached, selected, err := scheduleStore.LoadSchedule()
		if err != nil {
			logger.Warn().Err(err).Msg("load cached schedule")
		} else if len(cached.Tasks) > 0 {
			controller.RestoreSchedule(cached)
			selectedSessions = selected
		}
	}

	var coordinator *overlay.Coordinator
	skipRest := func() {
		controller.SkipRest()
		state := controller.Snapshot()
		coordinator.Apply(state.OverlayDesired(), state.Time, state.Phase)
	}

	factory := overlay.NewFactory(fyneApp, overlay.Config{
		Opacity:    opacityToAlpha(settings.OverlayOpacity),
		Fullscreen: settings.Fullscreen,
	}, skipRest)
	coordinator = overlay.NewCoordinator(factory, logger.With().Str("component", "overlay").Logger(), overlay.Options{
		OnState: controller.SetOverlayShown,
	})

	ticker := engine.NewTicker(controller, coordinator, logger.With().Str("component", "ticker").Logger(), time.Second)

	platformService := platform.NewService()
	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		previous := settings
		settings = updated
		if err := storage.SaveSettings(appName, settings); err != nil {
			logger.Warn().Err(err).Msg("save settings")
		}
		if settings.Autostart != previous.Autostart {
			applyAutostart(platformService, settings.Autostart, logger)
		}
		if settings.ServerURL != previous.ServerURL || settings.AuthToken != previous.AuthToken {
			logger.Info().Msg("sync settings changed, restart to apply")
		}
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnToggleTimer: func() {
			if controller.Snapshot().Running {
				controller.PauseTimer()
			} else {
				controller.StartTimer()
			}
		},
		OnResetTimer: func() {
			controller.ResetTimer()
		},
		OnSkipRest: skipRest,
		OnQuit: func() {
			// Full teardown: ticker, overlay and a final state capture all
			// go together; stopping one without the others is a bug.
			ticker.Stop()
			controller.PauseTimer()
			coordinator.Shutdown()
			controller.Close()
			fyneApp.Quit()
		},
	})

	events := controller.Subscribe(8)
	go func() {
		for event := range events {
			if event.Type == engine.EventScheduleChange && scheduleStore != nil {
				schedule := controller.Schedule()
				if err := scheduleStore.SaveSchedule(schedule, sessionIDs(schedule)); err != nil {
					logger.Warn().Err(err).Msg("cache schedule")
				}
			}
			handleEvent(event, fyneApp, trayManager)
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := controller.Load(ctx); err != nil {
			logger.Warn().Err(err).Msg("resume active session")
			return
		}
		if len(selectedSessions) == 0 {
			return
		}
		// Refresh the cached queue against the remote scheduler.
		rebuilt, err := client.Schedule(ctx, selectedSessions)
		if err != nil {
			logger.Warn().Err(err).Ints("session_ids", selectedSessions).Msg("rebuild schedule")
			return
		}
		controller.SetSchedule(ctx, rebuilt)
	}()

	ticker.Start()
	fyneApp.Run()
}

func handleEvent(event engine.Event, fyneApp fyne.App, trayManager *tray.Manager) {
	if event.Type == engine.EventSyncError {
		fyneApp.SendNotification(fyne.NewNotification(appName, "Could not sync the timer: "+event.Message))
		return
	}

	state := event.State
	fyne.Do(func() {
		trayManager.SetRunning(state.Running)
		trayManager.SetInBreak(state.Phase.IsBreak())
		trayManager.SetStatus(formatStatus(state))
	})
}

func formatStatus(state model.TimerState) string {
	if state.SessionID == nil {
		return "no active session"
	}
	return fmt.Sprintf("%s %s", phaseLabel(state.Phase), formatRemaining(state.Time))
}

func phaseLabel(phase model.Phase) string {
	switch phase {
	case model.PhaseShortBreak:
		return "short break"
	case model.PhaseLongBreak:
		return "long break"
	default:
		return "focus"
	}
}

func formatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func sessionIDs(schedule model.Schedule) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0, len(schedule.Tasks))
	for _, task := range schedule.Tasks {
		if !seen[task.SessionID] {
			seen[task.SessionID] = true
			ids = append(ids, task.SessionID)
		}
	}
	return ids
}

func openScheduleStore(logger zerolog.Logger) *storage.ScheduleStore {
	schedulePath, err := storage.DefaultSchedulePath(appName)
	if err != nil {
		logger.Warn().Err(err).Msg("resolve schedule cache path")
		return nil
	}
	store, err := storage.OpenScheduleStore(schedulePath)
	if err != nil {
		logger.Warn().Err(err).Msg("open schedule cache")
		return nil
	}
	return store
}

func applyAutostart(service platform.Service, enabled bool, logger zerolog.Logger) {
	if !enabled {
		if err := service.DisableAutostart(appName); err != nil {
			logger.Warn().Err(err).Msg("disable autostart")
		}
		return
	}
	execPath, err := os.Executable()
	if err != nil {
		logger.Warn().Err(err).Msg("resolve executable for autostart")
		return
	}
	if err := service.EnableAutostart(appName, execPath); err != nil {
		logger.Warn().Err(err).Msg("enable autostart")
	}
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
