package overlay

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Session defines a single overlay session. The window receives only the
// initial remaining time and tracks its own countdown from there; it never
// reads live engine state.
type Session struct {
	Remaining int
	Phase     model.Phase
}

// Window is the full-screen break overlay surface.
type Window struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	titleLabel *canvas.Text
	phaseLabel *canvas.Text
	timerLabel *canvas.Text
	skipButton *widget.Button
	cancel     context.CancelFunc
	closeOnce  sync.Once
}

const (
	defaultScreenWidth  = float32(1920)
	defaultScreenHeight = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// NewFactory returns a Factory creating overlay windows on the given app.
// onSkip is invoked when the user asks to end the break early.
func NewFactory(app fyne.App, config Config, onSkip func()) Factory {
	return func(session Session) (Surface, error) {
		var window *Window
		fyne.DoAndWait(func() {
			window = newWindow(app, config, session, onSkip)
			window.show()
		})
		if window == nil {
			return nil, fmt.Errorf("create overlay window")
		}
		return window, nil
	}
}

func newWindow(app fyne.App, config Config, session Session, onSkip func()) *Window {
	window := app.NewWindow("Pomotoro")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity})

	titleLabel := canvas.NewText("Pomotoro", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 24

	phaseLabel := canvas.NewText(phaseTitle(session.Phase), color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 32

	timerLabel := canvas.NewText(formatSeconds(session.Remaining), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 64

	skipButton := widget.NewButton("Skip break", func() {
		if onSkip != nil {
			onSkip()
		}
	})

	content := container.NewCenter(container.NewVBox(
		titleLabel,
		phaseLabel,
		timerLabel,
		container.NewCenter(skipButton),
	))
	window.SetContent(container.NewStack(background, content))

	overlay := &Window{
		window:     window,
		config:     config,
		background: background,
		titleLabel: titleLabel,
		phaseLabel: phaseLabel,
		timerLabel: timerLabel,
		skipButton: skipButton,
	}

	ctx, cancel := context.WithCancel(context.Background())
	overlay.cancel = cancel
	go overlay.countdown(ctx, session.Remaining)

	return overlay
}

func (overlay *Window) show() {
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.applyNativeOpacity(overlay.config.Opacity)
}

// Close disposes the surface. Safe to call more than once.
func (overlay *Window) Close() {
	overlay.closeOnce.Do(func() {
		overlay.cancel()
		fyne.Do(func() {
			if overlay.config.Fullscreen {
				overlay.window.SetFullScreen(false)
			}
			overlay.window.Close()
		})
	})
}

// countdown runs the window's own countdown from the initial value. It only
// drives the label; ending the break is the engine's job.
func (overlay *Window) countdown(ctx context.Context, remaining int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			value := remaining
			fyne.Do(func() {
				overlay.timerLabel.Text = formatSeconds(value)
				overlay.timerLabel.Refresh()
			})
		}
	}
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreen()
}

func (overlay *Window) resizeToScreen() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is
	// clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}
	overlay.window.Resize(screenSize)
	overlay.window.CenterOnScreen()
}

func formatSeconds(value int) string {
	if value < 0 {
		value = 0
	}
	return fmt.Sprintf("%02d:%02d", value/60, value%60)
}

func phaseTitle(phase model.Phase) string {
	switch phase {
	case model.PhaseLongBreak:
		return "Long break"
	case model.PhaseShortBreak:
		return "Short break"
	default:
		return "Break"
	}
}
