package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// OverlaySink receives the overlay desired-state after every tick. The
// overlay coordinator implements it; only transition edges result in window
// operations.
type OverlaySink interface {
	Apply(desired bool, remaining int, phase model.Phase)
}

// Ticker is the process-wide 1 Hz driver. It is started once at bootstrap,
// keeps running regardless of which windows are open, and is torn down once
// at shutdown.
type Ticker struct {
	controller *Controller
	overlay    OverlaySink
	logger     zerolog.Logger
	interval   time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewTicker creates a ticker driving the given controller and overlay sink.
func NewTicker(controller *Controller, overlay OverlaySink, logger zerolog.Logger, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		controller: controller,
		overlay:    overlay,
		logger:     logger,
		interval:   interval,
	}
}

// Start launches the ticking loop. Calling Start while running is a no-op.
func (ticker *Ticker) Start() {
	ticker.mu.Lock()
	if ticker.running {
		ticker.mu.Unlock()
		return
	}
	ticker.running = true
	ticker.stopCh = make(chan struct{})
	stopCh := ticker.stopCh
	ticker.mu.Unlock()

	go ticker.run(stopCh)
}

// Stop terminates the ticking loop. Calling Stop while stopped is a no-op.
func (ticker *Ticker) Stop() {
	ticker.mu.Lock()
	if !ticker.running {
		ticker.mu.Unlock()
		return
	}
	ticker.running = false
	close(ticker.stopCh)
	ticker.mu.Unlock()
}

// Running reports whether the loop is active.
func (ticker *Ticker) Running() bool {
	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	return ticker.running
}

func (ticker *Ticker) run(stopCh chan struct{}) {
	interval := time.NewTicker(ticker.interval)
	defer interval.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-interval.C:
			ticker.step()
		}
	}
}

// step runs one tick iteration. A panic in one iteration must not stop
// subsequent ticks, so it is contained here.
func (ticker *Ticker) step() {
	defer func() {
		if recovered := recover(); recovered != nil {
			ticker.logger.Error().Interface("panic", recovered).Msg("tick iteration failed")
		}
	}()

	ticker.controller.Tick()
	if ticker.overlay != nil {
		state := ticker.controller.Snapshot()
		ticker.overlay.Apply(state.OverlayDesired(), state.Time, state.Phase)
	}
}
