package overlay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// Surface is a live overlay window. At most one exists at any instant.
type Surface interface {
	Close()
}

// Factory creates a surface for a break session.
type Factory func(Session) (Surface, error)

// Options tunes the coordinator.
type Options struct {
	// GraceDelay is how long to wait after disposing a surface before
	// creating the next one, giving native teardown time to finish.
	GraceDelay time.Duration
	// OnState is told whether an overlay is actually on screen. The engine
	// uses it to keep showOverlay honest when window creation fails.
	OnState func(open bool)
}

// Coordinator owns the break overlay surface. Open and close requests are
// serialized onto a single worker goroutine, and Apply only acts on
// transition edges of the desired state.
type Coordinator struct {
	factory  Factory
	logger   zerolog.Logger
	options  Options
	requests chan request
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	desired bool

	// current is touched only by the worker goroutine.
	current Surface
}

type request struct {
	open    bool
	session Session
}

// NewCoordinator creates a coordinator and starts its worker.
func NewCoordinator(factory Factory, logger zerolog.Logger, options Options) *Coordinator {
	if options.GraceDelay <= 0 {
		options.GraceDelay = 200 * time.Millisecond
	}
	coordinator := &Coordinator{
		factory:  factory,
		logger:   logger,
		options:  options,
		requests: make(chan request, 8),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go coordinator.worker()
	return coordinator
}

// Apply reconciles the coordinator against the desired overlay state. Only a
// change of desired state enqueues a window operation; repeated ticks with
// the same state are free.
func (coordinator *Coordinator) Apply(desired bool, remaining int, phase model.Phase) {
	coordinator.mu.Lock()
	if desired == coordinator.desired {
		coordinator.mu.Unlock()
		return
	}
	coordinator.desired = desired
	coordinator.mu.Unlock()

	req := request{open: desired, session: Session{Remaining: remaining, Phase: phase}}
	select {
	case coordinator.requests <- req:
	case <-coordinator.stopCh:
	}
}

// Shutdown closes any open surface and stops the worker. Safe to call more
// than once.
func (coordinator *Coordinator) Shutdown() {
	coordinator.stopOnce.Do(func() {
		close(coordinator.stopCh)
	})
	<-coordinator.done
}

func (coordinator *Coordinator) worker() {
	defer close(coordinator.done)
	for {
		select {
		case <-coordinator.stopCh:
			coordinator.closeCurrent()
			return
		case req := <-coordinator.requests:
			if req.open {
				coordinator.openSurface(req.session)
			} else {
				coordinator.closeCurrent()
			}
		}
	}
}

func (coordinator *Coordinator) openSurface(session Session) {
	if coordinator.current != nil {
		coordinator.closeCurrent()
		time.Sleep(coordinator.options.GraceDelay)
	}

	surface, err := coordinator.factory(session)
	if err != nil {
		// Non-fatal: the break still elapses on the clock, just without a
		// visual overlay.
		coordinator.logger.Error().Err(err).Msg("open break overlay failed")
		coordinator.notify(false)
		return
	}
	coordinator.current = surface
	coordinator.notify(true)
}

func (coordinator *Coordinator) closeCurrent() {
	if coordinator.current == nil {
		return
	}
	coordinator.current.Close()
	coordinator.current = nil
	coordinator.notify(false)
}

func (coordinator *Coordinator) notify(open bool) {
	if coordinator.options.OnState != nil {
		coordinator.options.OnState(open)
	}
}
