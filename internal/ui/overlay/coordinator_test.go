package overlay

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

type fakeSurface struct {
	mu     sync.Mutex
	closed int
}

func (surface *fakeSurface) Close() {
	surface.mu.Lock()
	surface.closed++
	surface.mu.Unlock()
}

func (surface *fakeSurface) closedCount() int {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	return surface.closed
}

// fakeFactory records created surfaces and can be told to fail.
type fakeFactory struct {
	mu       sync.Mutex
	surfaces []*fakeSurface
	sessions []Session
	fail     bool
}

func (factory *fakeFactory) create(session Session) (Surface, error) {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	if factory.fail {
		return nil, errors.New("window creation failed")
	}
	surface := &fakeSurface{}
	factory.surfaces = append(factory.surfaces, surface)
	factory.sessions = append(factory.sessions, session)
	return surface, nil
}

func (factory *fakeFactory) created() []*fakeSurface {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	return append([]*fakeSurface(nil), factory.surfaces...)
}

// stateRecorder collects OnState notifications.
type stateRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (recorder *stateRecorder) record(open bool) {
	recorder.mu.Lock()
	recorder.states = append(recorder.states, open)
	recorder.mu.Unlock()
}

func (recorder *stateRecorder) last() (bool, bool) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.states) == 0 {
		return false, false
	}
	return recorder.states[len(recorder.states)-1], true
}

func newTestCoordinator(factory *fakeFactory, recorder *stateRecorder) *Coordinator {
	options := Options{GraceDelay: time.Millisecond}
	if recorder != nil {
		options.OnState = recorder.record
	}
	return NewCoordinator(factory.create, zerolog.Nop(), options)
}

func TestCoordinatorOpensOnRisingEdge(t *testing.T) {
	factory := &fakeFactory{}
	recorder := &stateRecorder{}
	coordinator := newTestCoordinator(factory, recorder)
	defer coordinator.Shutdown()

	coordinator.Apply(true, 300, model.PhaseShortBreak)

	require.Eventually(t, func() bool {
		return len(factory.created()) == 1
	}, time.Second, time.Millisecond)

	factory.mu.Lock()
	session := factory.sessions[0]
	factory.mu.Unlock()
	assert.Equal(t, 300, session.Remaining)
	assert.Equal(t, model.PhaseShortBreak, session.Phase)

	require.Eventually(t, func() bool {
		open, ok := recorder.last()
		return ok && open
	}, time.Second, time.Millisecond)
}

func TestCoordinatorRepeatedTicksAreFree(t *testing.T) {
	factory := &fakeFactory{}
	coordinator := newTestCoordinator(factory, nil)
	defer coordinator.Shutdown()

	for i := 0; i < 50; i++ {
		coordinator.Apply(true, 300-i, model.PhaseShortBreak)
	}

	require.Eventually(t, func() bool {
		return len(factory.created()) == 1
	}, time.Second, time.Millisecond)

	// Give the worker a chance to drain anything extra.
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, factory.created(), 1, "steady desired state must not reopen the overlay")
}

func TestCoordinatorClosesOnFallingEdge(t *testing.T) {
	factory := &fakeFactory{}
	recorder := &stateRecorder{}
	coordinator := newTestCoordinator(factory, recorder)
	defer coordinator.Shutdown()

	coordinator.Apply(true, 300, model.PhaseShortBreak)
	require.Eventually(t, func() bool {
		return len(factory.created()) == 1
	}, time.Second, time.Millisecond)

	coordinator.Apply(false, 0, model.PhaseFocus)
	require.Eventually(t, func() bool {
		return factory.created()[0].closedCount() == 1
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		open, ok := recorder.last()
		return ok && !open
	}, time.Second, time.Millisecond)
}

func TestCoordinatorReopenDisposesPrior(t *testing.T) {
	factory := &fakeFactory{}
	coordinator := newTestCoordinator(factory, nil)
	defer coordinator.Shutdown()

	// Break, focus, break again: the second overlay must be a fresh surface
	// and the first one fully closed before it appears.
	coordinator.Apply(true, 300, model.PhaseShortBreak)
	coordinator.Apply(false, 0, model.PhaseFocus)
	coordinator.Apply(true, 900, model.PhaseLongBreak)

	require.Eventually(t, func() bool {
		return len(factory.created()) == 2
	}, time.Second, time.Millisecond)

	surfaces := factory.created()
	assert.Equal(t, 1, surfaces[0].closedCount())
	assert.Equal(t, 0, surfaces[1].closedCount())
}

func TestCoordinatorCreationFailureIsNonFatal(t *testing.T) {
	factory := &fakeFactory{fail: true}
	recorder := &stateRecorder{}
	coordinator := newTestCoordinator(factory, recorder)
	defer coordinator.Shutdown()

	coordinator.Apply(true, 300, model.PhaseShortBreak)

	require.Eventually(t, func() bool {
		open, ok := recorder.last()
		return ok && !open
	}, time.Second, time.Millisecond, "failed creation must report the overlay as not on screen")

	// The coordinator keeps working afterwards.
	factory.mu.Lock()
	factory.fail = false
	factory.mu.Unlock()

	coordinator.Apply(false, 0, model.PhaseFocus)
	coordinator.Apply(true, 60, model.PhaseShortBreak)

	require.Eventually(t, func() bool {
		return len(factory.created()) == 1
	}, time.Second, time.Millisecond)
}

func TestCoordinatorShutdownClosesSurface(t *testing.T) {
	factory := &fakeFactory{}
	coordinator := newTestCoordinator(factory, nil)

	coordinator.Apply(true, 300, model.PhaseShortBreak)
	require.Eventually(t, func() bool {
		return len(factory.created()) == 1
	}, time.Second, time.Millisecond)

	coordinator.Shutdown()
	assert.Equal(t, 1, factory.created()[0].closedCount())

	// Shutdown twice is safe, as is Apply afterwards.
	coordinator.Shutdown()
	coordinator.Apply(false, 0, model.PhaseFocus)
}
