package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// pushEverySeconds is how often a running timer pushes its state remotely.
const pushEverySeconds = 10

// ErrUnknownTask indicates the task is not part of the current schedule.
var ErrUnknownTask = errors.New("task not in schedule")

// Backend is the remote store consumed by the Controller. Implemented by
// syncapi.Client; tests substitute fakes.
type Backend interface {
	ActiveSession(ctx context.Context) (model.RemoteState, error)
	UpdateActiveSession(ctx context.Context, patch model.StatePatch) error
	StartActiveSession(ctx context.Context, sessionID int) error
	Session(ctx context.Context, sessionID int) (model.SessionConfig, error)
	CompleteTask(ctx context.Context, taskID int) error
	UncompleteTask(ctx context.Context, taskID int) error
}

// Config contains runtime options for the Controller.
type Config struct {
	PushTimeout time.Duration
}

// Controller owns the process-wide timer state: the countdown clock, the
// phase state machine, the task queue position, and the sync cadence toward
// the remote store. All mutation goes through its methods; UI surfaces only
// read snapshots and invoke commands.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	logger  zerolog.Logger
	options Config

	clock         Clock
	phase         model.Phase
	currentTaskID *int
	sessionID     *int
	pomodoros     int
	overlayShown  bool

	config    model.SessionConfig
	hasConfig bool
	configs   map[int]model.SessionConfig
	schedule  model.Schedule

	// seq counts mutations so a late push failure never rolls back state
	// the user has already moved past.
	seq            uint64
	runningSeconds int

	events []chan Event
	closed bool

	// dispatch runs fire-and-forget work; tests replace it to run inline.
	dispatch func(func())
}

// New creates a Controller in the default empty state.
func New(backend Backend, logger zerolog.Logger, options Config) *Controller {
	if options.PushTimeout <= 0 {
		options.PushTimeout = 10 * time.Second
	}
	return &Controller{
		backend:  backend,
		logger:   logger,
		options:  options,
		phase:    model.PhaseFocus,
		configs:  make(map[int]model.SessionConfig),
		dispatch: func(fn func()) { go fn() },
	}
}

// Subscribe registers a new observer channel.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	controller.events = append(controller.events, ch)
	controller.mu.Unlock()
	return ch
}

// Close shuts down observer channels. The Controller must not be used after.
func (controller *Controller) Close() {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return
	}
	controller.closed = true
	events := controller.events
	controller.events = nil
	controller.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Snapshot returns the current timer state.
func (controller *Controller) Snapshot() model.TimerState {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.stateLocked()
}

// Schedule returns a copy of the current task queue.
func (controller *Controller) Schedule() model.Schedule {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	tasks := append([]model.ScheduledTask(nil), controller.schedule.Tasks...)
	return model.Schedule{Tasks: tasks, TotalMinutes: controller.schedule.TotalMinutes}
}

// StartTimer resumes the countdown and pushes the new state. A push failure
// rolls the command back and surfaces a sync-error event.
func (controller *Controller) StartTimer() {
	controller.mu.Lock()
	if controller.clock.Running() || controller.clock.Time() <= 0 {
		controller.mu.Unlock()
		return
	}
	controller.clock.Start()
	controller.runningSeconds = 0
	controller.seq++
	seq := controller.seq
	patch := controller.fullPatchLocked()
	controller.emitLocked(Event{Type: EventTick, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	controller.pushCommand(patch, seq, func() {
		controller.clock.Pause()
	})
}

// PauseTimer freezes the countdown. The remaining time is captured for the
// push before this method returns, so no seconds are lost remotely.
func (controller *Controller) PauseTimer() {
	controller.mu.Lock()
	if !controller.clock.Running() {
		controller.mu.Unlock()
		return
	}
	controller.clock.Pause()
	controller.seq++
	seq := controller.seq
	patch := controller.fullPatchLocked()
	controller.emitLocked(Event{Type: EventTick, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	controller.pushCommand(patch, seq, func() {
		controller.clock.Start()
	})
}

// ResetTimer restores the current phase's full budget and stops the clock.
func (controller *Controller) ResetTimer() {
	controller.mu.Lock()
	controller.clock.Reset()
	controller.seq++
	controller.runningSeconds = 0
	patch := controller.fullPatchLocked()
	controller.emitLocked(Event{Type: EventTick, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	controller.pushCommand(patch, 0, nil)
}

// SkipRest ends a break early: back to focus with the full focus budget,
// paused. No-op outside break phases.
func (controller *Controller) SkipRest() {
	controller.mu.Lock()
	if !controller.phase.IsBreak() {
		controller.mu.Unlock()
		return
	}
	controller.seq++
	controller.enterPhaseLocked(model.PhaseFocus, false)
	patch := controller.fullPatchLocked()
	controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	controller.pushCommand(patch, 0, nil)
}

// Tick advances the clock by one second. Called by the background Ticker.
func (controller *Controller) Tick() {
	controller.mu.Lock()
	if !controller.clock.Running() {
		controller.mu.Unlock()
		return
	}

	expired := controller.clock.Tick()
	var patch *model.StatePatch

	if expired {
		controller.seq++
		controller.runningSeconds = 0
		controller.advancePhaseLocked()
		full := controller.fullPatchLocked()
		patch = &full
		controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
	} else {
		controller.runningSeconds++
		if controller.runningSeconds >= pushEverySeconds {
			controller.runningSeconds = 0
			full := controller.fullPatchLocked()
			patch = &full
		}
		controller.emitLocked(Event{Type: EventTick, State: controller.stateLocked(), At: time.Now()})
	}
	controller.mu.Unlock()

	if patch != nil {
		controller.push(*patch)
	}
}

// Load pulls the authoritative state for an already-active remote session.
// Any failure leaves the Controller in the default empty state rather than
// retaining stale data.
func (controller *Controller) Load(ctx context.Context) error {
	remote, err := controller.backend.ActiveSession(ctx)
	if err != nil {
		controller.mu.Lock()
		controller.resetEmptyLocked()
		controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
		controller.mu.Unlock()
		return fmt.Errorf("pull active session: %w", err)
	}
	return controller.adoptRemote(ctx, remote)
}

// SetSession activates a session on the remote store and adopts the
// resulting authoritative state.
func (controller *Controller) SetSession(ctx context.Context, sessionID int) error {
	if err := controller.backend.StartActiveSession(ctx, sessionID); err != nil {
		return fmt.Errorf("start session %d: %w", sessionID, err)
	}
	return controller.Load(ctx)
}

// SetOverlayShown records the overlay coordinator's actual on-screen state.
func (controller *Controller) SetOverlayShown(shown bool) {
	controller.mu.Lock()
	controller.overlayShown = shown
	controller.mu.Unlock()
}

func (controller *Controller) adoptRemote(ctx context.Context, remote model.RemoteState) error {
	if remote.SessionID == nil {
		controller.mu.Lock()
		controller.resetEmptyLocked()
		controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
		controller.mu.Unlock()
		return nil
	}

	config, err := controller.sessionConfig(ctx, *remote.SessionID)
	if err != nil {
		controller.mu.Lock()
		controller.resetEmptyLocked()
		controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
		controller.mu.Unlock()
		return fmt.Errorf("fetch session %d: %w", *remote.SessionID, err)
	}

	controller.mu.Lock()
	controller.seq++
	controller.config = config
	controller.hasConfig = true
	controller.phase = remote.Phase
	// maxTime stays locally authoritative: derive it from the phase budget
	// instead of trusting any remaining-time value from the pull.
	controller.clock.SetBudget(config.PhaseSeconds(remote.Phase))
	controller.clock.SetRemaining(remote.TimeRemaining)
	if remote.IsRunning {
		controller.clock.Start()
	} else {
		controller.clock.Pause()
	}
	controller.currentTaskID = remote.CurrentTaskID
	controller.sessionID = remote.SessionID
	controller.pomodoros = remote.PomodorosCompleted
	controller.runningSeconds = 0
	controller.emitLocked(Event{Type: EventPhaseChange, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()
	return nil
}

// advancePhaseLocked reacts to clock expiry: a finished focus interval rolls
// into a running break, a finished break parks the timer on a fresh focus
// budget.
func (controller *Controller) advancePhaseLocked() {
	if !controller.hasConfig {
		controller.resetEmptyLocked()
		return
	}

	if controller.phase == model.PhaseFocus {
		controller.pomodoros++
		next := model.PhaseShortBreak
		if controller.config.BreaksPerCycle > 0 && controller.pomodoros%controller.config.BreaksPerCycle == 0 {
			next = model.PhaseLongBreak
		}
		controller.enterPhaseLocked(next, true)
		return
	}
	controller.enterPhaseLocked(model.PhaseFocus, false)
}

func (controller *Controller) enterPhaseLocked(phase model.Phase, running bool) {
	budget := 0
	if controller.hasConfig {
		budget = controller.config.PhaseSeconds(phase)
	}
	controller.phase = phase
	controller.clock.SetBudget(budget)
	controller.clock.SetRemaining(budget)
	if running {
		controller.clock.Start()
	} else {
		controller.clock.Pause()
	}
	controller.runningSeconds = 0
}

func (controller *Controller) resetEmptyLocked() {
	controller.seq++
	controller.phase = model.PhaseFocus
	controller.clock.SetBudget(0)
	controller.clock.SetRemaining(0)
	controller.clock.Pause()
	controller.currentTaskID = nil
	controller.sessionID = nil
	controller.pomodoros = 0
	controller.config = model.SessionConfig{}
	controller.hasConfig = false
	controller.runningSeconds = 0
}

func (controller *Controller) stateLocked() model.TimerState {
	return model.TimerState{
		Time:               controller.clock.Time(),
		MaxTime:            controller.clock.MaxTime(),
		Running:            controller.clock.Running(),
		Phase:              controller.phase,
		CurrentTaskID:      controller.currentTaskID,
		SessionID:          controller.sessionID,
		PomodorosCompleted: controller.pomodoros,
		ShowOverlay:        controller.overlayShown,
	}
}

func (controller *Controller) fullPatchLocked() model.StatePatch {
	return model.StatePatch{
		TimeRemaining:      model.IntPtr(controller.clock.Time()),
		IsRunning:          model.BoolPtr(controller.clock.Running()),
		Phase:              model.PhasePtr(controller.phase),
		CurrentTaskID:      controller.currentTaskID,
		PomodorosCompleted: model.IntPtr(controller.pomodoros),
	}
}

// sessionConfig resolves a session's timing configuration, consulting the
// local cache before the backend.
func (controller *Controller) sessionConfig(ctx context.Context, sessionID int) (model.SessionConfig, error) {
	controller.mu.Lock()
	cached, ok := controller.configs[sessionID]
	controller.mu.Unlock()
	if ok {
		return cached, nil
	}

	config, err := controller.backend.Session(ctx, sessionID)
	if err != nil {
		return model.SessionConfig{}, err
	}

	controller.mu.Lock()
	controller.configs[sessionID] = config
	controller.mu.Unlock()
	return config, nil
}

// push sends a fire-and-forget state update. Failures are logged and
// otherwise invisible; the next scheduled push supersedes a lost one.
func (controller *Controller) push(patch model.StatePatch) {
	controller.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), controller.options.PushTimeout)
		defer cancel()

		if err := controller.backend.UpdateActiveSession(ctx, patch); err != nil {
			controller.logger.Warn().Err(err).Msg("push timer state failed")
		}
	})
}

// pushCommand is the push path for user-initiated controls: a failure is
// surfaced as a sync-error event and, when a revert is given, rolls the
// command back, provided no newer mutation has happened since.
func (controller *Controller) pushCommand(patch model.StatePatch, seq uint64, revert func()) {
	controller.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), controller.options.PushTimeout)
		defer cancel()

		err := controller.backend.UpdateActiveSession(ctx, patch)
		if err == nil {
			return
		}
		controller.logger.Warn().Err(err).Msg("push timer state failed")

		controller.mu.Lock()
		if revert != nil && controller.seq == seq {
			revert()
		}
		controller.emitLocked(Event{
			Type:    EventSyncError,
			State:   controller.stateLocked(),
			Message: err.Error(),
			At:      time.Now(),
		})
		controller.mu.Unlock()
	})
}

func (controller *Controller) emitLocked(event Event) {
	events := append([]chan Event(nil), controller.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
