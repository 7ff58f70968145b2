package engine

import (
	"context"
	"time"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// CompleteTask marks a task done, advances the queue, and reconciles the
// clock against the next task's session. The remote completion call is
// fire-and-forget; the transition itself is applied locally first.
func (controller *Controller) CompleteTask(ctx context.Context, taskID int) error {
	controller.mu.Lock()
	if !controller.schedule.MarkCompleted(taskID) {
		controller.mu.Unlock()
		return ErrUnknownTask
	}
	next, hasNext := controller.schedule.NextAfter(taskID)
	controller.mu.Unlock()

	controller.dispatch(func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), controller.options.PushTimeout)
		defer cancel()
		if err := controller.backend.CompleteTask(pushCtx, taskID); err != nil {
			controller.logger.Warn().Err(err).Int("task_id", taskID).Msg("complete task remotely failed")
		}
	})

	if !hasNext {
		// Queue exhausted: the engine takes no further action, signalling
		// session completion is someone else's job.
		controller.mu.Lock()
		controller.emitLocked(Event{Type: EventQueueExhausted, State: controller.stateLocked(), At: time.Now()})
		controller.mu.Unlock()
		return nil
	}

	controller.retarget(ctx, next)
	return nil
}

// UncompleteTask clears a task's completed flag and, if that moves the queue
// head, retargets the engine at the restored task.
func (controller *Controller) UncompleteTask(ctx context.Context, taskID int) error {
	controller.mu.Lock()
	if !controller.schedule.MarkUncompleted(taskID) {
		controller.mu.Unlock()
		return ErrUnknownTask
	}
	current, ok := controller.schedule.CurrentTask()
	changed := ok && (controller.currentTaskID == nil || *controller.currentTaskID != current.ID)
	controller.mu.Unlock()

	controller.dispatch(func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), controller.options.PushTimeout)
		defer cancel()
		if err := controller.backend.UncompleteTask(pushCtx, taskID); err != nil {
			controller.logger.Warn().Err(err).Int("task_id", taskID).Msg("uncomplete task remotely failed")
		}
	})

	if changed {
		controller.retarget(ctx, current)
	}
	return nil
}

// SetSchedule replaces the task queue, typically after a rebuild or a manual
// reorder, and retargets the engine at the new queue head if it moved. The
// queue handed in must already exclude archived tasks the engine should
// never see; any that remain are skipped by the queue queries.
func (controller *Controller) SetSchedule(ctx context.Context, schedule model.Schedule) {
	controller.mu.Lock()
	controller.schedule = schedule
	current, ok := schedule.CurrentTask()
	changed := ok && (controller.currentTaskID == nil || *controller.currentTaskID != current.ID)
	controller.emitLocked(Event{Type: EventScheduleChange, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	if changed {
		controller.retarget(ctx, current)
	}
}

// RestoreSchedule installs a cached task queue at bootstrap without
// retargeting or pushing; the following remote pull settles the refs.
func (controller *Controller) RestoreSchedule(schedule model.Schedule) {
	controller.mu.Lock()
	controller.schedule = schedule
	controller.emitLocked(Event{Type: EventScheduleChange, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()
}

// retarget points the engine at the given task, applying the reconciliation
// rule when the task belongs to a different session, and always pushing the
// outcome so the remote store cannot rewind it on the next pull.
func (controller *Controller) retarget(ctx context.Context, next model.ScheduledTask) {
	controller.mu.Lock()
	sameSession := controller.sessionID != nil && *controller.sessionID == next.SessionID
	controller.mu.Unlock()

	var config *model.SessionConfig
	if !sameSession {
		fetched, err := controller.sessionConfig(ctx, next.SessionID)
		if err != nil {
			// Conservative: an unreachable session lookup must never
			// interrupt a running timer, so the clock stays untouched.
			controller.logger.Warn().Err(err).Int("session_id", next.SessionID).Msg("session lookup failed during transition")
		} else {
			config = &fetched
		}
	}

	controller.mu.Lock()
	patch := controller.retargetLocked(next, config)
	controller.emitLocked(Event{Type: EventTaskChange, State: controller.stateLocked(), At: time.Now()})
	controller.mu.Unlock()

	controller.push(patch)
}

func (controller *Controller) retargetLocked(next model.ScheduledTask, config *model.SessionConfig) model.StatePatch {
	controller.seq++

	if controller.sessionID != nil && *controller.sessionID == next.SessionID {
		controller.currentTaskID = model.IntPtr(next.ID)
		return model.StatePatch{CurrentTaskID: controller.currentTaskID}
	}

	if config != nil {
		newFocus := config.FocusSeconds()
		if controller.clock.Running() && controller.phase == model.PhaseFocus {
			// Clamp-only: remaining time may shrink to the new session's
			// focus budget but is never topped up, and the clock keeps
			// running through the switch.
			controller.clock.SetBudget(newFocus)
		} else {
			controller.phase = model.PhaseFocus
			controller.clock.SetBudget(newFocus)
			controller.clock.SetRemaining(newFocus)
			controller.clock.Pause()
		}
		controller.config = *config
		controller.hasConfig = true
		controller.pomodoros = 0
	}

	controller.currentTaskID = model.IntPtr(next.ID)
	controller.sessionID = model.IntPtr(next.SessionID)
	controller.runningSeconds = 0
	return controller.fullPatchLocked()
}
