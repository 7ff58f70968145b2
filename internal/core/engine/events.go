package engine

import (
	"time"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// EventType defines the type of Controller event.
type EventType string

const (
	EventTick           EventType = "tick"
	EventPhaseChange    EventType = "phase_change"
	EventTaskChange     EventType = "task_change"
	EventScheduleChange EventType = "schedule_change"
	EventQueueExhausted EventType = "queue_exhausted"
	EventSyncError      EventType = "sync_error"
)

// Event represents a Controller update for observers.
type Event struct {
	Type    EventType
	State   model.TimerState
	Message string
	At      time.Time
}
