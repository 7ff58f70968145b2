package model

// Phase identifies what the current countdown is for.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// IsBreak reports whether the phase is a rest phase.
func (phase Phase) IsBreak() bool {
	return phase == PhaseShortBreak || phase == PhaseLongBreak
}

// Valid reports whether the value is one of the known phases.
func (phase Phase) Valid() bool {
	switch phase {
	case PhaseFocus, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// TimerState is a snapshot of the engine's timer. All durations are seconds.
type TimerState struct {
	Time               int
	MaxTime            int
	Running            bool
	Phase              Phase
	CurrentTaskID      *int
	SessionID          *int
	PomodorosCompleted int
	ShowOverlay        bool
}

// OverlayDesired reports whether a break overlay should be on screen for
// this state: a running break with time still on the clock.
func (state TimerState) OverlayDesired() bool {
	return state.Phase.IsBreak() && state.Running && state.Time > 0
}

// RemoteState is the authoritative timer state reported by the remote store.
// MaxTime is deliberately absent: the budget for a phase is always derived
// locally from the owning session's configuration.
type RemoteState struct {
	TimeRemaining      int
	IsRunning          bool
	Phase              Phase
	CurrentTaskID      *int
	SessionID          *int
	PomodorosCompleted int
}

// StatePatch is a partial update pushed to the remote store. Nil fields are
// omitted from the request.
type StatePatch struct {
	TimeRemaining      *int
	IsRunning          *bool
	Phase              *Phase
	CurrentTaskID      *int
	PomodorosCompleted *int
}

// IntPtr returns a pointer to value, for building patches.
func IntPtr(value int) *int { return &value }

// BoolPtr returns a pointer to value, for building patches.
func BoolPtr(value bool) *bool { return &value }

// PhasePtr returns a pointer to phase, for building patches.
func PhasePtr(phase Phase) *Phase { return &phase }
