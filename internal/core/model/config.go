package model

// SessionConfig holds a work session's pomodoro timing settings as stored in
// the remote backend. Durations are whole minutes on the wire; the engine
// works in seconds.
type SessionConfig struct {
	ID                 int
	Description        string
	FocusDuration      int
	ShortBreakDuration int
	LongBreakDuration  int
	BreaksPerCycle     int
}

// FocusSeconds returns the focus budget in seconds.
func (config SessionConfig) FocusSeconds() int {
	return config.FocusDuration * 60
}

// ShortBreakSeconds returns the short break budget in seconds.
func (config SessionConfig) ShortBreakSeconds() int {
	return config.ShortBreakDuration * 60
}

// LongBreakSeconds returns the long break budget in seconds.
func (config SessionConfig) LongBreakSeconds() int {
	return config.LongBreakDuration * 60
}

// PhaseSeconds resolves the duration budget for the given phase.
func (config SessionConfig) PhaseSeconds(phase Phase) int {
	switch phase {
	case PhaseShortBreak:
		return config.ShortBreakSeconds()
	case PhaseLongBreak:
		return config.LongBreakSeconds()
	default:
		return config.FocusSeconds()
	}
}
