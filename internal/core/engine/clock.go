package engine

// Clock is the countdown primitive owned by the Controller. It only detects
// expiry; deciding what phase comes next is the Controller's job. Clock is
// not safe for concurrent use on its own, the Controller's mutex guards it.
type Clock struct {
	time    int
	maxTime int
	running bool
}

// Tick advances the countdown by one second while running. It reports true
// exactly once, on the tick that drains the clock, and stops the clock at
// that moment.
func (clock *Clock) Tick() bool {
	if !clock.running || clock.time <= 0 {
		return false
	}
	clock.time--
	if clock.time == 0 {
		clock.running = false
		return true
	}
	return false
}

// Start resumes the countdown. Starting a drained clock is a no-op.
func (clock *Clock) Start() {
	if clock.time > 0 {
		clock.running = true
	}
}

// Pause freezes the countdown.
func (clock *Clock) Pause() {
	clock.running = false
}

// Reset restores the full budget and stops the clock.
func (clock *Clock) Reset() {
	clock.time = clock.maxTime
	clock.running = false
}

// SetBudget replaces the phase budget. Remaining time is clamped so it never
// exceeds the new budget; it is never topped up.
func (clock *Clock) SetBudget(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	clock.maxTime = seconds
	if clock.time > seconds {
		clock.time = seconds
	}
}

// SetRemaining sets the remaining time, clamped into [0, maxTime].
func (clock *Clock) SetRemaining(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > clock.maxTime {
		seconds = clock.maxTime
	}
	clock.time = seconds
	if clock.time == 0 {
		clock.running = false
	}
}

// Time returns the remaining seconds.
func (clock *Clock) Time() int { return clock.time }

// MaxTime returns the budget in seconds.
func (clock *Clock) MaxTime() int { return clock.maxTime }

// Running reports whether the clock is counting down.
func (clock *Clock) Running() bool { return clock.running }
