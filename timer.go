package jester

import "time"

// TimerMode selects what a Timer does when it runs out.
type TimerMode uint8

const (
	TimerLoop TimerMode = iota // rearm with the preset duration
	TimerOnce                  // stay finished until Reset
)

// Timer counts a preset duration down by frame deltas.
type Timer struct {
	preset    time.Duration
	remaining time.Duration
	mode      TimerMode
}

// NewTimer creates a timer armed with preset.
func NewTimer(preset time.Duration, mode TimerMode) Timer {
	if preset < 0 {
		preset = 0
	}
	return Timer{preset: preset, remaining: preset, mode: mode}
}

// Tick advances the timer by dt and reports whether it ran out on this tick.
// A finished once-timer never fires again; a loop timer rearms itself and
// discards any overshoot.
func (t *Timer) Tick(dt time.Duration) bool {
	if t.remaining <= 0 {
		return false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	if t.mode == TimerLoop {
		t.remaining = t.preset
	}
	return true
}

// TickSeconds is Tick with a frame delta in seconds, as found in Ctx.Dt.
func (t *Timer) TickSeconds(dt float64) bool {
	return t.Tick(time.Duration(dt * float64(time.Second)))
}

// Finished reports whether a once-timer has run out.
func (t *Timer) Finished() bool {
	return t.remaining <= 0
}

// Reset rearms the timer with its preset.
func (t *Timer) Reset() {
	t.remaining = t.preset
}

// Set changes the preset and rearms the timer.
func (t *Timer) Set(preset time.Duration) {
	if preset < 0 {
		preset = 0
	}
	t.preset = preset
	t.Reset()
}

// Remaining returns the time left before the timer fires.
func (t *Timer) Remaining() time.Duration {
	return t.remaining
}
