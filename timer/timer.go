// Package timer provides a small countdown primitive driven by frame deltas.
package timer

import "time"

// Mode selects what happens when elapsed time reaches the duration.
type Mode int

const (
	// Once saturates at the duration and stays finished.
	Once Mode = iota
	// Repeating wraps back past zero and counts completions.
	Repeating
)

func (m Mode) String() string {
	switch m {
	case Once:
		return "once"
	case Repeating:
		return "repeating"
	default:
		return "unknown"
	}
}

// Timer tracks elapsed time against a fixed duration. It is a plain value,
// safe to copy; advance it with Tick from a single goroutine.
type Timer struct {
	duration time.Duration
	elapsed  time.Duration
	mode     Mode
	finished bool
	wraps    int
}

// New returns a timer of duration d starting at zero elapsed.
// Negative durations are treated as zero.
func New(d time.Duration, m Mode) Timer {
	if d < 0 {
		d = 0
	}
	return Timer{duration: d, mode: m}
}

// Tick advances the timer by dt. Negative deltas are ignored.
func (t *Timer) Tick(dt time.Duration) {
	t.wraps = 0
	if dt < 0 {
		return
	}
	if t.mode == Repeating {
		if t.duration <= 0 {
			t.wraps = 1
			return
		}
		t.elapsed += dt
		if t.elapsed >= t.duration {
			t.wraps = int(t.elapsed / t.duration)
			t.elapsed %= t.duration
		}
		return
	}
	if t.finished {
		return
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		t.finished = true
		t.wraps = 1
	}
}

// Finished reports completion. Once-mode timers stay finished after the
// tick that reached the duration. Repeating timers report true only on
// ticks during which they wrapped.
func (t *Timer) Finished() bool {
	if t.mode == Repeating {
		return t.wraps > 0
	}
	return t.finished
}

// TimesFinishedThisTick returns how many completions the last Tick
// produced. A repeating timer can wrap several times when dt exceeds
// its duration.
func (t *Timer) TimesFinishedThisTick() int {
	return t.wraps
}

// Fraction returns elapsed over duration, clamped to [0, 1].
// Zero-duration timers report 1.
func (t *Timer) Fraction() float64 {
	if t.duration <= 0 {
		return 1
	}
	f := float64(t.elapsed) / float64(t.duration)
	if f > 1 {
		return 1
	}
	return f
}

// FractionRemaining returns 1 - Fraction().
func (t *Timer) FractionRemaining() float64 {
	return 1 - t.Fraction()
}

// Remaining returns the time left until the next completion, never negative.
func (t *Timer) Remaining() time.Duration {
	if t.elapsed >= t.duration {
		return 0
	}
	return t.duration - t.elapsed
}

func (t *Timer) Elapsed() time.Duration  { return t.elapsed }
func (t *Timer) Duration() time.Duration { return t.duration }
func (t *Timer) Mode() Mode              { return t.mode }

// SetElapsed overrides elapsed time, clamped into [0, duration].
// A once-mode timer pushed to its duration counts as finished.
func (t *Timer) SetElapsed(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if d > t.duration {
		d = t.duration
	}
	t.elapsed = d
	if t.mode == Once {
		t.finished = t.elapsed >= t.duration
	}
}

// SetDuration changes the duration, re-clamping elapsed when it shrinks.
func (t *Timer) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.duration = d
	if t.elapsed > d {
		t.elapsed = d
	}
	if t.mode == Once {
		t.finished = t.elapsed >= t.duration
	}
}

// Reset rewinds the timer to zero elapsed and clears the finished state.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.wraps = 0
}
