package effect

import (
	"fmt"
	"time"

	"github.com/udisondev/alchemy/timer"
)

// MergePolicy selects how a timer combines with the instance it replaces
// during a Merge-mode application. The surviving (incoming) timer's policy
// is the one consulted.
type MergePolicy int

const (
	// MergeReplace keeps the incoming timer untouched.
	MergeReplace MergePolicy = iota
	// MergeKeep discards the incoming timer in favor of the previous one.
	MergeKeep
	// MergeFraction keeps the incoming duration but carries over the
	// previous timer's fraction elapsed.
	MergeFraction
	// MergeMax keeps whichever timer has more time remaining.
	MergeMax
	// MergeSum extends the incoming duration by the previous one.
	MergeSum
)

func (p MergePolicy) String() string {
	switch p {
	case MergeReplace:
		return "replace"
	case MergeKeep:
		return "keep"
	case MergeFraction:
		return "fraction"
	case MergeMax:
		return "max"
	case MergeSum:
		return "sum"
	default:
		return "unknown"
	}
}

// ParseMergePolicy maps the config spelling of a policy to its value.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch s {
	case "replace":
		return MergeReplace, nil
	case "keep":
		return MergeKeep, nil
	case "fraction":
		return MergeFraction, nil
	case "max":
		return MergeMax, nil
	case "sum":
		return MergeSum, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q", s)
	}
}

// Lifetime bounds how long an effect instance lives. The engine ticks it
// every Update and despawns the instance once it finishes.
type Lifetime struct {
	Timer  timer.Timer
	Policy MergePolicy
}

// NewLifetime returns a once-mode lifetime of duration d with the MergeMax
// policy, so a re-application never shortens the effect.
func NewLifetime(d time.Duration) Lifetime {
	return Lifetime{Timer: timer.New(d, timer.Once), Policy: MergeMax}
}

// WithPolicy returns a copy of l with the merge policy replaced.
func (l Lifetime) WithPolicy(p MergePolicy) Lifetime {
	l.Policy = p
	return l
}

// Merge combines the previous instance's lifetime into l according to
// l's policy.
func (l *Lifetime) Merge(old Lifetime) {
	mergeTimer(&l.Timer, l.Policy, old.Timer)
}

// Delay schedules the periodic work of an effect. Gameplay gates its
// ticking logic on Timer.Finished, which reports true on the frames the
// repeating timer wraps.
type Delay struct {
	Timer  timer.Timer
	Policy MergePolicy
}

// NewDelay returns a repeating delay of period d with the MergeFraction
// policy, so a re-application keeps the current phase of the cycle.
func NewDelay(d time.Duration) Delay {
	return Delay{Timer: timer.New(d, timer.Repeating), Policy: MergeFraction}
}

// WithPolicy returns a copy of d with the merge policy replaced.
func (d Delay) WithPolicy(p MergePolicy) Delay {
	d.Policy = p
	return d
}

// Merge combines the previous instance's delay into d according to
// d's policy.
func (d *Delay) Merge(old Delay) {
	mergeTimer(&d.Timer, d.Policy, old.Timer)
}

func mergeTimer(dst *timer.Timer, policy MergePolicy, old timer.Timer) {
	switch policy {
	case MergeKeep:
		*dst = old
	case MergeFraction:
		dst.SetElapsed(time.Duration(old.Fraction() * float64(dst.Duration())))
	case MergeMax:
		if old.Remaining() > dst.Remaining() {
			*dst = old
		}
	case MergeSum:
		dst.SetDuration(dst.Duration() + old.Duration())
	}
}
