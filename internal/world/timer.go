package world

import "time"

// Timer tracks elapsed time against a duration. A one-shot timer stays
// finished once it reaches its duration; a repeating timer wraps and reports
// Finished only on the tick it wrapped.
type Timer struct {
	Duration  time.Duration
	Elapsed   time.Duration
	Repeating bool
	wrapped   bool
}

func OnceTimer(d time.Duration) Timer   { return Timer{Duration: d} }
func RepeatTimer(d time.Duration) Timer { return Timer{Duration: d, Repeating: true} }

// Tick advances the timer by d.
func (t *Timer) Tick(d time.Duration) {
	if t.Repeating {
		t.wrapped = false
		if t.Duration <= 0 {
			t.wrapped = true
			return
		}
		t.Elapsed += d
		if t.Elapsed >= t.Duration {
			t.Elapsed %= t.Duration
			t.wrapped = true
		}
		return
	}
	t.Elapsed = min(t.Elapsed+d, max(t.Duration, 0))
}

// Finished: one-shot timers once elapsed >= duration; repeating timers on the
// tick they wrapped.
func (t *Timer) Finished() bool {
	if t.Repeating {
		return t.wrapped
	}
	return t.Elapsed >= t.Duration
}

// Fraction is elapsed/duration in [0,1]. A zero-length timer is complete.
func (t *Timer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	f := float64(t.Elapsed) / float64(t.Duration)
	return min(f, 1)
}

func (t *Timer) Remaining() time.Duration {
	return max(t.Duration-t.Elapsed, 0)
}

func (t *Timer) Reset() {
	t.Elapsed = 0
	t.wrapped = false
}
