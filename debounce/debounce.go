// Package debounce provides the fixed-interval timer used for weapon
// cooldowns, gesture sampling and AI fire control.
package debounce

// Timer accumulates elapsed time up to its length and fires once full.
type Timer struct {
	length  float64
	current float64
}

// New returns a timer that fires after length seconds.
func New(length float64) *Timer {
	return &Timer{length: length}
}

// Update advances the timer. Time stops accumulating once the timer is full.
func (t *Timer) Update(dt float64) {
	if t.current < t.length {
		t.current += dt
	}
}

// ShouldFire reports whether the interval has fully elapsed.
func (t *Timer) ShouldFire() bool {
	return t.current >= t.length
}

// TryFireAndReset consumes the timer if it is ready.
func (t *Timer) TryFireAndReset() bool {
	if !t.ShouldFire() {
		return false
	}
	t.current = 0
	return true
}

// Reset restarts the interval.
func (t *Timer) Reset() {
	t.current = 0
}

// Length returns the configured interval.
func (t *Timer) Length() float64 {
	return t.length
}

// Remaining returns the time left before the timer fires.
func (t *Timer) Remaining() float64 {
	if r := t.length - t.current; r > 0 {
		return r
	}
	return 0
}
