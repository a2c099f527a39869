package timing

import "time"

// Limiter paces machine slices against the wall clock.
type Limiter interface {
	// WaitForNextSlice blocks until it's time for the next slice.
	// Returns immediately if timing is behind schedule.
	WaitForNextSlice()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextSlice() {}
func (n *noOpLimiter) Reset()            {}

// DefaultSlice is the scheduling quantum used when none is configured.
const DefaultSlice = time.Millisecond

// SliceDuration returns how long cycles take at clockHz, rounded down.
func SliceDuration(cycles, clockHz uint64) time.Duration {
	if clockHz == 0 {
		return 0
	}
	return time.Duration(float64(cycles) * float64(time.Second) / float64(clockHz))
}

// CyclesPerSlice returns the whole cycles a core at clockHz runs per slice.
func CyclesPerSlice(slice time.Duration, clockHz uint64) uint64 {
	if slice <= 0 {
		return 0
	}
	return uint64(float64(slice) * float64(clockHz) / float64(time.Second))
}
