package timing

import (
	"log/slog"
	"time"
)

// driftCheckInterval is how many slices pass between drift checks.
const driftCheckInterval = 100

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	slice     time.Duration
	next      time.Time
	started   time.Time
	sliceSeen int64
}

func NewAdaptiveLimiter(slice time.Duration) *AdaptiveLimiter {
	if slice <= 0 {
		slice = DefaultSlice
	}
	now := time.Now()
	return &AdaptiveLimiter{slice: slice, next: now, started: now}
}

func (a *AdaptiveLimiter) WaitForNextSlice() {
	now := time.Now()
	wait := a.next.Sub(now)

	if wait > 0 {
		if wait >= 2*time.Millisecond {
			time.Sleep(wait - time.Millisecond)
		}
		for time.Now().Before(a.next) {
			// busy-wait the last stretch, higher accuracy.
		}
	} else if wait < -5*a.slice {
		// Too far behind to catch up; drop the backlog.
		a.next = now
	}

	a.next = a.next.Add(a.slice)
	a.sliceSeen++

	if a.sliceSeen%driftCheckInterval == 0 {
		elapsed := time.Since(a.started)
		expected := time.Duration(a.sliceSeen) * a.slice
		drift := elapsed - expected
		if drift.Abs() > 10*time.Millisecond {
			a.next = a.next.Add(-drift / 10)
			slog.Debug("Slice timing drift correction",
				"drift_ms", drift.Milliseconds(),
				"slices", a.sliceSeen,
				"speed", float64(expected)/float64(elapsed))
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = time.Now()
	a.started = a.next
	a.sliceSeen = 0
}
