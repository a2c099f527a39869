package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent slice timing.
// Less accurate than AdaptiveLimiter but simpler and good enough for most cases.
type TickerLimiter struct {
	slice  time.Duration
	ticker *time.Ticker
}

func NewTickerLimiter(slice time.Duration) *TickerLimiter {
	if slice <= 0 {
		slice = DefaultSlice
	}
	return &TickerLimiter{
		slice:  slice,
		ticker: time.NewTicker(slice),
	}
}

func (t *TickerLimiter) WaitForNextSlice() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.slice)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
