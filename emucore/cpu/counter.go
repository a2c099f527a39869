package cpu

// Counter tracks the cycle budget of Execute calls.
//
// The remaining count is carried between calls: a call that overshoots by a few
// cycles starts the next one that much shorter. Cycles stolen by DMA while no
// call is running are reported by the next call, so that the sum of all
// returned values always equals the cycles actually spent.
type Counter struct {
	remaining int64
	stolen    int64
	start     int64
	running   bool
}

// Begin opens a call with the given budget.
func (c *Counter) Begin(budget int) {
	c.remaining += int64(budget)
	c.start = c.remaining
	c.running = true
}

// End closes the call and returns the cycles consumed by it.
func (c *Counter) End() int {
	consumed := c.start - c.remaining + c.stolen
	c.stolen = 0
	c.running = false
	return int(consumed)
}

// EndStep closes a single-step call opened with Begin(0). It returns the
// cycles spent like End, but leaves the carried remainder where it was, so
// stepping never shortens a later Execute.
func (c *Counter) EndStep() int {
	consumed := c.start - c.remaining + c.stolen
	c.remaining = c.start + c.stolen
	c.stolen = 0
	c.running = false
	return int(consumed)
}

// Debit charges cycles to the running call.
func (c *Counter) Debit(cycles int) {
	c.remaining -= int64(cycles)
}

// Burn consumes whatever is left of the running call and returns how much that was.
func (c *Counter) Burn() int {
	if c.remaining <= 0 {
		return 0
	}
	burned := c.remaining
	c.remaining = 0
	return int(burned)
}

// Abandon drops the unspent part of the running call's budget, for a call
// that stops early without the time passing (a paused CPU). An overshoot
// already incurred stays carried.
func (c *Counter) Abandon() {
	if c.remaining <= 0 {
		return
	}
	c.start -= c.remaining
	c.remaining = 0
}

// Steal charges cycles taken by an external bus master. Outside a call the
// cycles shorten, and are reported by, the next call.
func (c *Counter) Steal(cycles int) {
	c.remaining -= int64(cycles)
	if !c.running {
		c.stolen += int64(cycles)
	}
}

// Remaining returns the cycles left in the running call; it may be negative.
func (c *Counter) Remaining() int64 {
	return c.remaining
}

// Running reports whether an Execute call is in progress.
func (c *Counter) Running() bool {
	return c.running
}

// State returns the persistent part of the counter.
func (c *Counter) State() (remaining, stolen int64) {
	return c.remaining, c.stolen
}

// Restore sets the persistent part of the counter.
func (c *Counter) Restore(remaining, stolen int64) {
	c.remaining = remaining
	c.stolen = stolen
	c.running = false
}
