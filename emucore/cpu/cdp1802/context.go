package cdp1802

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/cpu"
)

const contextVersion = 1

// Context is the saved state of a CDP1802.
type Context struct {
	R          [16]uint16
	P, X, N, I uint8
	D, T       uint8
	DF, IE, Q  bool
	Idle       bool

	IntLine    bool
	DMAInLine  bool
	DMAOutLine bool
	Halted     bool

	PPC       uint16
	Remaining int64
	Stolen    int64
	Cycles    uint64
}

func (c *CPU) Snapshot() Context {
	remaining, stolen := c.count.State()
	return Context{
		R: c.r,
		P: c.p, X: c.x, N: c.n, I: c.i,
		D: c.d, T: c.t,
		DF: c.df, IE: c.ie, Q: c.q,
		Idle:       c.idle,
		IntLine:    c.intLine,
		DMAInLine:  c.dmaInLine,
		DMAOutLine: c.dmaOutLine,
		Halted:     c.halted,
		PPC:        c.ppc,
		Remaining:  remaining,
		Stolen:     stolen,
		Cycles:     c.cycles,
	}
}

// Restore replaces the CPU state. The Q callback sees the restored level.
func (c *CPU) Restore(ctx Context) {
	c.r = ctx.R
	c.p, c.x, c.n, c.i = ctx.P&0x0F, ctx.X&0x0F, ctx.N&0x0F, ctx.I&0x0F
	c.d, c.t = ctx.D, ctx.T
	c.df, c.ie = ctx.DF, ctx.IE
	c.idle = ctx.Idle
	c.intLine = ctx.IntLine
	c.dmaInLine = ctx.DMAInLine
	c.dmaOutLine = ctx.DMAOutLine
	c.halted = ctx.Halted
	c.ppc = ctx.PPC
	c.count.Restore(ctx.Remaining, ctx.Stolen)
	c.cycles = ctx.Cycles
	c.setQ(ctx.Q)
}

func (c *CPU) ContextSize() int {
	return cpu.ContextSize(Context{})
}

func (c *CPU) GetContext(dst []byte) (int, error) {
	return cpu.EncodeContext(dst, cpu.ArchCDP1802, 0, contextVersion, c.Snapshot())
}

func (c *CPU) SetContext(src []byte) error {
	var ctx Context
	ok, err := cpu.DecodeContext(src, cpu.ArchCDP1802, 0, contextVersion, &ctx)
	if err != nil {
		return fmt.Errorf("cdp1802: %w", err)
	}
	if ok {
		c.Restore(ctx)
	}
	return nil
}
