package m6502

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/cpu"
)

const contextVersion = 1

// Context is the saved state of a 6502 family CPU.
type Context struct {
	A, X, Y, P, SP uint8
	PC, PPC        uint16
	DDR, Port      uint8

	IRQLine      bool
	NMILine      bool
	NMIPending   bool
	SOLine       bool
	Halted       bool
	JustUnmasked bool
	Jammed       bool

	Remaining int64
	Stolen    int64
	Cycles    uint64
}

// Snapshot returns the CPU state.
func (c *CPU) Snapshot() Context {
	remaining, stolen := c.count.State()
	return Context{
		A: c.a, X: c.x, Y: c.y, P: c.p, SP: c.sp,
		PC: c.pc, PPC: c.ppc,
		DDR: c.ddr, Port: c.port,
		IRQLine:      c.irqLine,
		NMILine:      c.nmiLine,
		NMIPending:   c.nmiPending,
		SOLine:       c.soLine,
		Halted:       c.halted,
		JustUnmasked: c.justUnmasked,
		Jammed:       c.jammed,
		Remaining:    remaining,
		Stolen:       stolen,
		Cycles:       c.cycles,
	}
}

// Restore replaces the CPU state with ctx.
func (c *CPU) Restore(ctx Context) {
	c.a, c.x, c.y, c.p, c.sp = ctx.A, ctx.X, ctx.Y, ctx.P|uint8(FlagT|FlagB), ctx.SP
	c.pc, c.ppc = ctx.PC, ctx.PPC
	c.ddr, c.port = ctx.DDR, ctx.Port
	c.irqLine = ctx.IRQLine
	c.nmiLine = ctx.NMILine
	c.nmiPending = ctx.NMIPending
	c.soLine = ctx.SOLine
	c.halted = ctx.Halted
	c.justUnmasked = ctx.JustUnmasked
	c.jammed = ctx.Jammed
	c.count.Restore(ctx.Remaining, ctx.Stolen)
	c.cycles = ctx.Cycles

	if c.model.port {
		c.syncPort()
	}
}

func (c *CPU) ContextSize() int {
	return cpu.ContextSize(Context{})
}

// GetContext serializes the CPU state into dst.
func (c *CPU) GetContext(dst []byte) (int, error) {
	return cpu.EncodeContext(dst, cpu.ArchM6502, uint8(c.variant), contextVersion, c.Snapshot())
}

// SetContext loads a state written by GetContext on the same variant.
func (c *CPU) SetContext(src []byte) error {
	var ctx Context
	ok, err := cpu.DecodeContext(src, cpu.ArchM6502, uint8(c.variant), contextVersion, &ctx)
	if err != nil {
		return fmt.Errorf("m6502: %w", err)
	}
	if ok {
		c.Restore(ctx)
	}
	return nil
}
