package tms34010

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/cpu"
)

const contextVersion = 1

// Context is the saved state of a TMS34010, IO registers included.
type Context struct {
	PC, PPC, ST uint32
	A, B        [15]uint32
	SP          uint32
	IO          [ioRegisterCount]uint16

	INT1Line      bool
	INT2Line      bool
	HostHalt      bool
	ResetDeferred bool

	Remaining int64
	Stolen    int64
	Cycles    uint64
}

func (c *CPU) Snapshot() Context {
	remaining, stolen := c.count.State()
	return Context{
		PC: c.pc, PPC: c.ppc, ST: c.st,
		A: c.a, B: c.b, SP: c.sp,
		IO:            c.io,
		INT1Line:      c.int1Line,
		INT2Line:      c.int2Line,
		HostHalt:      c.hostHalt,
		ResetDeferred: c.resetDeferred,
		Remaining:     remaining,
		Stolen:        stolen,
		Cycles:        c.cycles,
	}
}

// Restore replaces the CPU state and rebuilds everything derived from the
// IO registers.
func (c *CPU) Restore(ctx Context) {
	c.pc, c.ppc, c.st = ctx.PC&^0xF, ctx.PPC, ctx.ST
	c.a, c.b, c.sp = ctx.A, ctx.B, ctx.SP
	c.io = ctx.IO
	c.int1Line = ctx.INT1Line
	c.int2Line = ctx.INT2Line
	c.hostHalt = ctx.HostHalt
	c.resetDeferred = ctx.ResetDeferred
	c.count.Restore(ctx.Remaining, ctx.Stolen)
	c.cycles = ctx.Cycles
	c.decodeIORegisters()
}

func (c *CPU) ContextSize() int {
	return cpu.ContextSize(Context{})
}

func (c *CPU) GetContext(dst []byte) (int, error) {
	return cpu.EncodeContext(dst, cpu.ArchTMS34010, 0, contextVersion, c.Snapshot())
}

func (c *CPU) SetContext(src []byte) error {
	var ctx Context
	ok, err := cpu.DecodeContext(src, cpu.ArchTMS34010, 0, contextVersion, &ctx)
	if err != nil {
		return fmt.Errorf("tms34010: %w", err)
	}
	if ok {
		c.Restore(ctx)
	}
	return nil
}
