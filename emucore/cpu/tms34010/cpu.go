package tms34010

import (
	"log/slog"

	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
)

const (
	interruptCycles = 16
	trapCycles      = 16
	blockCycles     = 1

	// Revision is what REV loads into its register.
	Revision = 0x0008
)

// Config binds a CPU to its board.
type Config struct {
	Bus    cpu.Bus
	Ack    cpu.AckFunc
	Logger *slog.Logger

	// HaltOnReset leaves the CPU halted after Reset until the host clears
	// the HSTCTLH halt bit. The reset vector is fetched on the first run.
	HaltOnReset bool
	// HostInterrupt follows the INTOUT bit of HSTCTLL.
	HostInterrupt func(level bool)
}

// CPU is a TMS34010 interpreter covering the general purpose instruction set.
type CPU struct {
	pc  uint32
	ppc uint32
	st  uint32
	a   [15]uint32
	b   [15]uint32
	sp  uint32

	io [ioRegisterCount]uint16

	// Decoded from the IO registers on every write.
	ppop        uint8
	transparent bool
	pixelShift  uint
	convsp      uint32
	convdp      uint32

	int1Line      bool
	int2Line      bool
	hostHalt      bool
	resetDeferred bool

	op uint16

	count  cpu.Counter
	cycles uint64

	bus         cpu.Bus
	ack         cpu.AckFunc
	haltOnReset bool
	hostInt     func(bool)
	log         *slog.Logger
}

var _ cpu.Core = (*CPU)(nil)

// New validates cfg and returns a CPU. Call Reset before running it.
func New(cfg Config) (*CPU, error) {
	if cfg.Bus == nil {
		return nil, cpu.ErrMissingBus
	}
	if cfg.Ack == nil {
		return nil, cpu.ErrMissingAck
	}
	c := &CPU{
		st:          resetST,
		bus:         cfg.Bus,
		ack:         cfg.Ack,
		haltOnReset: cfg.HaltOnReset,
		hostInt:     cfg.HostInterrupt,
		log:         cpu.Logger(cfg.Logger).With("cpu", "tms34010"),
	}
	c.decodeIORegisters()
	return c, nil
}

func (c *CPU) Arch() cpu.Arch {
	return cpu.ArchTMS34010
}

// Reset clears every register and the IO file, then loads PC from the
// reset vector.
func (c *CPU) Reset() {
	c.a = [15]uint32{}
	c.b = [15]uint32{}
	c.sp = 0
	c.st = resetST
	c.io = [ioRegisterCount]uint16{}
	c.ppc = 0
	c.resetDeferred = false

	if c.haltOnReset {
		c.io[regHSTCTLH] = hstHalt
		c.resetDeferred = true
	} else {
		c.pc = c.readLong(addr.TMS34010Reset) &^ 0xF
	}
	c.decodeIORegisters()
}

// Halted reports whether the CPU is stopped by the host line or HSTCTLH.
func (c *CPU) Halted() bool {
	return c.hostHalt || c.io[regHSTCTLH]&hstHalt != 0
}

// Execute runs until the budget is spent or the CPU halts itself.
func (c *CPU) Execute(cycles int) int {
	if c.Halted() {
		return 0
	}
	c.leaveDeferredReset()

	c.count.Begin(cycles)
	for c.count.Remaining() > 0 {
		if c.serviceInterrupts() {
			continue
		}
		c.step()
		if c.Halted() {
			c.cycles += uint64(c.count.Burn())
		}
	}
	return c.count.End()
}

// Step runs a single instruction or interrupt entry and returns its cost.
func (c *CPU) Step() int {
	if c.Halted() {
		return 0
	}
	c.leaveDeferredReset()

	c.count.Begin(0)
	if !c.serviceInterrupts() {
		c.step()
	}
	return c.count.EndStep()
}

func (c *CPU) leaveDeferredReset() {
	if c.resetDeferred {
		c.resetDeferred = false
		c.pc = c.readLong(addr.TMS34010Reset) &^ 0xF
	}
}

func (c *CPU) step() {
	c.ppc = c.pc
	c.op = c.fetchWord()
	c.charge(c.exec(c.op))
}

// Cycles returns the cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

func (c *CPU) charge(cycles int) {
	c.count.Debit(cycles)
	c.cycles += uint64(cycles)
}

// reg resolves a 5 bit register field: bit 4 selects the B file and
// register 15 is SP in both files.
func (c *CPU) reg(r uint16) *uint32 {
	n := r & 0x0F
	switch {
	case n == 15:
		return &c.sp
	case r&0x10 != 0:
		return &c.b[n]
	default:
		return &c.a[n]
	}
}

// regs returns the source and destination of a two register instruction.
func (c *CPU) regs(op uint16) (rs, rd *uint32) {
	file := op & 0x10
	return c.reg(file | (op>>5)&0x0F), c.reg(op & 0x1F)
}
