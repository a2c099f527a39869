package cdp1802

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// Machine cycle costs. One machine cycle is eight clock periods.
const (
	fetchCycles   = 1
	executeCycles = 1
	longCycles    = 2 // long branches and skips have a second execute cycle
	dmaCycles     = 1
	intCycles     = 1
	idleCycles    = 1
)

// State is the value of the SC0/SC1 outputs.
type State uint8

const (
	StateFetch     State = iota // S0
	StateExecute                // S1
	StateDMA                    // S2
	StateInterrupt              // S3
)

var stateNames = [...]string{"S0", "S1", "S2", "S3"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("S?(%d)", uint8(s))
}

// Mode is the level of the CLEAR and WAIT control pins.
type Mode uint8

const (
	ModeRun Mode = iota
	ModeLoad
	ModePause
	ModeReset
)

func (m Mode) String() string {
	switch m {
	case ModeRun:
		return "run"
	case ModeLoad:
		return "load"
	case ModePause:
		return "pause"
	case ModeReset:
		return "reset"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Config binds a CPU to its board. Every callback but Bus, IO and Ack is optional.
type Config struct {
	Bus    cpu.Bus
	IO     cpu.IOBus
	Ack    cpu.AckFunc
	Logger *slog.Logger

	// Mode samples the control pins at every loop iteration. Nil means run.
	Mode func() Mode
	// EF reports whether external flag n (1-4) is asserted.
	EF func(n int) bool
	// Q is called when the Q output changes level.
	Q func(level bool)
	// SC is called at the start of every machine cycle group.
	SC func(state State)
	// DMARead supplies the byte of a DMA-IN cycle.
	DMARead func() byte
	// DMAWrite receives the byte of a DMA-OUT cycle.
	DMAWrite func(value byte)
}

// CPU is an RCA CDP1802 interpreter.
type CPU struct {
	r  [16]uint16
	p  uint8
	x  uint8
	n  uint8
	i  uint8
	d  uint8
	df bool
	t  uint8
	ie bool
	q  bool

	idle bool

	intLine    bool
	dmaInLine  bool
	dmaOutLine bool
	halted     bool

	// inDMA guards against a DMA callback requesting another transfer.
	inDMA bool

	opcode uint8
	extra  int
	ppc    uint16

	count  cpu.Counter
	cycles uint64

	bus      cpu.Bus
	io       cpu.IOBus
	ack      cpu.AckFunc
	mode     func() Mode
	ef       func(int) bool
	qOut     func(bool)
	sc       func(State)
	dmaRead  func() byte
	dmaWrite func(byte)
	log      *slog.Logger
}

var _ cpu.Core = (*CPU)(nil)

// New validates cfg and returns a CPU. Call Reset before running it.
func New(cfg Config) (*CPU, error) {
	if cfg.Bus == nil {
		return nil, cpu.ErrMissingBus
	}
	if cfg.IO == nil {
		return nil, fmt.Errorf("%w: INP and OUT need an IO bus", cpu.ErrMissingIO)
	}
	if cfg.Ack == nil {
		return nil, cpu.ErrMissingAck
	}

	return &CPU{
		ie:       true,
		bus:      cfg.Bus,
		io:       cfg.IO,
		ack:      cfg.Ack,
		mode:     cfg.Mode,
		ef:       cfg.EF,
		qOut:     cfg.Q,
		sc:       cfg.SC,
		dmaRead:  cfg.DMARead,
		dmaWrite: cfg.DMAWrite,
		log:      cpu.Logger(cfg.Logger).With("cpu", "cdp1802"),
	}, nil
}

func (c *CPU) Arch() cpu.Arch {
	return cpu.ArchCDP1802
}

// Reset clears the control registers. Execution restarts at R0 with X = P = 0
// and interrupts enabled. The other scratchpad registers keep their values.
func (c *CPU) Reset() {
	c.i, c.n, c.x, c.p = 0, 0, 0, 0
	c.r[0] = 0
	c.d, c.df, c.t = 0, false, 0
	c.ie = true
	c.idle = false
	c.inDMA = false
	c.ppc = 0
	c.q = false
	if c.qOut != nil {
		c.qOut(false)
	}
}

// Execute runs until the budget, in machine cycles, is spent.
func (c *CPU) Execute(cycles int) int {
	if c.halted {
		return 0
	}

	c.count.Begin(cycles)
	for c.count.Remaining() > 0 {
		switch c.currentMode() {
		case ModePause:
			c.count.Abandon()
			return c.count.End()
		case ModeReset:
			c.Reset()
			c.cycles += uint64(c.count.Burn())
			continue
		case ModeLoad:
			c.idle = true
		}

		if c.serviceRequests() {
			continue
		}
		if c.idle {
			c.charge(idleCycles)
			continue
		}
		c.step()
	}
	return c.count.End()
}

// Step runs one instruction, DMA cycle, interrupt entry or idle cycle and
// returns its cost.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	c.count.Begin(0)
	switch {
	case c.serviceRequests():
	case c.idle:
		c.charge(idleCycles)
	default:
		c.step()
	}
	return c.count.EndStep()
}

func (c *CPU) step() {
	c.ppc = c.r[c.p]
	c.setState(StateFetch)
	c.opcode = c.bus.ReadOpcode(uint32(c.r[c.p]))
	c.r[c.p]++
	c.i, c.n = c.opcode>>4, c.opcode&0x0F

	c.extra = 0
	c.setState(StateExecute)
	c.exec()

	c.charge(fetchCycles + executeCycles + c.extra)
}

// Cycles returns the machine cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Idle reports whether the CPU is stopped in IDL.
func (c *CPU) Idle() bool {
	return c.idle
}

func (c *CPU) charge(cycles int) {
	c.count.Debit(cycles)
	c.cycles += uint64(cycles)
}

func (c *CPU) currentMode() Mode {
	if c.mode == nil {
		return ModeRun
	}
	return c.mode()
}

func (c *CPU) setState(s State) {
	if c.sc != nil {
		c.sc(s)
	}
}

func (c *CPU) setQ(level bool) {
	changed := c.q != level
	c.q = level
	if changed && c.qOut != nil {
		c.qOut(level)
	}
}

func (c *CPU) flag(n int) bool {
	if c.ef == nil {
		return false
	}
	return c.ef(n)
}

func (c *CPU) read(address uint16) uint8 {
	return c.bus.Read(uint32(address))
}

// fetch reads an operand byte from the instruction stream.
func (c *CPU) fetch(address uint16) uint8 {
	return c.bus.ReadOpcode(uint32(address))
}

func (c *CPU) write(address uint16, value uint8) {
	c.bus.Write(uint32(address), value)
}

// immediate reads the byte at R(P) and advances it.
func (c *CPU) immediate() uint8 {
	v := c.fetch(c.r[c.p])
	c.r[c.p]++
	return v
}

func (c *CPU) pointer() uint16 {
	return c.r[addr.CDP1802DMAPointer]
}
