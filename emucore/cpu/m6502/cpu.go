package m6502

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/bit"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// Flag is one of the bits of the processor status register.
type Flag uint8

const (
	FlagC Flag = 0x01
	FlagZ Flag = 0x02
	FlagI Flag = 0x04
	FlagD Flag = 0x08
	FlagB Flag = 0x10
	FlagT Flag = 0x20 // unused bit, always reads as 1
	FlagV Flag = 0x40
	FlagN Flag = 0x80
)

const interruptCycles = 7

var _ cpu.Core = (*CPU)(nil)

// Config binds a CPU to its board.
type Config struct {
	Bus cpu.Bus
	// IO is only used by the DECO16, which has IO instructions.
	IO      cpu.IOBus
	Ack     cpu.AckFunc
	Variant Variant
	Logger  *slog.Logger

	// PortRead returns the level of the 6510 port pins; ddr has a 1 for each output.
	PortRead func(ddr byte) byte
	// PortWrite is called whenever the 6510 port latch or direction changes.
	PortWrite func(ddr, value byte)
}

// CPU is a 6502 family interpreter.
type CPU struct {
	// registers
	a   uint8
	x   uint8
	y   uint8
	p   uint8
	sp  uint8
	pc  uint16
	ppc uint16

	// 6510 port
	ddr  uint8
	port uint8

	// input lines and interrupt state
	irqLine    bool
	nmiLine    bool
	nmiPending bool
	soLine     bool
	halted     bool

	// justUnmasked is set when CLI or PLP clears I while IRQ is asserted. The
	// next boundary check skips IRQ and clears it, delaying service by one
	// instruction.
	justUnmasked bool

	// jammed is set by KIL; only Reset recovers.
	jammed bool

	// current instruction
	opcode uint8
	ea     uint16
	target uint16
	imm    uint8
	extra  int

	count  cpu.Counter
	cycles uint64

	variant Variant
	model   model
	table   *[256]entry

	bus       cpu.Bus
	io        cpu.IOBus
	ack       cpu.AckFunc
	portRead  func(byte) byte
	portWrite func(byte, byte)
	log       *slog.Logger
}

// New validates cfg and returns a CPU in power-on state. Call Reset before
// running it.
func New(cfg Config) (*CPU, error) {
	m, ok := models[cfg.Variant]
	if !ok {
		return nil, fmt.Errorf("%w: %v", cpu.ErrInvalidVariant, cfg.Variant)
	}
	if cfg.Bus == nil {
		return nil, cpu.ErrMissingBus
	}
	if cfg.Ack == nil {
		return nil, cpu.ErrMissingAck
	}
	if cfg.Variant == DECO16 && cfg.IO == nil {
		return nil, fmt.Errorf("%w: the DECO16 needs an IO bus", cpu.ErrMissingIO)
	}

	return &CPU{
		p:         uint8(FlagT | FlagI | FlagZ | FlagB),
		sp:        0xFF,
		port:      0xFF,
		variant:   cfg.Variant,
		model:     m,
		table:     tables[cfg.Variant],
		bus:       cfg.Bus,
		io:        cfg.IO,
		ack:       cfg.Ack,
		portRead:  cfg.PortRead,
		portWrite: cfg.PortWrite,
		log:       cpu.Logger(cfg.Logger).With("cpu", cfg.Variant.String()),
	}, nil
}

func (c *CPU) Arch() cpu.Arch {
	return cpu.ArchM6502
}

// Variant returns the part this CPU emulates.
func (c *CPU) Variant() Variant {
	return c.variant
}

// Reset loads PC from the reset vector and returns the status register to
// its power-on pattern. Pending interrupts and a KIL jam are cleared; the
// levels of the input lines belong to the host and are kept.
func (c *CPU) Reset() {
	decimal := c.p & uint8(FlagD)
	c.p = uint8(FlagT | FlagI | FlagZ | FlagB)
	if !c.model.clearsDecimal {
		c.p |= decimal
	}
	c.sp = 0xFF
	c.nmiPending = false
	c.justUnmasked = false
	c.jammed = false

	if c.model.port {
		c.ddr = 0
		c.port = 0xFF
		c.syncPort()
	}

	c.pc = c.readVector(c.model.resetVec)
	c.ppc = c.pc
}

// Execute runs instructions until the budget is spent and returns the
// cycles consumed.
func (c *CPU) Execute(cycles int) int {
	if c.halted {
		return 0
	}

	c.count.Begin(cycles)
	for c.count.Remaining() > 0 {
		if c.jammed {
			c.cycles += uint64(c.count.Burn())
			break
		}
		if c.serviceInterrupts() {
			continue
		}
		c.step()
	}
	return c.count.End()
}

// Step runs a single instruction, or a single interrupt entry, and returns
// its cost.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	c.count.Begin(0)
	switch {
	case c.jammed:
		c.count.Debit(1)
		c.cycles++
	case c.serviceInterrupts():
	default:
		c.step()
	}
	return c.count.EndStep()
}

func (c *CPU) step() {
	c.ppc = c.pc
	c.opcode = c.fetch()
	e := c.table[c.opcode]

	c.extra = 0
	c.resolve(e)
	c.exec(e)

	cost := int(e.cycles) + c.extra
	c.count.Debit(cost)
	c.cycles += uint64(cost)
}

// Jammed reports whether a KIL opcode has stopped the CPU.
func (c *CPU) Jammed() bool {
	return c.jammed
}

// Cycles returns the total number of cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Steal charges cycles taken by another bus master, such as sprite DMA.
func (c *CPU) Steal(cycles int) {
	c.count.Steal(cycles)
	c.cycles += uint64(cycles)
}

func (c *CPU) fetch() uint8 {
	v := c.bus.ReadOpcode(uint32(c.pc))
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return bit.Combine(hi, lo)
}

func (c *CPU) read(address uint16) uint8 {
	if c.model.port && address <= addr.M6510Port {
		return c.readPort(address)
	}
	return c.bus.Read(uint32(address))
}

func (c *CPU) write(address uint16, value uint8) {
	if c.model.port && address <= addr.M6510Port {
		c.writePort(address, value)
		return
	}
	c.bus.Write(uint32(address), value)
}

// read16 reads a little-endian pointer.
func (c *CPU) read16(address uint16) uint16 {
	lo := c.read(address)
	hi := c.read(address + 1)
	return bit.Combine(hi, lo)
}

// readZP16 reads a pointer from the zero page, wrapping within it.
func (c *CPU) readZP16(zp uint8) uint16 {
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	return bit.Combine(hi, lo)
}

func (c *CPU) readVector(vector uint16) uint16 {
	if c.model.bigVectors {
		hi := c.read(vector)
		lo := c.read(vector + 1)
		return bit.Combine(hi, lo)
	}
	return c.read16(vector)
}

func (c *CPU) push(value uint8) {
	c.write(addr.StackPage|uint16(c.sp), value)
	c.sp--
}

func (c *CPU) pull() uint8 {
	c.sp++
	return c.read(addr.StackPage | uint16(c.sp))
}

func (c *CPU) push16(value uint16) {
	c.push(bit.High(value))
	c.push(bit.Low(value))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull()
	hi := c.pull()
	return bit.Combine(hi, lo)
}

func (c *CPU) readPort(address uint16) uint8 {
	if address == addr.M6510DDR {
		return c.ddr
	}
	var pins uint8
	if c.portRead != nil {
		pins = c.portRead(c.ddr)
	}
	return (c.ddr & c.port) | (^c.ddr & pins)
}

func (c *CPU) writePort(address uint16, value uint8) {
	if address == addr.M6510DDR {
		c.ddr = value
	} else {
		c.port = value
	}
	c.syncPort()
}

func (c *CPU) syncPort() {
	if c.portWrite != nil {
		c.portWrite(c.ddr, c.port&c.ddr)
	}
}

func (c *CPU) setFlag(flag Flag) {
	c.p |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.p &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.p&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) setNZ(value uint8) {
	c.setFlagToCondition(FlagZ, value == 0)
	c.setFlagToCondition(FlagN, value&0x80 != 0)
}

func (c *CPU) carry() uint8 {
	return c.p & uint8(FlagC)
}
