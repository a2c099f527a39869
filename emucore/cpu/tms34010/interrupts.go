package tms34010

import (
	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// source is an interrupt source in priority order after NMI.
type source struct {
	bit    uint16
	vector uint32
	line   cpu.Line
	ack    bool
}

var maskable = [...]source{
	{bit: intHI, vector: addr.TMS34010HI},
	{bit: intDI, vector: addr.TMS34010DI},
	{bit: intWV, vector: addr.TMS34010WV},
	{bit: intINT1, vector: addr.TMS34010INT1, line: cpu.LineIRQ, ack: true},
	{bit: intINT2, vector: addr.TMS34010INT2, line: cpu.LineINT2, ack: true},
}

// serviceInterrupts runs at an instruction boundary and enters the highest
// priority pending interrupt. NMI ignores INTENB and IE.
func (c *CPU) serviceInterrupts() bool {
	pending := c.io[regINTPEND]
	if pending == 0 {
		return false
	}

	if pending&intNMI != 0 {
		c.io[regINTPEND] &^= intNMI
		if c.io[regHSTCTLH]&hstNMIMode == 0 {
			c.push(c.pc)
			c.push(c.st)
		}
		c.st = resetST
		c.pc = c.readLong(addr.TMS34010NMI) &^ 0xF
		c.charge(interruptCycles)
		return true
	}

	if !c.isSetFlag(FlagIE) {
		return false
	}
	enabled := pending & c.io[regINTENB]
	if enabled == 0 {
		return false
	}
	for _, s := range maskable {
		if enabled&s.bit == 0 {
			continue
		}
		c.takeInterrupt(s)
		return true
	}
	return false
}

func (c *CPU) takeInterrupt(s source) {
	c.push(c.pc)
	c.push(c.st)
	c.st = resetST

	target := c.readLong(s.vector)
	if s.ack {
		if vector, ok := c.ack(s.line); ok {
			target = vector
		}
	}
	c.pc = target &^ 0xF
	c.charge(interruptCycles)
}

// trap enters software trap n. TRAP 0 does not save any state.
func (c *CPU) trap(n uint8) {
	if n != 0 {
		c.push(c.pc)
		c.push(c.st)
	}
	c.st = resetST
	c.pc = c.readLong(addr.TMS34010TrapVector(n)) &^ 0xF
}

// illegal traps an undefined encoding through the ILLOP vector.
func (c *CPU) illegal(op uint16) int {
	c.log.Warn("Illegal opcode trapped", "op", hex16(op), "pc", hex32(c.ppc))
	c.push(c.pc)
	c.push(c.st)
	c.st = resetST
	c.pc = c.readLong(addr.TMS34010ILLOP) &^ 0xF
	return trapCycles
}

// SetInputLine drives INT1 (IRQ), INT2, NMI or the host halt line.
// INT1 and INT2 are level sensitive and mirrored into INTPEND; NMI latches
// on assertion.
func (c *CPU) SetInputLine(line cpu.Line, state cpu.LineState) {
	asserted := state == cpu.Assert
	switch line {
	case cpu.LineIRQ:
		c.int1Line = asserted
		c.setPending(intINT1, asserted)
	case cpu.LineINT2:
		c.int2Line = asserted
		c.setPending(intINT2, asserted)
	case cpu.LineNMI:
		if asserted {
			c.io[regINTPEND] |= intNMI
		}
	case cpu.LineHalt:
		c.hostHalt = asserted
	default:
		c.log.Warn("Input line not wired on this CPU", "line", line, "state", state)
	}
}

// RaiseInterrupt flags one of the internal display interrupts for a video
// peripheral: "HI", "DI" or "WV".
func (c *CPU) RaiseInterrupt(name string) {
	switch name {
	case "HI":
		c.setPending(intHI, true)
	case "DI":
		c.setPending(intDI, true)
	case "WV":
		c.setPending(intWV, true)
	default:
		c.log.Warn("Unknown internal interrupt", "name", name)
	}
}

func (c *CPU) setPending(b uint16, on bool) {
	if on {
		c.io[regINTPEND] |= b
	} else {
		c.io[regINTPEND] &^= b
	}
}
