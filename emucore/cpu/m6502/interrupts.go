package m6502

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/cpu"
)

// serviceInterrupts runs at an instruction boundary and enters a pending
// interrupt if one can be taken. NMI wins over IRQ.
func (c *CPU) serviceInterrupts() bool {
	delayed := c.justUnmasked
	c.justUnmasked = false

	if c.nmiPending {
		c.nmiPending = false
		c.takeInterrupt(cpu.LineNMI, c.model.nmiVec)
		return true
	}
	if c.irqLine && !c.isSetFlag(FlagI) && !delayed {
		c.takeInterrupt(cpu.LineIRQ, c.model.irqVec)
		return true
	}
	return false
}

func (c *CPU) takeInterrupt(line cpu.Line, vector uint16) {
	c.ppc = c.pc
	c.push16(c.pc)
	c.push((c.p | uint8(FlagT)) &^ uint8(FlagB))
	c.setFlag(FlagI)
	if c.model.clearsDecimal {
		c.resetFlag(FlagD)
	}

	if target, ok := c.ack(line); ok {
		if target > 0xFFFF {
			c.log.Warn("Interrupt vector override out of range", "line", line, "vector", fmt.Sprintf("0x%X", target))
		}
		c.pc = uint16(target)
	} else {
		c.pc = c.readVector(vector)
	}

	c.count.Debit(interruptCycles)
	c.cycles += interruptCycles
}

// SetInputLine drives one of the CPU pins. IRQ is level sensitive, NMI
// latches on the rising edge, SO sets V on the rising edge and Halt stops
// Execute.
func (c *CPU) SetInputLine(line cpu.Line, state cpu.LineState) {
	asserted := state == cpu.Assert
	switch line {
	case cpu.LineIRQ:
		c.irqLine = asserted
		if !asserted {
			c.justUnmasked = false
		}
	case cpu.LineNMI:
		if asserted && !c.nmiLine {
			c.nmiPending = true
		}
		c.nmiLine = asserted
	case cpu.LineSO:
		if asserted && !c.soLine {
			c.setFlag(FlagV)
		}
		c.soLine = asserted
	case cpu.LineHalt:
		c.halted = asserted
	default:
		c.log.Warn("Input line not wired on this CPU", "line", line, "state", state)
	}
}
