package cdp1802

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// serviceRequests runs the DMA or interrupt cycle due at this boundary. DMA
// wins over interrupts.
func (c *CPU) serviceRequests() bool {
	switch {
	case c.dmaInLine:
		c.setState(StateDMA)
		c.dmaIn(c.dmaByte())
		c.charge(dmaCycles)
		return true
	case c.dmaOutLine:
		c.setState(StateDMA)
		v := c.dmaOut()
		if c.dmaWrite != nil {
			c.inDMA = true
			c.dmaWrite(v)
			c.inDMA = false
		}
		c.charge(dmaCycles)
		return true
	case c.intLine && c.ie:
		c.interrupt()
		return true
	}
	return false
}

func (c *CPU) dmaByte() byte {
	if c.dmaRead == nil {
		c.log.Warn("DMA-IN requested without a DMARead callback", "r0", fmt.Sprintf("0x%04X", c.pointer()))
		return 0
	}
	c.inDMA = true
	defer func() { c.inDMA = false }()
	return c.dmaRead()
}

func (c *CPU) dmaIn(value byte) {
	c.inDMA = true
	c.write(c.pointer(), value)
	c.inDMA = false
	c.r[addr.CDP1802DMAPointer]++
	c.idle = false
}

func (c *CPU) dmaOut() byte {
	c.inDMA = true
	v := c.read(c.pointer())
	c.inDMA = false
	c.r[addr.CDP1802DMAPointer]++
	c.idle = false
	return v
}

func (c *CPU) interrupt() {
	c.setState(StateInterrupt)
	c.t = c.x<<4 | c.p
	c.x = addr.CDP1802IntStack
	c.p = addr.CDP1802IntPC
	c.ie = false
	c.idle = false

	// The 1802 has no vector: the ack only lets the source drop its line.
	if _, override := c.ack(cpu.LineIRQ); override {
		c.log.Warn("Vector override ignored, interrupts always run from R1", "line", cpu.LineIRQ)
	}
	c.charge(intCycles)
}

// DMAIn stores value at R0 and advances it, as a peripheral holding DMA-IN
// for one cycle would. The cycle is stolen from the running or next budget.
func (c *CPU) DMAIn(value byte) error {
	if c.inDMA {
		c.log.Error("Reentrant DMA-IN", "r0", fmt.Sprintf("0x%04X", c.pointer()))
		return cpu.ErrDMAReentry
	}
	c.dmaIn(value)
	c.steal(dmaCycles)
	return nil
}

// DMAOut reads the byte at R0 and advances it.
func (c *CPU) DMAOut() (byte, error) {
	if c.inDMA {
		c.log.Error("Reentrant DMA-OUT", "r0", fmt.Sprintf("0x%04X", c.pointer()))
		return 0, cpu.ErrDMAReentry
	}
	v := c.dmaOut()
	c.steal(dmaCycles)
	return v, nil
}

func (c *CPU) steal(cycles int) {
	c.count.Steal(cycles)
	c.cycles += uint64(cycles)
}

// SetInputLine drives INT, DMA-IN, DMA-OUT and WAIT. All of them are level
// sensitive and sampled at instruction boundaries.
func (c *CPU) SetInputLine(line cpu.Line, state cpu.LineState) {
	asserted := state == cpu.Assert
	switch line {
	case cpu.LineIRQ:
		c.intLine = asserted
	case cpu.LineDMAIn:
		c.dmaInLine = asserted
	case cpu.LineDMAOut:
		c.dmaOutLine = asserted
	case cpu.LineHalt:
		c.halted = asserted
	default:
		c.log.Warn("Input line not wired on this CPU", "line", line, "state", state)
	}
}
