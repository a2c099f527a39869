package m6502

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/bit"
)

// exec is the operation step: operand read, ALU and write-back.
func (c *CPU) exec(e entry) {
	switch e.op {
	// loads, stores and transfers
	case opLDA:
		c.a = c.load(e.mode)
		c.setNZ(c.a)
	case opLDX:
		c.x = c.load(e.mode)
		c.setNZ(c.x)
	case opLDY:
		c.y = c.load(e.mode)
		c.setNZ(c.y)
	case opSTA:
		c.write(c.ea, c.a)
	case opSTX:
		c.write(c.ea, c.x)
	case opSTY:
		c.write(c.ea, c.y)
	case opSTZ:
		c.write(c.ea, 0)
	case opTAX:
		c.x = c.a
		c.setNZ(c.x)
	case opTAY:
		c.y = c.a
		c.setNZ(c.y)
	case opTXA:
		c.a = c.x
		c.setNZ(c.a)
	case opTYA:
		c.a = c.y
		c.setNZ(c.a)
	case opTSX:
		c.x = c.sp
		c.setNZ(c.x)
	case opTXS:
		c.sp = c.x

	// stack
	case opPHA:
		c.push(c.a)
	case opPHX:
		c.push(c.x)
	case opPHY:
		c.push(c.y)
	case opPHP:
		c.push(c.p | uint8(FlagB|FlagT))
	case opPLA:
		c.a = c.pull()
		c.setNZ(c.a)
	case opPLX:
		c.x = c.pull()
		c.setNZ(c.x)
	case opPLY:
		c.y = c.pull()
		c.setNZ(c.y)
	case opPLP:
		wasMasked := c.isSetFlag(FlagI)
		c.p = c.pull() | uint8(FlagT|FlagB)
		c.noteUnmask(wasMasked)

	// arithmetic and logic
	case opADC:
		c.adcNMOS(c.load(e.mode))
	case opSBC:
		c.sbcNMOS(c.load(e.mode))
	case opADCBin:
		c.adcBinary(c.load(e.mode))
	case opSBCBin:
		c.sbcBinary(c.load(e.mode))
	case opADCCmos:
		c.adcCMOS(c.load(e.mode))
	case opSBCCmos:
		c.sbcCMOS(c.load(e.mode))
	case opAND:
		c.a &= c.load(e.mode)
		c.setNZ(c.a)
	case opORA:
		c.a |= c.load(e.mode)
		c.setNZ(c.a)
	case opEOR:
		c.a ^= c.load(e.mode)
		c.setNZ(c.a)
	case opCMP:
		c.compare(c.a, c.load(e.mode))
	case opCPX:
		c.compare(c.x, c.load(e.mode))
	case opCPY:
		c.compare(c.y, c.load(e.mode))
	case opBIT:
		v := c.load(e.mode)
		c.setFlagToCondition(FlagZ, c.a&v == 0)
		c.setFlagToCondition(FlagN, v&0x80 != 0)
		c.setFlagToCondition(FlagV, v&0x40 != 0)
	case opBITImm:
		c.setFlagToCondition(FlagZ, c.a&c.imm == 0)
	case opINX:
		c.x = c.inc(c.x)
	case opINY:
		c.y = c.inc(c.y)
	case opDEX:
		c.x = c.dec(c.x)
	case opDEY:
		c.y = c.dec(c.y)

	// read-modify-write
	case opASL:
		c.modify(e.mode, c.asl)
	case opLSR:
		c.modify(e.mode, c.lsr)
	case opROL:
		c.modify(e.mode, c.rol)
	case opROR:
		c.modify(e.mode, c.ror)
	case opINC:
		c.modify(e.mode, c.inc)
	case opDEC:
		c.modify(e.mode, c.dec)
	case opTSB:
		c.modify(e.mode, func(v uint8) uint8 {
			c.setFlagToCondition(FlagZ, c.a&v == 0)
			return v | c.a
		})
	case opTRB:
		c.modify(e.mode, func(v uint8) uint8 {
			c.setFlagToCondition(FlagZ, c.a&v == 0)
			return v &^ c.a
		})
	case opRMB:
		n := (c.opcode >> 4) & 0x07
		c.write(c.ea, bit.Clear(n, c.read(c.ea)))
	case opSMB:
		n := (c.opcode >> 4) & 0x07
		c.write(c.ea, bit.Set(n, c.read(c.ea)))

	// flags
	case opCLC:
		c.resetFlag(FlagC)
	case opSEC:
		c.setFlag(FlagC)
	case opCLD:
		c.resetFlag(FlagD)
	case opSED:
		c.setFlag(FlagD)
	case opCLV:
		c.resetFlag(FlagV)
	case opSEI:
		c.setFlag(FlagI)
	case opCLI:
		wasMasked := c.isSetFlag(FlagI)
		c.resetFlag(FlagI)
		c.noteUnmask(wasMasked)

	// control flow
	case opBCC:
		c.branch(!c.isSetFlag(FlagC))
	case opBCS:
		c.branch(c.isSetFlag(FlagC))
	case opBNE:
		c.branch(!c.isSetFlag(FlagZ))
	case opBEQ:
		c.branch(c.isSetFlag(FlagZ))
	case opBPL:
		c.branch(!c.isSetFlag(FlagN))
	case opBMI:
		c.branch(c.isSetFlag(FlagN))
	case opBVC:
		c.branch(!c.isSetFlag(FlagV))
	case opBVS:
		c.branch(c.isSetFlag(FlagV))
	case opBRA:
		c.branch(true)
	case opBBR:
		n := (c.opcode >> 4) & 0x07
		c.branch(!bit.IsSet(n, c.read(c.ea)))
	case opBBS:
		n := (c.opcode >> 4) & 0x07
		c.branch(bit.IsSet(n, c.read(c.ea)))
	case opJMP:
		c.pc = c.ea
	case opJSR:
		c.push16(c.pc - 1)
		c.pc = c.ea
	case opRTS:
		c.pc = c.pull16() + 1
	case opRTI:
		c.p = c.pull() | uint8(FlagT|FlagB)
		c.pc = c.pull16()
	case opBRK:
		c.pc++
		c.push16(c.pc)
		c.push(c.p | uint8(FlagB|FlagT))
		c.setFlag(FlagI)
		if c.model.clearsDecimal {
			c.resetFlag(FlagD)
		}
		c.pc = c.readVector(c.model.irqVec)

	case opNOP:
		switch e.mode {
		case modeImp, modeImm:
		default:
			c.read(c.ea)
		}
		if e.illegal() && e.mode == modeImp {
			c.log.Debug("Undocumented NOP", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode))
		}

	default:
		c.execUndocumented(e)
	}
}

// noteUnmask arms the one-instruction IRQ delay when I was just cleared with
// the IRQ line already asserted.
func (c *CPU) noteUnmask(wasMasked bool) {
	if wasMasked && !c.isSetFlag(FlagI) && c.irqLine {
		c.justUnmasked = true
	}
}

// execUndocumented covers the NMOS undocumented opcodes and the DECO16 specials.
func (c *CPU) execUndocumented(e entry) {
	switch e.op {
	case opKIL:
		c.jammed = true
		c.log.Warn("KIL opcode jammed the CPU", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode))
	case opSLO:
		v := c.modify(e.mode, c.asl)
		c.a |= v
		c.setNZ(c.a)
	case opRLA:
		v := c.modify(e.mode, c.rol)
		c.a &= v
		c.setNZ(c.a)
	case opSRE:
		v := c.modify(e.mode, c.lsr)
		c.a ^= v
		c.setNZ(c.a)
	case opRRA:
		v := c.modify(e.mode, c.ror)
		c.adc(v)
	case opDCP:
		v := c.modify(e.mode, func(v uint8) uint8 { return v - 1 })
		c.compare(c.a, v)
	case opISB:
		v := c.modify(e.mode, func(v uint8) uint8 { return v + 1 })
		c.sbc(v)
	case opSAX:
		c.write(c.ea, c.a&c.x)
	case opLAX:
		c.a = c.load(e.mode)
		c.x = c.a
		c.setNZ(c.a)
	case opANC:
		c.a &= c.imm
		c.setNZ(c.a)
		c.setFlagToCondition(FlagC, c.a&0x80 != 0)
	case opALR:
		c.a = c.lsr(c.a & c.imm)
	case opARR:
		c.arr(c.imm)
	case opSBX:
		t := c.a & c.x
		c.setFlagToCondition(FlagC, t >= c.imm)
		c.x = t - c.imm
		c.setNZ(c.x)
	case opLAS:
		v := c.load(e.mode) & c.sp
		c.a, c.x, c.sp = v, v, v
		c.setNZ(v)
	case opSHA:
		c.write(c.ea, c.a&c.x&(bit.High(c.ea)+1))
	case opSHX:
		c.write(c.ea, c.x&(bit.High(c.ea)+1))
	case opSHY:
		c.write(c.ea, c.y&(bit.High(c.ea)+1))
	case opTAS:
		c.sp = c.a & c.x
		c.write(c.ea, c.sp&(bit.High(c.ea)+1))
	case opANE, opLXA:
		// Both depend on analog behaviour that differs between chips.
		c.log.Warn("Unstable opcode executed as NOP", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode))

	case opDecoIn:
		c.a = c.io.In(0)
	case opDecoBank:
		c.log.Debug("DECO16 bank select", "pc", fmt.Sprintf("0x%04X", c.ppc), "value", fmt.Sprintf("0x%02X", c.imm))
		c.io.Out(0, c.imm)
	case opDecoUnknown:
		c.log.Warn("Unknown DECO16 opcode", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode), "operand", fmt.Sprintf("0x%02X", c.imm))

	default:
		c.log.Error("Opcode without an implementation", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode))
	}
}
