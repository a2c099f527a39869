package tms34010

import (
	"math/bits"

	"github.com/valerio/go-emucore/emucore/bit"
)

// exec decodes and runs op, returning its cost in cycles.
func (c *CPU) exec(op uint16) int {
	switch op >> 12 {
	case 0x0:
		return c.execMisc(op)
	case 0x1:
		return c.execConstant(op)
	case 0x2, 0x3:
		return c.execShiftK(op)
	case 0x4, 0x5, 0x6, 0x7:
		return c.execRegister(op)
	case 0x8, 0x9, 0xA, 0xB:
		return c.execMove(op)
	case 0xC:
		return c.execJump(op)
	case 0xD:
		return c.execExtended(op)
	case 0xE:
		return c.execXY(op)
	default:
		return c.execPixel(op)
	}
}

func (c *CPU) execMisc(op uint16) int {
	rd := c.reg(op & 0x1F)
	exact := op&0x1F == 0

	switch op & 0xFFE0 {
	case 0x0020: // REV
		*rd = Revision
		return 1
	case 0x0100:
		if exact {
			c.log.Debug("EMU ignored", "pc", hex32(c.ppc))
			return 6
		}
	case 0x0120: // EXGPC
		*rd, c.pc = c.pc, *rd&^0xF
		return 2
	case 0x0140: // GETPC
		*rd = c.pc
		return 1
	case 0x0160: // JUMP
		c.pc = *rd &^ 0xF
		return 2
	case 0x0180: // GETST
		*rd = c.st
		return 1
	case 0x01A0: // PUTST
		c.st = *rd
		return 3
	case 0x01C0:
		if exact { // POPST
			c.st = c.pop()
			return 8
		}
	case 0x01E0:
		if exact { // PUSHST
			c.push(c.st)
			return 2
		}
	case 0x0300:
		if exact { // NOP
			return 1
		}
	case 0x0320:
		if exact { // CLRC
			c.resetFlag(FlagC)
			return 1
		}
	case 0x0360:
		if exact { // DINT
			c.resetFlag(FlagIE)
			return 3
		}
	case 0x0380: // ABS
		r := -*rd
		c.setNZ(r)
		c.setFlagToCondition(FlagV, r == 0x80000000)
		if int32(r) > 0 {
			*rd = r
		}
		return 1
	case 0x03A0: // NEG
		*rd = c.sub(0, *rd, 0)
		return 1
	case 0x03C0: // NEGB
		*rd = c.sub(0, *rd, c.carry())
		return 1
	case 0x03E0: // NOT
		*rd = ^*rd
		c.setFlagToCondition(FlagZ, *rd == 0)
		return 1
	case 0x0500, 0x0700: // SEXT
		w := c.fieldSize(int(op>>9) & 1)
		*rd = bit.SignExtend(*rd&bit.Mask(w), w)
		c.setNZ(*rd)
		return 3
	case 0x0520, 0x0720: // ZEXT
		*rd &= bit.Mask(c.fieldSize(int(op>>9) & 1))
		c.setFlagToCondition(FlagZ, *rd == 0)
		return 1
	case 0x0540, 0x0560, 0x0740, 0x0760: // SETF
		c.setField(int(op>>9)&1, uint32(op&0x3F))
		return 1
	case 0x0900: // TRAP
		c.trap(uint8(op & 0x1F))
		return trapCycles
	case 0x0920: // CALL
		c.push(c.pc)
		c.pc = *rd &^ 0xF
		return 3
	case 0x0940:
		if exact { // RETI
			c.st = c.pop()
			c.pc = c.pop() &^ 0xF
			return 11
		}
	case 0x0960: // RETS
		c.pc = c.pop() &^ 0xF
		c.sp += uint32(op&0x1F) * 32
		return 7
	case 0x0980:
		return c.mmtm(op)
	case 0x09A0:
		return c.mmfm(op)
	case 0x09C0: // MOVI IW
		*rd = c.fetchSignedWord()
		c.setMove(*rd)
		return 2
	case 0x09E0: // MOVI IL
		*rd = c.fetchLong()
		c.setMove(*rd)
		return 3
	case 0x0B00: // ADDI IW
		*rd = c.add(*rd, c.fetchSignedWord(), 0)
		return 2
	case 0x0B20: // ADDI IL
		*rd = c.add(*rd, c.fetchLong(), 0)
		return 3
	case 0x0B40: // CMPI IW, immediate stored complemented
		c.sub(*rd, ^c.fetchSignedWord(), 0)
		return 2
	case 0x0B60: // CMPI IL
		c.sub(*rd, ^c.fetchLong(), 0)
		return 3
	case 0x0B80: // ANDI, immediate stored complemented
		*rd &^= c.fetchLong()
		c.setLogic(*rd)
		return 3
	case 0x0BA0: // ORI
		*rd |= c.fetchLong()
		c.setLogic(*rd)
		return 3
	case 0x0BC0: // XORI
		*rd ^= c.fetchLong()
		c.setLogic(*rd)
		return 3
	case 0x0BE0: // SUBI IW
		*rd = c.sub(*rd, ^c.fetchSignedWord(), 0)
		return 2
	case 0x0D00: // SUBI IL
		*rd = c.sub(*rd, ^c.fetchLong(), 0)
		return 3
	case 0x0D20:
		if op == 0x0D3F { // CALLR
			disp := c.fetchSignedWord()
			c.push(c.pc)
			c.pc += disp << 4
			return 3
		}
	case 0x0D40:
		if op == 0x0D5F { // CALLA
			target := c.fetchLong()
			c.push(c.pc)
			c.pc = target &^ 0xF
			return 4
		}
	case 0x0D60:
		if exact { // EINT
			c.setFlag(FlagIE)
			return 3
		}
	case 0x0D80: // DSJ
		return c.dsj(rd, true)
	case 0x0DA0: // DSJEQ
		return c.dsj(rd, c.isSetFlag(FlagZ))
	case 0x0DC0: // DSJNE
		return c.dsj(rd, !c.isSetFlag(FlagZ))
	case 0x0DE0:
		if exact { // SETC
			c.setFlag(FlagC)
			return 1
		}
	case 0x0F00, 0x0F20, 0x0F40, 0x0F60, 0x0F80, 0x0FA0, 0x0FC0, 0x0FE0:
		if exact {
			return c.block(op)
		}
	}
	return c.illegal(op)
}

// dsj decrements rd and branches while it is non-zero. When enabled is
// false the displacement is skipped untouched.
func (c *CPU) dsj(rd *uint32, enabled bool) int {
	disp := c.fetchSignedWord()
	if !enabled {
		return 2
	}
	*rd--
	if *rd != 0 {
		c.pc += disp << 4
		return 3
	}
	return 2
}

// mmtm pushes the registers named by the mask word, R0 first, below Rp.
func (c *CPU) mmtm(op uint16) int {
	mask := c.fetchWord()
	rp := c.reg(op & 0x1F)
	file := op & 0x10
	n := 0
	for i := uint16(0); i < 16; i++ {
		if mask&(0x8000>>i) == 0 {
			continue
		}
		v := *c.reg(file | i)
		*rp -= 32
		c.writeLong(*rp, v)
		n++
	}
	return 2 + 2*n
}

// mmfm pops the registers named by the mask word, R15 first, from Rp.
func (c *CPU) mmfm(op uint16) int {
	mask := c.fetchWord()
	rp := c.reg(op & 0x1F)
	file := op & 0x10
	n := 0
	for i := uint16(0); i < 16; i++ {
		if mask&(0x8000>>i) == 0 {
			continue
		}
		v := c.readLong(*rp)
		*rp += 32
		*c.reg(file | (15 - i)) = v
		n++
	}
	return 3 + 2*n
}

// execConstant handles ADDK, SUBK, MOVK and BTST K.
func (c *CPU) execConstant(op uint16) int {
	k := uint32(op>>5) & 0x1F
	rd := c.reg(op & 0x1F)
	switch (op >> 10) & 3 {
	case 0:
		*rd = c.add(*rd, constant(k), 0)
	case 1:
		*rd = c.sub(*rd, constant(k), 0)
	case 2:
		*rd = constant(k)
	default:
		c.setFlagToCondition(FlagZ, !bit.IsSet32(uint(31-k), *rd))
	}
	return 1
}

// constant maps the 5 bit K field to 1-32.
func constant(k uint32) uint32 {
	if k == 0 {
		return 32
	}
	return k
}

// execShiftK handles the constant shift forms and DSJS. Right shifts
// encode the two's complement of the count.
func (c *CPU) execShiftK(op uint16) int {
	k := uint(op>>5) & 0x1F
	rd := c.reg(op & 0x1F)
	switch (op >> 10) & 7 {
	case 0:
		*rd = c.sla(*rd, k)
	case 1:
		*rd = c.sll(*rd, k)
	case 2:
		*rd = c.sra(*rd, -k&0x1F)
	case 3:
		*rd = c.srl(*rd, -k&0x1F)
	case 4:
		*rd = c.rl(*rd, k)
	case 6, 7: // DSJS
		*rd--
		if *rd == 0 {
			return 3
		}
		offset := uint32(k) << 4
		if op&0x0400 != 0 {
			c.pc -= offset
		} else {
			c.pc += offset
		}
		return 2
	default:
		return c.illegal(op)
	}
	return 1
}

// execRegister handles the two register ALU forms.
func (c *CPU) execRegister(op uint16) int {
	rs, rd := c.regs(op)
	switch (op >> 9) & 0x3F {
	case 0x20: // ADD
		*rd = c.add(*rd, *rs, 0)
	case 0x21: // ADDC
		*rd = c.add(*rd, *rs, c.carry())
	case 0x22: // SUB
		*rd = c.sub(*rd, *rs, 0)
	case 0x23: // SUBB
		*rd = c.sub(*rd, *rs, c.carry())
	case 0x24: // CMP
		c.sub(*rd, *rs, 0)
	case 0x25: // BTST Rs,Rd
		c.setFlagToCondition(FlagZ, !bit.IsSet32(uint(*rs&0x1F), *rd))
		return 2
	case 0x26: // MOVE Rs,Rd
		*rd = *rs
		c.setMove(*rd)
	case 0x27: // MOVE Rs,Rd across files
		dst := c.reg((op ^ 0x10) & 0x1F)
		*dst = *rs
		c.setMove(*dst)
	case 0x28: // AND
		*rd &= *rs
		c.setLogic(*rd)
	case 0x29: // ANDN
		*rd &^= *rs
		c.setLogic(*rd)
	case 0x2A: // OR
		*rd |= *rs
		c.setLogic(*rd)
	case 0x2B: // XOR
		*rd ^= *rs
		c.setLogic(*rd)
	case 0x2C:
		return c.divs(op, *rs, rd)
	case 0x2D:
		return c.divu(op, *rs, rd)
	case 0x2E:
		return c.mpys(op, *rs, rd)
	case 0x2F:
		return c.mpyu(op, *rs, rd)
	case 0x30: // SLA Rs,Rd
		*rd = c.sla(*rd, uint(*rs&0x1F))
	case 0x31: // SLL
		*rd = c.sll(*rd, uint(*rs&0x1F))
	case 0x32: // SRA
		*rd = c.sra(*rd, uint(-*rs&0x1F))
	case 0x33: // SRL
		*rd = c.srl(*rd, uint(-*rs&0x1F))
	case 0x34: // RL
		*rd = c.rl(*rd, uint(*rs&0x1F))
	case 0x35: // LMO
		c.setFlagToCondition(FlagZ, *rs == 0)
		*rd = uint32(bits.LeadingZeros32(*rs)) & 0x1F
	case 0x36: // MODS
		if *rs == 0 {
			c.setFlag(FlagV)
			return 40
		}
		*rd = uint32(int32(*rd) % int32(*rs))
		c.setNZ(*rd)
		c.resetFlag(FlagV)
		return 40
	case 0x37: // MODU
		if *rs == 0 {
			c.setFlag(FlagV)
			return 35
		}
		*rd %= *rs
		c.setFlagToCondition(FlagZ, *rd == 0)
		c.resetFlag(FlagV)
		return 35
	default:
		return c.illegal(op)
	}
	return 1
}

// pair returns the odd register that holds the low half of an even Rd.
func (c *CPU) pair(op uint16) *uint32 {
	return c.reg(op&0x10 | (op+1)&0x0F)
}

func (c *CPU) mpys(op uint16, rs uint32, rd *uint32) int {
	w := c.fieldSize(1)
	p := int64(int32(bit.SignExtend(rs&bit.Mask(w), w))) * int64(int32(*rd))
	if op&1 == 0 {
		*rd = uint32(uint64(p) >> 32)
		*c.pair(op) = uint32(p)
		c.setFlagToCondition(FlagN, p < 0)
		c.setFlagToCondition(FlagZ, p == 0)
	} else {
		*rd = uint32(p)
		c.setNZ(*rd)
	}
	return 20
}

func (c *CPU) mpyu(op uint16, rs uint32, rd *uint32) int {
	p := uint64(rs&bit.Mask(c.fieldSize(1))) * uint64(*rd)
	if op&1 == 0 {
		*rd = uint32(p >> 32)
		*c.pair(op) = uint32(p)
		c.setFlagToCondition(FlagZ, p == 0)
	} else {
		*rd = uint32(p)
		c.setFlagToCondition(FlagZ, *rd == 0)
	}
	return 21
}

// divs divides Rd (or the 64 bit Rd:Rd+1 pair for an even Rd) by Rs. On a
// zero divisor or an overflowing quotient V is set and Rd is untouched.
func (c *CPU) divs(op uint16, rs uint32, rd *uint32) int {
	cycles := 39
	if op&1 == 0 {
		cycles = 40
	}
	divisor := int64(int32(rs))
	if divisor == 0 {
		c.setFlag(FlagV)
		return cycles
	}
	if op&1 == 0 {
		low := c.pair(op)
		dividend := int64(uint64(*rd)<<32 | uint64(*low))
		q, r := dividend/divisor, dividend%divisor
		if q > 0x7FFFFFFF || q < -0x80000000 {
			c.setFlag(FlagV)
			return cycles
		}
		*rd, *low = uint32(q), uint32(r)
	} else {
		q := int64(int32(*rd)) / divisor
		if q > 0x7FFFFFFF {
			c.setFlag(FlagV)
			return cycles
		}
		*rd = uint32(q)
	}
	c.setNZ(*rd)
	c.resetFlag(FlagV)
	return cycles
}

func (c *CPU) divu(op uint16, rs uint32, rd *uint32) int {
	if rs == 0 {
		c.setFlag(FlagV)
		return 37
	}
	if op&1 == 0 {
		low := c.pair(op)
		dividend := uint64(*rd)<<32 | uint64(*low)
		q, r := dividend/uint64(rs), dividend%uint64(rs)
		if q > 0xFFFFFFFF {
			c.setFlag(FlagV)
			return 37
		}
		*rd, *low = uint32(q), uint32(r)
	} else {
		*rd /= rs
	}
	c.setFlagToCondition(FlagZ, *rd == 0)
	c.resetFlag(FlagV)
	return 37
}

func (c *CPU) execJump(op uint16) int {
	cc := (op >> 8) & 0x0F
	switch op & 0xFF {
	case 0x00: // JRcc long
		disp := c.fetchSignedWord()
		if c.condition(cc) {
			c.pc += disp << 4
			return 3
		}
		return 2
	case 0x80: // JAcc
		target := c.fetchLong()
		if c.condition(cc) {
			c.pc = target &^ 0xF
			return 3
		}
		return 4
	default: // JRcc short
		if c.condition(cc) {
			c.pc += uint32(int32(int8(op))) << 4
			return 2
		}
		return 1
	}
}

func (c *CPU) execExtended(op uint16) int {
	switch {
	case op&0xFDE0 == 0xD500: // EXGF
		rd := c.reg(op & 0x1F)
		f := int(op>>9) & 1
		old := c.getField(f)
		c.setField(f, *rd)
		*rd = old
		return 1
	case op&0xFF7F == 0xDF1A:
		return c.block(op)
	}
	return c.illegal(op)
}

func (c *CPU) execXY(op uint16) int {
	rs, rd := c.regs(op)
	switch (op >> 9) & 7 {
	case 0: // ADDXY
		x, y := int16(*rd)+int16(*rs), int16(*rd>>16)+int16(*rs>>16)
		*rd = packXY(x, y)
		c.setXYFlags(x, y)
	case 1: // SUBXY
		x, y := int16(*rd)-int16(*rs), int16(*rd>>16)-int16(*rs>>16)
		*rd = packXY(x, y)
		c.setXYFlags(x, y)
	case 2: // CMPXY
		c.setXYFlags(int16(*rd)-int16(*rs), int16(*rd>>16)-int16(*rs>>16))
		return 3
	case 3, 4:
		return c.block(op)
	case 6: // MOVX
		*rd = *rd&0xFFFF0000 | *rs&0x0000FFFF
	case 7: // MOVY
		*rd = *rd&0x0000FFFF | *rs&0xFFFF0000
	default:
		return c.illegal(op)
	}
	return 1
}

func packXY(x, y int16) uint32 {
	return uint32(uint16(y))<<16 | uint32(uint16(x))
}

// setXYFlags reports a coordinate result: N for X zero, V for X negative,
// Z for Y zero and C for Y negative.
func (c *CPU) setXYFlags(x, y int16) {
	c.setFlagToCondition(FlagN, x == 0)
	c.setFlagToCondition(FlagV, x < 0)
	c.setFlagToCondition(FlagZ, y == 0)
	c.setFlagToCondition(FlagC, y < 0)
}

func (c *CPU) execPixel(op uint16) int {
	rs, rd := c.regs(op)
	switch (op >> 9) & 7 {
	case 0: // PIXT Rs,*Rd.XY
		c.writePixel(c.xyToLinear(*rd, c.convdp), *rs)
		return 4
	case 1: // PIXT *Rs.XY,Rd
		*rd = c.readPixel(c.xyToLinear(*rs, c.convsp))
		return 6
	case 2: // PIXT *Rs.XY,*Rd.XY
		c.writePixel(c.xyToLinear(*rd, c.convdp), c.readPixel(c.xyToLinear(*rs, c.convsp)))
		return 7
	case 3:
		return c.block(op)
	case 4: // PIXT Rs,*Rd
		c.writePixel(*rd, *rs)
		return 2
	case 5: // PIXT *Rs,Rd
		*rd = c.readPixel(*rs)
		return 4
	case 6: // PIXT *Rs,*Rd
		c.writePixel(*rd, c.readPixel(*rs))
		return 4
	default:
		return c.illegal(op)
	}
}

// block executes a graphics block instruction as a no-op.
func (c *CPU) block(op uint16) int {
	c.log.Warn("Graphics instruction executed as no-op", "instruction", blockName(op), "op", hex16(op), "pc", hex32(c.ppc))
	return blockCycles
}

func (c *CPU) fetchSignedWord() uint32 {
	return bit.SignExtend(uint32(c.fetchWord()), 16)
}

func (c *CPU) carry() uint32 {
	if c.isSetFlag(FlagC) {
		return 1
	}
	return 0
}

func (c *CPU) add(a, b, carry uint32) uint32 {
	sum := uint64(a) + uint64(b) + uint64(carry)
	r := uint32(sum)
	c.setNZ(r)
	c.setFlagToCondition(FlagC, sum > 0xFFFFFFFF)
	c.setFlagToCondition(FlagV, (a^r)&(b^r)&0x80000000 != 0)
	return r
}

// sub returns a - b - borrow. C is the borrow out.
func (c *CPU) sub(a, b, borrow uint32) uint32 {
	r := a - b - borrow
	c.setNZ(r)
	c.setFlagToCondition(FlagC, uint64(b)+uint64(borrow) > uint64(a))
	c.setFlagToCondition(FlagV, (a^b)&(a^r)&0x80000000 != 0)
	return r
}

func (c *CPU) setLogic(r uint32) {
	c.setFlagToCondition(FlagZ, r == 0)
}

func (c *CPU) setMove(r uint32) {
	c.setNZ(r)
	c.resetFlag(FlagV)
}

func (c *CPU) sla(v uint32, k uint) uint32 {
	c.resetFlag(FlagC)
	c.resetFlag(FlagV)
	if k != 0 {
		mask := uint32(0xFFFFFFFF) << (31 - k)
		top := v & mask
		c.setFlagToCondition(FlagV, top != 0 && top != mask)
		c.setFlagToCondition(FlagC, bit.IsSet32(32-k, v))
		v <<= k
	}
	c.setNZ(v)
	return v
}

func (c *CPU) sll(v uint32, k uint) uint32 {
	c.resetFlag(FlagC)
	if k != 0 {
		c.setFlagToCondition(FlagC, bit.IsSet32(32-k, v))
		v <<= k
	}
	c.setFlagToCondition(FlagZ, v == 0)
	return v
}

func (c *CPU) sra(v uint32, k uint) uint32 {
	c.resetFlag(FlagC)
	if k != 0 {
		c.setFlagToCondition(FlagC, bit.IsSet32(k-1, v))
		v = uint32(int32(v) >> k)
	}
	c.setNZ(v)
	return v
}

func (c *CPU) srl(v uint32, k uint) uint32 {
	c.resetFlag(FlagC)
	if k != 0 {
		c.setFlagToCondition(FlagC, bit.IsSet32(k-1, v))
		v >>= k
	}
	c.setFlagToCondition(FlagZ, v == 0)
	return v
}

func (c *CPU) rl(v uint32, k uint) uint32 {
	c.resetFlag(FlagC)
	if k != 0 {
		c.setFlagToCondition(FlagC, bit.IsSet32(32-k, v))
		v = bits.RotateLeft32(v, int(k))
	}
	c.setFlagToCondition(FlagZ, v == 0)
	return v
}
