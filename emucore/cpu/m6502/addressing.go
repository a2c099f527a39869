package m6502

import "github.com/valerio/go-emucore/emucore/bit"

// resolve is the address step: it fetches the operand bytes and computes the
// effective address, charging the page crossing penalty where the entry asks
// for it.
func (c *CPU) resolve(e entry) {
	switch e.mode {
	case modeImp, modeAcc:
	case modeImm:
		c.imm = c.fetch()
	case modeZpg:
		c.ea = uint16(c.fetch())
	case modeZpx:
		c.ea = uint16(c.fetch() + c.x)
	case modeZpy:
		c.ea = uint16(c.fetch() + c.y)
	case modeAbs:
		c.ea = c.fetch16()
	case modeAbx:
		c.ea = c.indexed(c.fetch16(), c.x, e)
	case modeAby:
		c.ea = c.indexed(c.fetch16(), c.y, e)
	case modeInd:
		ptr := c.fetch16()
		if c.model.cmosDecoder {
			c.ea = c.read16(ptr)
		} else {
			// the high byte is fetched without carrying into the page
			lo := c.read(ptr)
			hi := c.read(bit.SetLow(ptr, bit.Low(ptr)+1))
			c.ea = bit.Combine(hi, lo)
		}
	case modeIdx:
		c.ea = c.readZP16(c.fetch() + c.x)
	case modeIdy:
		c.ea = c.indexed(c.readZP16(c.fetch()), c.y, e)
	case modeZpi:
		c.ea = c.readZP16(c.fetch())
	case modeIax:
		c.ea = c.read16(c.fetch16() + uint16(c.x))
	case modeRel:
		offset := int8(c.fetch())
		c.target = c.pc + uint16(offset)
	case modeZpr:
		c.ea = uint16(c.fetch())
		offset := int8(c.fetch())
		c.target = c.pc + uint16(offset)
	}
}

func (c *CPU) indexed(base uint16, index uint8, e entry) uint16 {
	ea := base + uint16(index)
	if e.penalty() && bit.PageCrossed(base, ea) {
		c.extra++
	}
	return ea
}

// branch moves to the resolved target: one extra cycle when taken, one more
// when the target is on another page.
func (c *CPU) branch(taken bool) {
	if !taken {
		return
	}
	c.extra++
	if bit.PageCrossed(c.pc, c.target) {
		c.extra++
	}
	c.pc = c.target
}

// load reads the operand of the current instruction.
func (c *CPU) load(m mode) uint8 {
	switch m {
	case modeImm:
		return c.imm
	case modeAcc:
		return c.a
	default:
		return c.read(c.ea)
	}
}

// modify performs a read-modify-write on the operand. NMOS parts write the
// unmodified value back before the result; CMOS parts read it again.
func (c *CPU) modify(m mode, f func(uint8) uint8) uint8 {
	if m == modeAcc {
		c.a = f(c.a)
		return c.a
	}
	v := c.read(c.ea)
	if c.model.cmosDecoder {
		c.read(c.ea)
	} else {
		c.write(c.ea, v)
	}
	v = f(v)
	c.write(c.ea, v)
	return v
}
