package m6502

// adcBinary adds with carry, ignoring the decimal flag.
func (c *CPU) adcBinary(v uint8) {
	sum := uint16(c.a) + uint16(v) + uint16(c.carry())
	c.setFlagToCondition(FlagV, ^(c.a^v)&(c.a^uint8(sum))&0x80 != 0)
	c.setFlagToCondition(FlagC, sum > 0xFF)
	c.a = uint8(sum)
	c.setNZ(c.a)
}

// sbcBinary subtracts with borrow, ignoring the decimal flag.
func (c *CPU) sbcBinary(v uint8) {
	diff := uint16(c.a) - uint16(v) - uint16(1-c.carry())
	c.setFlagToCondition(FlagV, (c.a^v)&(c.a^uint8(diff))&0x80 != 0)
	c.setFlagToCondition(FlagC, diff&0xFF00 == 0)
	c.a = uint8(diff)
	c.setNZ(c.a)
}

// adcNMOS is the NMOS adder. In decimal mode Z reflects the binary sum and N
// and V are taken before the high nibble is adjusted.
func (c *CPU) adcNMOS(v uint8) {
	if !c.isSetFlag(FlagD) {
		c.adcBinary(v)
		return
	}
	a, t := int(c.a), int(v)
	lo := a&0x0F + t&0x0F + int(c.carry())
	hi := a&0xF0 + t&0xF0
	c.setFlagToCondition(FlagZ, (lo+hi)&0xFF == 0)
	if lo > 0x09 {
		hi += 0x10
		lo += 0x06
	}
	c.setFlagToCondition(FlagN, hi&0x80 != 0)
	c.setFlagToCondition(FlagV, ^(a^t)&(a^hi)&0x80 != 0)
	if hi > 0x90 {
		hi += 0x60
	}
	c.setFlagToCondition(FlagC, hi&0xFF00 != 0)
	c.a = uint8(lo&0x0F + hi&0xF0)
}

// sbcNMOS is the NMOS subtractor. In decimal mode all flags come from the
// binary difference.
func (c *CPU) sbcNMOS(v uint8) {
	if !c.isSetFlag(FlagD) {
		c.sbcBinary(v)
		return
	}
	a, t := int(c.a), int(v)
	borrow := int(1 - c.carry())
	sum := a - t - borrow
	lo := a&0x0F - t&0x0F - borrow
	hi := a&0xF0 - t&0xF0
	if lo&0x10 != 0 {
		lo -= 0x06
		hi -= 0x10
	}
	c.setFlagToCondition(FlagV, (a^t)&(a^sum)&0x80 != 0)
	if hi&0x0100 != 0 {
		hi -= 0x60
	}
	c.setFlagToCondition(FlagC, sum&0xFF00 == 0)
	c.setNZ(uint8(sum))
	c.a = uint8(lo&0x0F | hi&0xF0)
}

// adcCMOS corrects the flags in decimal mode at the price of one cycle.
func (c *CPU) adcCMOS(v uint8) {
	if !c.isSetFlag(FlagD) {
		c.adcBinary(v)
		return
	}
	c.extra++
	a, t := int(c.a), int(v)
	lo := a&0x0F + t&0x0F + int(c.carry())
	hi := a&0xF0 + t&0xF0
	if lo > 0x09 {
		hi += 0x10
		lo += 0x06
	}
	c.setFlagToCondition(FlagV, ^(a^t)&(a^hi)&0x80 != 0)
	if hi > 0x90 {
		hi += 0x60
	}
	c.setFlagToCondition(FlagC, hi&0xFF00 != 0)
	c.a = uint8(lo&0x0F + hi&0xF0)
	c.setNZ(c.a)
}

func (c *CPU) sbcCMOS(v uint8) {
	if !c.isSetFlag(FlagD) {
		c.sbcBinary(v)
		return
	}
	c.extra++
	a, t := int(c.a), int(v)
	borrow := int(1 - c.carry())
	sum := a - t - borrow
	lo := a&0x0F - t&0x0F - borrow
	hi := a&0xF0 - t&0xF0
	c.setFlagToCondition(FlagV, (a^t)&(a^sum)&0x80 != 0)
	if lo&0xF0 != 0 {
		lo -= 0x06
	}
	if lo&0x80 != 0 {
		hi -= 0x10
	}
	if hi&0x0F00 != 0 {
		hi -= 0x60
	}
	c.setFlagToCondition(FlagC, sum&0xFF00 == 0)
	c.a = uint8(lo&0x0F + hi&0xF0)
	c.setNZ(c.a)
}

// adc and sbc are the adders used by RRA and ISB, which only exist on NMOS decoders.
func (c *CPU) adc(v uint8) {
	if c.variant == N2A03 {
		c.adcBinary(v)
		return
	}
	c.adcNMOS(v)
}

func (c *CPU) sbc(v uint8) {
	if c.variant == N2A03 {
		c.sbcBinary(v)
		return
	}
	c.sbcNMOS(v)
}

func (c *CPU) compare(reg, v uint8) {
	c.setFlagToCondition(FlagC, reg >= v)
	c.setNZ(reg - v)
}

func (c *CPU) asl(v uint8) uint8 {
	c.setFlagToCondition(FlagC, v&0x80 != 0)
	v <<= 1
	c.setNZ(v)
	return v
}

func (c *CPU) lsr(v uint8) uint8 {
	c.setFlagToCondition(FlagC, v&0x01 != 0)
	v >>= 1
	c.setNZ(v)
	return v
}

func (c *CPU) rol(v uint8) uint8 {
	carry := c.carry()
	c.setFlagToCondition(FlagC, v&0x80 != 0)
	v = v<<1 | carry
	c.setNZ(v)
	return v
}

func (c *CPU) ror(v uint8) uint8 {
	carry := c.carry() << 7
	c.setFlagToCondition(FlagC, v&0x01 != 0)
	v = v>>1 | carry
	c.setNZ(v)
	return v
}

func (c *CPU) inc(v uint8) uint8 {
	v++
	c.setNZ(v)
	return v
}

func (c *CPU) dec(v uint8) uint8 {
	v--
	c.setNZ(v)
	return v
}

// arr is AND followed by a rotate whose flags come from the adder; in decimal
// mode the result is also nibble-corrected.
func (c *CPU) arr(v uint8) {
	t := c.a & v
	if !c.isSetFlag(FlagD) {
		c.a = t>>1 | c.carry()<<7
		c.setNZ(c.a)
		c.setFlagToCondition(FlagC, c.a&0x40 != 0)
		c.setFlagToCondition(FlagV, (c.a&0x40)>>6 != (c.a&0x20)>>5)
		return
	}

	hi := int(t & 0xF0)
	lo := int(t & 0x0F)
	r := t>>1 | c.carry()<<7
	c.setFlagToCondition(FlagN, c.isSetFlag(FlagC))
	c.setFlagToCondition(FlagZ, r == 0)
	c.setFlagToCondition(FlagV, (t^r)&0x40 != 0)
	if lo+lo&0x01 > 0x05 {
		r = r&0xF0 | (r+0x06)&0x0F
	}
	if hi+hi&0x10 > 0x50 {
		c.setFlag(FlagC)
		r += 0x60
	} else {
		c.resetFlag(FlagC)
	}
	c.a = r
}
