package tms34010

// execMove handles the MOVE and MOVB memory forms. Bit 9 selects field 0
// or 1 for MOVE and the direction for the MOVB register forms.
func (c *CPU) execMove(op uint16) int {
	rs, rd := c.regs(op)
	f := int(op>>9) & 1
	width := uint32(c.fieldSize(f))

	switch (op >> 10) & 0x0F {
	case 0x0: // MOVE Rs,*Rd
		c.store(*rd, f, *rs)
		return 1
	case 0x1: // MOVE *Rs,Rd
		*rd = c.load(*rs, f)
		c.setMove(*rd)
		return 3
	case 0x2: // MOVE *Rs,*Rd
		c.store(*rd, f, c.load(*rs, f))
		return 4
	case 0x3:
		if f == 0 { // MOVB Rs,*Rd
			c.storeByte(*rd, *rs)
			return 1
		}
		// MOVB *Rs,Rd
		*rd = c.loadByte(*rs)
		c.setMove(*rd)
		return 3
	case 0x4: // MOVE Rs,*Rd+
		c.store(*rd, f, *rs)
		*rd += width
		return 1
	case 0x5: // MOVE *Rs+,Rd
		v := c.load(*rs, f)
		*rs += width
		*rd = v
		c.setMove(v)
		return 3
	case 0x6: // MOVE *Rs+,*Rd+
		v := c.load(*rs, f)
		*rs += width
		c.store(*rd, f, v)
		*rd += width
		return 4
	case 0x7:
		if f == 0 { // MOVB *Rs,*Rd
			c.storeByte(*rd, c.readField(*rs, 8))
			return 3
		}
	case 0x8: // MOVE Rs,-*Rd
		*rd -= width
		c.store(*rd, f, *rs)
		return 2
	case 0x9: // MOVE -*Rs,Rd
		*rs -= width
		v := c.load(*rs, f)
		*rd = v
		c.setMove(v)
		return 4
	case 0xA: // MOVE -*Rs,-*Rd
		*rs -= width
		v := c.load(*rs, f)
		*rd -= width
		c.store(*rd, f, v)
		return 4
	case 0xB:
		disp := c.fetchSignedWord()
		if f == 0 { // MOVB Rs,*Rd(disp)
			c.storeByte(*rd+disp, *rs)
			return 3
		}
		// MOVB *Rs(disp),Rd
		*rd = c.loadByte(*rs + disp)
		c.setMove(*rd)
		return 5
	case 0xC: // MOVE Rs,*Rd(disp)
		disp := c.fetchSignedWord()
		c.store(*rd+disp, f, *rs)
		return 3
	case 0xD: // MOVE *Rs(disp),Rd
		disp := c.fetchSignedWord()
		*rd = c.load(*rs+disp, f)
		c.setMove(*rd)
		return 5
	case 0xE: // MOVE *Rs(disp),*Rd(disp)
		src := *rs + c.fetchSignedWord()
		dst := *rd + c.fetchSignedWord()
		c.store(dst, f, c.load(src, f))
		return 5
	case 0xF:
		if f == 0 { // MOVB *Rs(disp),*Rd(disp)
			src := *rs + c.fetchSignedWord()
			dst := *rd + c.fetchSignedWord()
			c.storeByte(dst, c.readField(src, 8))
			return 5
		}
	}
	return c.illegal(op)
}
