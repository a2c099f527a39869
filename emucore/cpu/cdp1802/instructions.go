package cdp1802

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/bit"
)

// exec runs the execute cycle of the fetched instruction. I and N hold the
// high and low nibbles of the opcode.
func (c *CPU) exec() {
	n := c.n
	switch c.i {
	case 0x0:
		if n == 0 {
			c.idle = true // IDL
		} else {
			c.d = c.read(c.r[n]) // LDN
		}
	case 0x1:
		c.r[n]++ // INC
	case 0x2:
		c.r[n]-- // DEC
	case 0x3:
		c.shortBranch(c.condition(n))
	case 0x4:
		c.d = c.read(c.r[n]) // LDA
		c.r[n]++
	case 0x5:
		c.write(c.r[n], c.d) // STR
	case 0x6:
		c.execIO(n)
	case 0x7:
		c.execControl(n)
	case 0x8:
		c.d = bit.Low(c.r[n]) // GLO
	case 0x9:
		c.d = bit.High(c.r[n]) // GHI
	case 0xA:
		c.r[n] = bit.SetLow(c.r[n], c.d) // PLO
	case 0xB:
		c.r[n] = bit.SetHigh(c.r[n], c.d) // PHI
	case 0xC:
		c.execLong(n)
	case 0xD:
		c.p = n // SEP
	case 0xE:
		c.x = n // SEX
	case 0xF:
		c.execALU(n)
	}
}

// condition evaluates the test of a short or long branch. Bit 3 of N inverts it.
func (c *CPU) condition(n uint8) bool {
	var cond bool
	switch n & 0x07 {
	case 0:
		cond = true
	case 1:
		cond = c.q
	case 2:
		cond = c.d == 0
	case 3:
		cond = c.df
	default:
		cond = c.flag(int(n&0x07) - 3)
	}
	if n&0x08 != 0 {
		return !cond
	}
	return cond
}

func (c *CPU) shortBranch(taken bool) {
	if taken {
		c.r[c.p] = bit.SetLow(c.r[c.p], c.fetch(c.r[c.p]))
	} else {
		c.r[c.p]++
	}
}

func (c *CPU) execIO(n uint8) {
	switch {
	case n == 0: // IRX
		c.r[c.x]++
	case n < 8: // OUT
		c.io.Out(uint32(n), c.read(c.r[c.x]))
		c.r[c.x]++
	case n == 8:
		c.log.Warn("Undefined opcode executed as NOP", "pc", fmt.Sprintf("0x%04X", c.ppc), "opcode", fmt.Sprintf("0x%02X", c.opcode))
	default: // INP
		c.d = c.io.In(uint32(n & 0x07))
		c.write(c.r[c.x], c.d)
	}
}

func (c *CPU) execControl(n uint8) {
	switch n {
	case 0x0, 0x1: // RET, DIS
		v := c.read(c.r[c.x])
		c.r[c.x]++
		c.x, c.p = v>>4, v&0x0F
		c.ie = n == 0x0
	case 0x2: // LDXA
		c.d = c.read(c.r[c.x])
		c.r[c.x]++
	case 0x3: // STXD
		c.write(c.r[c.x], c.d)
		c.r[c.x]--
	case 0x4: // ADC
		c.add(c.read(c.r[c.x]), c.df)
	case 0x5: // SDB
		c.subtract(c.read(c.r[c.x]), c.d, c.df)
	case 0x6: // SHRC
		carry := c.df
		c.df = c.d&0x01 != 0
		c.d = c.d>>1 | bit.Bool(carry)<<7
	case 0x7: // SMB
		c.subtract(c.d, c.read(c.r[c.x]), c.df)
	case 0x8: // SAV
		c.write(c.r[c.x], c.t)
	case 0x9: // MARK
		c.t = c.x<<4 | c.p
		c.write(c.r[2], c.t)
		c.x = c.p
		c.r[2]--
	case 0xA: // REQ
		c.setQ(false)
	case 0xB: // SEQ
		c.setQ(true)
	case 0xC: // ADCI
		c.add(c.immediate(), c.df)
	case 0xD: // SDBI
		c.subtract(c.immediate(), c.d, c.df)
	case 0xE: // SHLC
		carry := c.df
		c.df = c.d&0x80 != 0
		c.d = c.d<<1 | bit.Bool(carry)
	case 0xF: // SMBI
		c.subtract(c.d, c.immediate(), c.df)
	}
}

// execLong covers the long branches and skips, which take an extra cycle.
// N = 4 is NOP, N = 8 is LSKP and N = 12 is LSIE.
func (c *CPU) execLong(n uint8) {
	c.extra = longCycles - executeCycles

	if n&0x04 == 0 {
		if c.condition(n) {
			hi := c.fetch(c.r[c.p])
			lo := c.fetch(c.r[c.p] + 1)
			c.r[c.p] = bit.Combine(hi, lo)
		} else {
			c.r[c.p] += 2
		}
		return
	}

	var skip bool
	switch n {
	case 0x4: // NOP
		return
	case 0x5:
		skip = !c.q
	case 0x6:
		skip = c.d != 0
	case 0x7:
		skip = !c.df
	case 0xC:
		skip = c.ie
	case 0xD:
		skip = c.q
	case 0xE:
		skip = c.d == 0
	case 0xF:
		skip = c.df
	}
	if skip {
		c.r[c.p] += 2
	}
}

func (c *CPU) execALU(n uint8) {
	var operand uint8
	switch {
	case n == 0x6 || n == 0xE:
	case n < 0x8:
		operand = c.read(c.r[c.x])
	default:
		operand = c.immediate()
	}

	switch n & 0x07 {
	case 0x0: // LDX, LDI
		c.d = operand
	case 0x1: // OR, ORI
		c.d |= operand
	case 0x2: // AND, ANI
		c.d &= operand
	case 0x3: // XOR, XRI
		c.d ^= operand
	case 0x4: // ADD, ADI
		c.add(operand, false)
	case 0x5: // SD, SDI
		c.subtract(operand, c.d, true)
	case 0x6:
		if n == 0x6 { // SHR
			c.df = c.d&0x01 != 0
			c.d >>= 1
		} else { // SHL
			c.df = c.d&0x80 != 0
			c.d <<= 1
		}
	case 0x7: // SM, SMI
		c.subtract(c.d, operand, true)
	}
}

// add sets D to D + v + carry and DF to the carry out.
func (c *CPU) add(v uint8, carry bool) {
	sum := uint16(c.d) + uint16(v) + uint16(bit.Bool(carry))
	c.df = sum > 0xFF
	c.d = uint8(sum)
}

// subtract sets D to a - b, borrowing when noBorrow is false. DF is set when
// no borrow occurs.
func (c *CPU) subtract(a, b uint8, noBorrow bool) {
	diff := uint16(a) - uint16(b) - uint16(1-bit.Bool(noBorrow))
	c.df = diff&0xFF00 == 0
	c.d = uint8(diff)
}
