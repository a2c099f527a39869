package tms34010

import "github.com/valerio/go-emucore/emucore/bit"

// Flag is a bit of the status register.
type Flag uint32

const (
	FlagN  Flag = 1 << 31
	FlagC  Flag = 1 << 30
	FlagZ  Flag = 1 << 29
	FlagV  Flag = 1 << 28
	FlagP  Flag = 1 << 25
	FlagIE Flag = 1 << 21
)

const (
	resetST = 0x00000010

	fe0Bit = 1 << 5
	fe1Bit = 1 << 11
)

func (c *CPU) setFlag(flag Flag) {
	c.st |= uint32(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.st &^= uint32(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.st&uint32(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) setNZ(v uint32) {
	c.setFlagToCondition(FlagN, v&0x80000000 != 0)
	c.setFlagToCondition(FlagZ, v == 0)
}

// fieldSize returns the width of field f (0 or 1); an FS of 0 means 32.
func (c *CPU) fieldSize(f int) uint {
	fs := uint(bit.Field(c.st, uint(f)*6, 5))
	if fs == 0 {
		return 32
	}
	return fs
}

// fieldSigned reports whether field f loads are sign extended.
func (c *CPU) fieldSigned(f int) bool {
	if f == 0 {
		return c.st&fe0Bit != 0
	}
	return c.st&fe1Bit != 0
}

// setField replaces the FS/FE bits of field f with the 6 bit value fsfe.
func (c *CPU) setField(f int, fsfe uint32) {
	shift := uint(f) * 6
	c.st = c.st&^(0x3F<<shift) | (fsfe&0x3F)<<shift
}

func (c *CPU) getField(f int) uint32 {
	return bit.Field(c.st, uint(f)*6, 6)
}

// condition evaluates the 4 bit condition code of JRcc, JAcc and friends.
func (c *CPU) condition(cc uint16) bool {
	n, cf, z, v := c.isSetFlag(FlagN), c.isSetFlag(FlagC), c.isSetFlag(FlagZ), c.isSetFlag(FlagV)
	switch cc & 0x0F {
	case 0x0:
		return true
	case 0x1:
		return !n && !z
	case 0x2:
		return cf || z
	case 0x3:
		return !cf && !z
	case 0x4:
		return n != v
	case 0x5:
		return n == v
	case 0x6:
		return n != v || z
	case 0x7:
		return n == v && !z
	case 0x8:
		return cf
	case 0x9:
		return !cf
	case 0xA:
		return z
	case 0xB:
		return !z
	case 0xC:
		return v
	case 0xD:
		return !v
	case 0xE:
		return n
	default:
		return !n
	}
}

var conditionNames = [16]string{"UC", "P", "LS", "HI", "LT", "GE", "LE", "GT", "C", "NC", "EQ", "NE", "V", "NV", "N", "NN"}
