package tms34010

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/go-emucore/emucore/cpu"
)

// B file register used by the XY to linear conversion.
const bOffset = 4

var bAliases = [15]string{
	"SADDR", "SPTCH", "DADDR", "DPTCH", "OFFSET", "WSTART", "WEND", "DYDX",
	"COLOR0", "COLOR1", "COUNT", "INC1", "INC2", "PATTRN", "TEMP",
}

func (c *CPU) PC() uint32       { return c.pc }
func (c *CPU) PrevPC() uint32   { return c.ppc }
func (c *CPU) ST() uint32       { return c.st }
func (c *CPU) SP() uint32       { return c.sp }
func (c *CPU) Flag(f Flag) bool { return c.isSetFlag(f) }

// A returns register An; 15 is SP.
func (c *CPU) A(n int) uint32 { return *c.reg(uint16(n) & 0x0F) }

// B returns register Bn; 15 is SP.
func (c *CPU) B(n int) uint32 { return *c.reg(0x10 | uint16(n)&0x0F) }

func (c *CPU) Registers() []cpu.Register {
	regs := []cpu.Register{
		{Name: "PC", Width: 32, Value: c.pc},
		{Name: "ST", Width: 32, Value: c.st},
		{Name: "SP", Width: 32, Value: c.sp},
	}
	for n, v := range c.a {
		regs = append(regs, cpu.Register{Name: fmt.Sprintf("A%d", n), Width: 32, Value: v})
	}
	for n, v := range c.b {
		regs = append(regs, cpu.Register{Name: fmt.Sprintf("B%d", n), Width: 32, Value: v})
	}
	return regs
}

// Register accepts the file names (A0-A15, B0-B15) and the B file aliases.
func (c *CPU) Register(name string) (uint32, bool) {
	p, ok := c.lookup(name)
	if !ok {
		return 0, false
	}
	return *p, true
}

func (c *CPU) SetRegister(name string, value uint32) error {
	p, ok := c.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", cpu.ErrUnknownRegister, name)
	}
	if p == &c.pc {
		value &^= 0xF
	}
	*p = value
	return nil
}

func (c *CPU) lookup(name string) (*uint32, bool) {
	name = strings.ToUpper(name)
	switch name {
	case "PC":
		return &c.pc, true
	case "ST":
		return &c.st, true
	case "SP":
		return &c.sp, true
	}
	for n, alias := range bAliases {
		if name == alias {
			return &c.b[n], true
		}
	}
	if len(name) < 2 || (name[0] != 'A' && name[0] != 'B') {
		return nil, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > 15 {
		return nil, false
	}
	file := uint16(0)
	if name[0] == 'B' {
		file = 0x10
	}
	return c.reg(file | uint16(n)), true
}
