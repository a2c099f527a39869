package cdp1802

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/go-emucore/emucore/bit"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// PC is R(P).
func (c *CPU) PC() uint32 {
	return uint32(c.r[c.p])
}

func (c *CPU) R(n int) uint16 { return c.r[n&0x0F] }
func (c *CPU) D() uint8       { return c.d }
func (c *CPU) DF() bool       { return c.df }
func (c *CPU) P() uint8       { return c.p }
func (c *CPU) X() uint8       { return c.x }
func (c *CPU) T() uint8       { return c.t }
func (c *CPU) IE() bool       { return c.ie }
func (c *CPU) Q() bool        { return c.q }

func (c *CPU) Registers() []cpu.Register {
	regs := []cpu.Register{
		{Name: "PC", Width: 16, Value: uint32(c.r[c.p])},
		{Name: "D", Width: 8, Value: uint32(c.d)},
		{Name: "DF", Width: 1, Value: uint32(bit.Bool(c.df))},
		{Name: "P", Width: 4, Value: uint32(c.p)},
		{Name: "X", Width: 4, Value: uint32(c.x)},
		{Name: "T", Width: 8, Value: uint32(c.t)},
		{Name: "IE", Width: 1, Value: uint32(bit.Bool(c.ie))},
		{Name: "Q", Width: 1, Value: uint32(bit.Bool(c.q))},
		{Name: "I", Width: 4, Value: uint32(c.i)},
		{Name: "N", Width: 4, Value: uint32(c.n)},
	}
	for n, v := range c.r {
		regs = append(regs, cpu.Register{Name: fmt.Sprintf("R%d", n), Width: 16, Value: uint32(v)})
	}
	return regs
}

func (c *CPU) Register(name string) (uint32, bool) {
	return cpu.LookupRegister(c.Registers(), strings.ToUpper(name))
}

func (c *CPU) SetRegister(name string, value uint32) error {
	name = strings.ToUpper(name)
	switch name {
	case "PC":
		c.r[c.p] = uint16(value)
	case "D":
		c.d = uint8(value)
	case "DF":
		c.df = value&1 != 0
	case "P":
		c.p = uint8(value) & 0x0F
	case "X":
		c.x = uint8(value) & 0x0F
	case "T":
		c.t = uint8(value)
	case "IE":
		c.ie = value&1 != 0
	case "Q":
		c.setQ(value&1 != 0)
	case "I":
		c.i = uint8(value) & 0x0F
	case "N":
		c.n = uint8(value) & 0x0F
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(name, "R"))
		if !strings.HasPrefix(name, "R") || err != nil || n < 0 || n > 15 {
			return fmt.Errorf("%w: %s", cpu.ErrUnknownRegister, name)
		}
		c.r[n] = uint16(value)
	}
	return nil
}
