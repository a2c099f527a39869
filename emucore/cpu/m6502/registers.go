package m6502

import (
	"fmt"
	"strings"

	"github.com/valerio/go-emucore/emucore/cpu"
)

func (c *CPU) PC() uint32 {
	return uint32(c.pc)
}

// PrevPC is the address of the instruction that ran last.
func (c *CPU) PrevPC() uint16 {
	return c.ppc
}

func (c *CPU) A() uint8  { return c.a }
func (c *CPU) X() uint8  { return c.x }
func (c *CPU) Y() uint8  { return c.y }
func (c *CPU) P() uint8  { return c.p }
func (c *CPU) SP() uint8 { return c.sp }

// Flag reports whether flag is set in P.
func (c *CPU) Flag(flag Flag) bool {
	return c.isSetFlag(flag)
}

// Registers returns the programmer-visible registers, in display order.
func (c *CPU) Registers() []cpu.Register {
	regs := []cpu.Register{
		{Name: "PC", Width: 16, Value: uint32(c.pc)},
		{Name: "A", Width: 8, Value: uint32(c.a)},
		{Name: "X", Width: 8, Value: uint32(c.x)},
		{Name: "Y", Width: 8, Value: uint32(c.y)},
		{Name: "P", Width: 8, Value: uint32(c.p)},
		{Name: "SP", Width: 8, Value: uint32(c.sp)},
	}
	if c.model.port {
		regs = append(regs,
			cpu.Register{Name: "DDR", Width: 8, Value: uint32(c.ddr)},
			cpu.Register{Name: "PORT", Width: 8, Value: uint32(c.port)})
	}
	return regs
}

func (c *CPU) Register(name string) (uint32, bool) {
	return cpu.LookupRegister(c.Registers(), strings.ToUpper(name))
}

// SetRegister writes a register by name; values are truncated to its width.
func (c *CPU) SetRegister(name string, value uint32) error {
	switch strings.ToUpper(name) {
	case "PC":
		c.pc = uint16(value)
	case "A":
		c.a = uint8(value)
	case "X":
		c.x = uint8(value)
	case "Y":
		c.y = uint8(value)
	case "P":
		c.p = uint8(value) | uint8(FlagT|FlagB)
	case "SP":
		c.sp = uint8(value)
	case "DDR", "PORT":
		if !c.model.port {
			return fmt.Errorf("%w: %s on %v", cpu.ErrUnknownRegister, name, c.variant)
		}
		if strings.EqualFold(name, "DDR") {
			c.ddr = uint8(value)
		} else {
			c.port = uint8(value)
		}
		c.syncPort()
	default:
		return fmt.Errorf("%w: %s", cpu.ErrUnknownRegister, name)
	}
	return nil
}
