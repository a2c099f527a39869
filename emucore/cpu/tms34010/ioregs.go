package tms34010

import (
	"fmt"

	"github.com/valerio/go-emucore/emucore/addr"
)

const ioRegisterCount = 32

// IO register indices.
const (
	regHESYNC = iota
	regHEBLNK
	regHSBLNK
	regHTOTAL
	regVESYNC
	regVEBLNK
	regVSBLNK
	regVTOTAL
	regDPYCTL
	regDPYSTRT
	regDPYINT
	regCONTROL
	regHSTDATA
	regHSTADRL
	regHSTADRH
	regHSTCTLL
	regHSTCTLH
	regINTENB
	regINTPEND
	regCONVSP
	regCONVDP
	regPSIZE
	regPMASK
	_
	_
	_
	_
	regDPYTAP
	regHCOUNT
	regVCOUNT
	regDPYADR
	regREFCNT
)

var ioRegisterNames = [ioRegisterCount]string{
	"HESYNC", "HEBLNK", "HSBLNK", "HTOTAL", "VESYNC", "VEBLNK", "VSBLNK", "VTOTAL",
	"DPYCTL", "DPYSTRT", "DPYINT", "CONTROL", "HSTDATA", "HSTADRL", "HSTADRH", "HSTCTLL",
	"HSTCTLH", "INTENB", "INTPEND", "CONVSP", "CONVDP", "PSIZE", "PMASK", "RESERVED23",
	"RESERVED24", "RESERVED25", "RESERVED26", "DPYTAP", "HCOUNT", "VCOUNT", "DPYADR", "REFCNT",
}

// Interrupt bits shared by INTENB and INTPEND.
const (
	intINT1 uint16 = 0x0002
	intINT2 uint16 = 0x0004
	intNMI  uint16 = 0x0100
	intHI   uint16 = 0x0200
	intDI   uint16 = 0x0400
	intWV   uint16 = 0x0800
)

const (
	hstHalt    uint16 = 0x8000
	hstIncR    uint16 = 0x1000
	hstIncW    uint16 = 0x0800
	hstNMIMode uint16 = 0x0200
	hstNMI     uint16 = 0x0100

	hstIntOut uint16 = 0x0080
	hstIntIn  uint16 = 0x0008

	controlTransparent uint16 = 0x0020
)

func ioIndex(bitAddress uint32) int {
	return int((bitAddress-addr.TMS34010IOStart)>>4) & (ioRegisterCount - 1)
}

// IORegisterName returns the mnemonic of IO register index.
func IORegisterName(index int) string {
	if index < 0 || index >= ioRegisterCount {
		return fmt.Sprintf("IO%d", index)
	}
	return ioRegisterNames[index]
}

// IORegister returns the raw value of an IO register.
func (c *CPU) IORegister(index int) uint16 {
	return c.io[index&(ioRegisterCount-1)]
}

func (c *CPU) readIO(index int) uint16 {
	switch index {
	case regREFCNT:
		return uint16(c.cycles/16) & 0xFFFC
	default:
		return c.io[index]
	}
}

// writeIO stores a register written by the CPU itself.
func (c *CPU) writeIO(index int, value uint16) {
	c.storeIO(index, value, false)
}

func (c *CPU) storeIO(index int, value uint16, host bool) {
	old := c.io[index]
	switch index {
	case regHSTCTLH:
		// The halt bit takes effect at the end of the current instruction.
		c.io[index] = value &^ hstNMI
		if value&hstNMI != 0 {
			c.io[regINTPEND] |= intNMI
		}
	case regHSTCTLL:
		c.writeHostControlLow(old, value, host)
	case regINTPEND:
		// Only WV and DI can be cleared and nothing can be set.
		next := old
		if value&intWV == 0 {
			next &^= intWV
		}
		if value&intDI == 0 {
			next &^= intDI
		}
		c.io[index] = next
	default:
		c.io[index] = value
	}
	c.decodeIORegisters()
}

// writeHostControlLow applies the split ownership of HSTCTLL: the CPU
// drives MSGOUT and INTOUT and may clear INTIN; the host drives MSGIN and
// INTIN and may clear INTOUT.
func (c *CPU) writeHostControlLow(old, value uint16, host bool) {
	var next uint16
	if host {
		next = old&0xFFF8 | value&0x0007
		next &= value | ^hstIntOut
		next |= value & hstIntIn
	} else {
		next = old&0xFF8F | value&0x0070
		next |= value & hstIntOut
		next &= value | ^hstIntIn
	}
	c.io[regHSTCTLL] = next

	if old&hstIntOut != next&hstIntOut && c.hostInt != nil {
		c.hostInt(next&hstIntOut != 0)
	}
	switch {
	case old&hstIntIn == 0 && next&hstIntIn != 0:
		c.io[regINTPEND] |= intHI
	case old&hstIntIn != 0 && next&hstIntIn == 0:
		c.io[regINTPEND] &^= intHI
	}
}

// decodeIORegisters refreshes the values cached from CONTROL, PSIZE,
// CONVSP and CONVDP.
func (c *CPU) decodeIORegisters() {
	control := c.io[regCONTROL]
	c.ppop = uint8(control>>10) & 0x1F
	c.transparent = control&controlTransparent != 0

	switch c.io[regPSIZE] {
	case 2:
		c.pixelShift = 1
	case 4:
		c.pixelShift = 2
	case 8:
		c.pixelShift = 3
	case 16:
		c.pixelShift = 4
	default:
		c.pixelShift = 0
	}

	c.convsp = 1 << (^c.io[regCONVSP] & 0x1F)
	c.convdp = 1 << (^c.io[regCONVDP] & 0x1F)
}

// HostRegister selects one of the four host interface ports.
type HostRegister uint8

const (
	HostAddressLow HostRegister = iota
	HostAddressHigh
	HostData
	HostControl
)

func (c *CPU) hostAddress() uint32 {
	return uint32(c.io[regHSTADRH])<<16 | uint32(c.io[regHSTADRL])
}

func (c *CPU) advanceHostAddress() {
	next := c.hostAddress() + 16
	c.io[regHSTADRH] = uint16(next >> 16)
	c.io[regHSTADRL] = uint16(next)
}

// HostRead services a read from the host processor side of the chip.
func (c *CPU) HostRead(reg HostRegister) uint16 {
	switch reg {
	case HostAddressLow:
		return c.io[regHSTADRL]
	case HostAddressHigh:
		return c.io[regHSTADRH]
	case HostData:
		v := c.readWord(c.hostAddress())
		if c.io[regHSTCTLH]&hstIncR != 0 {
			c.advanceHostAddress()
		}
		return v
	case HostControl:
		return c.io[regHSTCTLH]&0xFF00 | c.io[regHSTCTLL]&0x00FF
	default:
		c.log.Warn("Host read of invalid register", "register", reg)
		return 0
	}
}

// HostWrite services a write from the host processor side of the chip.
func (c *CPU) HostWrite(reg HostRegister, value uint16) {
	switch reg {
	case HostAddressLow:
		c.io[regHSTADRL] = value
	case HostAddressHigh:
		c.io[regHSTADRH] = value
	case HostData:
		c.writeWord(c.hostAddress(), value)
		if c.io[regHSTCTLH]&hstIncW != 0 {
			c.advanceHostAddress()
		}
	case HostControl:
		c.storeIO(regHSTCTLH, value&0xFF00, true)
		c.storeIO(regHSTCTLL, value&0x00FF, true)
	default:
		c.log.Warn("Host write of invalid register", "register", reg)
	}
}
