package tms34010

import (
	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/bit"
)

// Memory is bit addressed and organised in 16 bit little-endian words. The
// host bus sees byte addresses (bit address >> 3).

func isIOAddress(bitAddress uint32) bool {
	return bitAddress >= addr.TMS34010IOStart && bitAddress <= addr.TMS34010IOEnd
}

func (c *CPU) fetchWord() uint16 {
	b := c.pc >> 3
	lo := c.bus.ReadOpcode(b)
	hi := c.bus.ReadOpcode(b + 1)
	c.pc += 16
	return uint16(hi)<<8 | uint16(lo)
}

// fetchLong reads a 32 bit operand, low word first.
func (c *CPU) fetchLong() uint32 {
	lo := c.fetchWord()
	hi := c.fetchWord()
	return bit.Combine32(hi, lo)
}

func (c *CPU) readWord(bitAddress uint32) uint16 {
	bitAddress &^= 0xF
	if isIOAddress(bitAddress) {
		return c.readIO(ioIndex(bitAddress))
	}
	b := bitAddress >> 3
	return uint16(c.bus.Read(b+1))<<8 | uint16(c.bus.Read(b))
}

func (c *CPU) writeWord(bitAddress uint32, value uint16) {
	bitAddress &^= 0xF
	if isIOAddress(bitAddress) {
		c.writeIO(ioIndex(bitAddress), value)
		return
	}
	b := bitAddress >> 3
	c.bus.Write(b, uint8(value))
	c.bus.Write(b+1, uint8(value>>8))
}

// readField returns width bits starting at bitAddress, zero extended.
// Fields may straddle word boundaries.
func (c *CPU) readField(bitAddress uint32, width uint) uint32 {
	base, shift, words := fieldSpan(bitAddress, width)
	var acc uint64
	for i := uint(0); i < words; i++ {
		acc |= uint64(c.readWord(base+uint32(i)*16)) << (16 * i)
	}
	return uint32(acc>>shift) & bit.Mask(width)
}

// writeField merges the low width bits of value into memory at bitAddress.
func (c *CPU) writeField(bitAddress uint32, width uint, value uint32) {
	base, shift, words := fieldSpan(bitAddress, width)
	mask := uint64(bit.Mask(width)) << shift

	var acc uint64
	fullFirst := shift == 0
	fullLast := (shift+width)%16 == 0
	for i := uint(0); i < words; i++ {
		// Words entirely covered by the field are not read back.
		if (i == 0 && !fullFirst) || (i == words-1 && !fullLast) {
			acc |= uint64(c.readWord(base+uint32(i)*16)) << (16 * i)
		}
	}
	acc = acc&^mask | uint64(value)<<shift&mask
	for i := uint(0); i < words; i++ {
		c.writeWord(base+uint32(i)*16, uint16(acc>>(16*i)))
	}
}

func fieldSpan(bitAddress uint32, width uint) (base uint32, shift, words uint) {
	base = bitAddress &^ 0xF
	shift = uint(bitAddress & 0xF)
	words = (shift + width + 15) / 16
	return base, shift, words
}

func (c *CPU) readLong(bitAddress uint32) uint32 {
	return c.readField(bitAddress, 32)
}

func (c *CPU) writeLong(bitAddress uint32, value uint32) {
	c.writeField(bitAddress, 32, value)
}

// load reads a field using field f's size and extension.
func (c *CPU) load(bitAddress uint32, f int) uint32 {
	width := c.fieldSize(f)
	v := c.readField(bitAddress, width)
	if c.fieldSigned(f) {
		v = bit.SignExtend(v, width)
	}
	return v
}

func (c *CPU) store(bitAddress uint32, f int, value uint32) {
	c.writeField(bitAddress, c.fieldSize(f), value)
}

func (c *CPU) loadByte(bitAddress uint32) uint32 {
	return bit.SignExtend(c.readField(bitAddress, 8), 8)
}

func (c *CPU) storeByte(bitAddress uint32, value uint32) {
	c.writeField(bitAddress, 8, value)
}

// The stack grows down; SP points at the last long pushed.
func (c *CPU) push(value uint32) {
	c.sp -= 32
	c.writeLong(c.sp, value)
}

func (c *CPU) pop() uint32 {
	v := c.readLong(c.sp)
	c.sp += 32
	return v
}

func (c *CPU) pixelSize() uint {
	return 1 << c.pixelShift
}

// readPixel returns the pixel containing bitAddress at the current PSIZE.
func (c *CPU) readPixel(bitAddress uint32) uint32 {
	size := c.pixelSize()
	shift := uint(bitAddress&0xF) &^ (size - 1)
	return uint32(c.readWord(bitAddress)) >> shift & bit.Mask(size)
}

// writePixel applies the raster op and transparency to one pixel.
func (c *CPU) writePixel(bitAddress uint32, value uint32) {
	size := c.pixelSize()
	shift := uint(bitAddress&0xF) &^ (size - 1)
	mask := bit.Mask(size)

	word := uint32(c.readWord(bitAddress))
	old := word >> shift & mask
	v := value & mask
	if c.ppop != 0 {
		v = rasterOp(c.ppop, v, old, mask) & mask
	}
	if c.transparent && v == 0 {
		return
	}
	word = word&^(mask<<shift) | v<<shift
	c.writeWord(bitAddress, uint16(word))
}

// rasterOp combines a source pixel with the destination it replaces.
func rasterOp(ppop uint8, src, dst, limit uint32) uint32 {
	switch ppop {
	case 1:
		return src & dst
	case 2:
		return src &^ dst
	case 3:
		return 0
	case 4:
		return src | ^dst
	case 5:
		return ^(src ^ dst)
	case 6:
		return ^dst
	case 7:
		return ^(src | dst)
	case 8:
		return src | dst
	case 9:
		return dst
	case 10:
		return src ^ dst
	case 11:
		return ^src & dst
	case 12:
		return 0xFFFFFFFF
	case 13:
		return ^src | dst
	case 14:
		return ^(src & dst)
	case 15:
		return ^src
	case 16:
		return src + dst
	case 17:
		return min(src+dst, limit)
	case 18:
		return dst - src
	case 19:
		if dst > src {
			return dst - src
		}
		return 0
	case 20:
		return max(src, dst)
	case 21:
		return min(src, dst)
	default:
		return src
	}
}

// xyToLinear converts a packed Y:X register into a bit address using the
// given pitch and the OFFSET register.
func (c *CPU) xyToLinear(xy uint32, pitch uint32) uint32 {
	x := uint32(int32(int16(xy)))
	y := uint32(int32(int16(xy >> 16)))
	return y*pitch + x<<c.pixelShift + c.b[bOffset]
}
