package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Combine32 joins two 16 bit words, high word first.
func Combine32(high, low uint16) uint32 {
	return (uint32(high) << 16) | uint32(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// SetLow replaces the low byte of a 16 bit value.
func SetLow(value uint16, low uint8) uint16 {
	return value&0xFF00 | uint16(low)
}

// SetHigh replaces the high byte of a 16 bit value.
func SetHigh(value uint16, high uint8) uint16 {
	return value&0x00FF | uint16(high)<<8
}

// IsSet will check if the bit at the specified index is Set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// IsSet32 is IsSet for 32 bit words.
func IsSet32(index uint, value uint32) bool {
	return (value>>index)&1 == 1
}

// Clear will return the passed byte with the bit at the specified index Set to 0.
func Clear(index, byte uint8) uint8 {
	return byte & ^(1 << index)
}

// Set will return the passed byte with the bit at the specified index Set to 1.
func Set(index, byte uint8) uint8 {
	return byte | (1 << index)
}

// PageCrossed reports whether base and target live on different 256 byte pages.
func PageCrossed(base, target uint16) bool {
	return base&0xFF00 != target&0xFF00
}

// Mask returns a mask with the low width bits set. A width of 32 or more yields all ones.
func Mask(width uint) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << width) - 1
}

// SignExtend treats the low width bits of value as a two's complement number.
func SignExtend(value uint32, width uint) uint32 {
	if width == 0 || width >= 32 {
		return value
	}
	shift := 32 - width
	return uint32(int32(value<<shift) >> shift)
}

// ExtractBits extracts bits from highBit to lowBit (inclusive)
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	shift := lowBit
	width := highBit - lowBit + 1
	mask := uint8((1 << width) - 1)
	return (value >> shift) & mask
}

// Field extracts width bits of value starting at bit lowBit.
func Field(value uint32, lowBit, width uint) uint32 {
	return (value >> lowBit) & Mask(width)
}

// Bool converts a condition into 0 or 1.
func Bool(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}
