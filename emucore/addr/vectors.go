package addr

// 6502 family vectors (low byte first).
const (
	M6502NMI   uint16 = 0xFFFA
	M6502Reset uint16 = 0xFFFC
	M6502IRQ   uint16 = 0xFFFE

	// StackPage is the fixed high byte of the 6502 stack pointer.
	StackPage uint16 = 0x0100
)

// DECO16 vectors, stored high byte first.
const (
	DECO16Reset uint16 = 0xFFF0
	DECO16IRQ   uint16 = 0xFFF2
	DECO16NMI   uint16 = 0xFFF4
)

// 6510 on-chip port.
const (
	M6510DDR  uint16 = 0x0000
	M6510Port uint16 = 0x0001
)

// TMS34010 vectors. These are bit addresses of 32 bit vector words.
const (
	TMS34010Reset uint32 = 0xFFFFFFE0
	TMS34010INT1  uint32 = 0xFFFFFFC0
	TMS34010INT2  uint32 = 0xFFFFFFA0
	TMS34010NMI   uint32 = 0xFFFFFEE0
	TMS34010HI    uint32 = 0xFFFFFEC0
	TMS34010DI    uint32 = 0xFFFFFEA0
	TMS34010WV    uint32 = 0xFFFFFE80
	TMS34010ILLOP uint32 = 0xFFFFFC20
)

// TMS34010TrapVector returns the vector address of TRAP n.
func TMS34010TrapVector(n uint8) uint32 {
	return TMS34010Reset - uint32(n&0x1F)*0x20
}

// TMS34010 IO register window, in bit addresses.
const (
	TMS34010IOStart uint32 = 0xC0000000
	TMS34010IOEnd   uint32 = 0xC00001FF
)

// CDP1802 fixed register assignments used by DMA and interrupts.
const (
	CDP1802DMAPointer  = 0
	CDP1802IntPC       = 1
	CDP1802IntStack    = 2
	CDP1802IOPortCount = 7
	CDP1802FlagCount   = 4
)
