package cpu

import (
	"encoding/binary"
	"fmt"
)

// Arch identifies the instruction set a context belongs to.
type Arch uint8

const (
	ArchM6502 Arch = iota + 1
	ArchCDP1802
	ArchTMS34010
)

func (a Arch) String() string {
	switch a {
	case ArchM6502:
		return "m6502"
	case ArchCDP1802:
		return "cdp1802"
	case ArchTMS34010:
		return "tms34010"
	default:
		return fmt.Sprintf("arch(%d)", uint8(a))
	}
}

const contextMagic uint32 = 0x45434F52 // "ECOR"

// ContextHeader prefixes every saved context. The payload that follows is a
// flat, fixed-size little-endian record owned by the architecture package.
type ContextHeader struct {
	Magic   uint32
	Arch    Arch
	Variant uint8
	Version uint16
	Size    uint32
}

// HeaderSize is the encoded size of a ContextHeader.
var HeaderSize = binary.Size(ContextHeader{})

// ContextSize returns the encoded size of a context with the given payload.
// The payload must be a pointer-free struct of fixed-size fields.
func ContextSize(payload any) int {
	return HeaderSize + binary.Size(payload)
}

// EncodeContext writes header and payload into dst. A nil dst is a no-op.
func EncodeContext(dst []byte, arch Arch, variant uint8, version uint16, payload any) (int, error) {
	if dst == nil {
		return 0, nil
	}

	size := binary.Size(payload)
	if size < 0 {
		return 0, fmt.Errorf("%v context payload is not fixed-size", arch)
	}
	if len(dst) < HeaderSize+size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, HeaderSize+size, len(dst))
	}

	header := ContextHeader{
		Magic:   contextMagic,
		Arch:    arch,
		Variant: variant,
		Version: version,
		Size:    uint32(size),
	}
	n, err := binary.Encode(dst, binary.LittleEndian, header)
	if err != nil {
		return 0, fmt.Errorf("failed to encode context header: %w", err)
	}
	m, err := binary.Encode(dst[n:], binary.LittleEndian, payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %v context: %w", arch, err)
	}
	return n + m, nil
}

// DecodeContext validates the header in src and decodes the payload. It
// reports false when src is empty, which callers treat as a no-op.
func DecodeContext(src []byte, arch Arch, variant uint8, version uint16, payload any) (bool, error) {
	if len(src) == 0 {
		return false, nil
	}

	var header ContextHeader
	if _, err := binary.Decode(src, binary.LittleEndian, &header); err != nil {
		return false, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
	if header.Magic != contextMagic || header.Arch != arch {
		return false, fmt.Errorf("%w: got %v, want %v", ErrContextMismatch, header.Arch, arch)
	}
	if header.Version != version {
		return false, fmt.Errorf("%w: %d (supported: %d)", ErrContextVersion, header.Version, version)
	}
	if header.Variant != variant {
		return false, fmt.Errorf("%w: variant %d saved, core is variant %d", ErrContextMismatch, header.Variant, variant)
	}
	size := binary.Size(payload)
	if int(header.Size) != size || len(src) < HeaderSize+size {
		return false, fmt.Errorf("%w: payload is %d bytes, expected %d", ErrShortBuffer, len(src)-HeaderSize, size)
	}
	if _, err := binary.Decode(src[HeaderSize:], binary.LittleEndian, payload); err != nil {
		return false, fmt.Errorf("failed to decode %v context: %w", arch, err)
	}
	return true, nil
}

// PeekHeader decodes only the header of a saved context.
func PeekHeader(src []byte) (ContextHeader, error) {
	var header ContextHeader
	if _, err := binary.Decode(src, binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
	if header.Magic != contextMagic {
		return header, ErrContextMismatch
	}
	return header, nil
}
