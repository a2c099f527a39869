package m6502

import (
	"fmt"
	"strings"

	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
)

// Variant selects one of the parts sharing this interpreter.
type Variant uint8

const (
	NMOS6502 Variant = iota
	M65C02
	M65SC02
	N2A03
	M6510
	DECO16
)

var variantNames = map[Variant]string{
	NMOS6502: "6502",
	M65C02:   "65c02",
	M65SC02:  "65sc02",
	N2A03:    "2a03",
	M6510:    "6510",
	DECO16:   "deco16",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// ParseVariant maps a part name such as "65c02" to its Variant.
func ParseVariant(name string) (Variant, error) {
	name = strings.TrimPrefix(strings.ToLower(name), "m")
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", cpu.ErrInvalidVariant, name)
}

// Variants lists every supported part.
func Variants() []Variant {
	return []Variant{NMOS6502, M65C02, M65SC02, N2A03, M6510, DECO16}
}

// model describes what a variant does outside the opcode table.
type model struct {
	cmosDecoder   bool // fixed JMP (ind), RMW re-reads instead of writing twice
	clearsDecimal bool // D cleared on reset and interrupts
	port          bool // on-chip IO port at $0000/$0001
	bigVectors    bool // vectors stored high byte first
	resetVec      uint16
	irqVec        uint16
	nmiVec        uint16
}

var models = map[Variant]model{
	NMOS6502: {resetVec: addr.M6502Reset, irqVec: addr.M6502IRQ, nmiVec: addr.M6502NMI},
	M65C02:   {cmosDecoder: true, clearsDecimal: true, resetVec: addr.M6502Reset, irqVec: addr.M6502IRQ, nmiVec: addr.M6502NMI},
	M65SC02:  {cmosDecoder: true, clearsDecimal: true, resetVec: addr.M6502Reset, irqVec: addr.M6502IRQ, nmiVec: addr.M6502NMI},
	N2A03:    {resetVec: addr.M6502Reset, irqVec: addr.M6502IRQ, nmiVec: addr.M6502NMI},
	M6510:    {port: true, resetVec: addr.M6502Reset, irqVec: addr.M6502IRQ, nmiVec: addr.M6502NMI},
	DECO16:   {cmosDecoder: true, bigVectors: true, resetVec: addr.DECO16Reset, irqVec: addr.DECO16IRQ, nmiVec: addr.DECO16NMI},
}
