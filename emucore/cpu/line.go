package cpu

import "fmt"

// Line identifies an input pin of a core.
type Line uint8

const (
	LineIRQ Line = iota
	LineNMI
	// LineHalt stops the clock: Execute returns zero while it is asserted.
	LineHalt
	// LineSO is the 6502 set-overflow pin.
	LineSO
	LineDMAIn
	LineDMAOut
	// LineINT2 is the second external interrupt of the TMS34010.
	LineINT2
)

func (l Line) String() string {
	switch l {
	case LineIRQ:
		return "IRQ"
	case LineNMI:
		return "NMI"
	case LineHalt:
		return "HALT"
	case LineSO:
		return "SO"
	case LineDMAIn:
		return "DMAIN"
	case LineDMAOut:
		return "DMAOUT"
	case LineINT2:
		return "INT2"
	default:
		return fmt.Sprintf("LINE%d", uint8(l))
	}
}

// LineState is the level of an input line.
type LineState uint8

const (
	Clear LineState = iota
	Assert
)

func (s LineState) String() string {
	if s == Assert {
		return "asserted"
	}
	return "clear"
}
