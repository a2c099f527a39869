package machine

import "errors"

var (
	ErrNoSlots       = errors.New("machine: no slots configured")
	ErrNilCore       = errors.New("machine: slot has no core")
	ErrInvalidClock  = errors.New("machine: clock must be positive")
	ErrDuplicateSlot = errors.New("machine: duplicate slot name")
	ErrUnknownSlot   = errors.New("machine: unknown slot")
	ErrArchMismatch  = errors.New("machine: slots run different architectures")
	ErrCorruptState  = errors.New("machine: corrupt saved state")
)
