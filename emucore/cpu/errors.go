package cpu

import "errors"

var (
	ErrMissingBus      = errors.New("cpu: no memory bus configured")
	ErrMissingIO       = errors.New("cpu: no IO bus configured")
	ErrMissingAck      = errors.New("cpu: no interrupt acknowledge callback configured")
	ErrMissingCallback = errors.New("cpu: required callback not configured")
	ErrInvalidVariant  = errors.New("cpu: invalid variant")
	ErrShortBuffer     = errors.New("cpu: context buffer too small")
	ErrContextMismatch = errors.New("cpu: context belongs to a different core")
	ErrContextVersion  = errors.New("cpu: unsupported context version")
	ErrDMAReentry      = errors.New("cpu: DMA request while a DMA transfer is in progress")
	ErrUnknownRegister = errors.New("cpu: unknown register")
)
