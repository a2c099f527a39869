package memory

import (
	"fmt"
	"log/slog"
	"os"
)

// AccessStats counts bus traffic, useful to check that an idle CPU leaves the bus alone.
type AccessStats struct {
	OpcodeReads uint64
	Reads       uint64
	Writes      uint64
	PortReads   uint64
	PortWrites  uint64
}

// Total returns the number of accesses of any kind.
func (s AccessStats) Total() uint64 {
	return s.OpcodeReads + s.Reads + s.Writes + s.PortReads + s.PortWrites
}

// RAM is a flat, mirrored address space plus a small IO port file.
// Addresses wrap at the configured size, matching how an incompletely
// decoded bus aliases on real boards.
type RAM struct {
	memory []byte
	mask   uint32
	ports  [256]byte

	// OnOut, if set, observes every port write.
	OnOut func(port uint32, value byte)
	// OnIn, if set, supplies port reads instead of the port file.
	OnIn func(port uint32) byte

	stats AccessStats
}

// New creates a RAM of the given size, which must be a power of two.
func New(size int) *RAM {
	if size <= 0 || size&(size-1) != 0 {
		panic(fmt.Sprintf("memory size must be a power of two, got %d", size))
	}
	return &RAM{
		memory: make([]byte, size),
		mask:   uint32(size - 1),
	}
}

// New64K returns the address space of an 8 bit CPU.
func New64K() *RAM {
	return New(0x10000)
}

func (m *RAM) ReadOpcode(address uint32) byte {
	m.stats.OpcodeReads++
	return m.memory[address&m.mask]
}

func (m *RAM) Read(address uint32) byte {
	m.stats.Reads++
	return m.memory[address&m.mask]
}

func (m *RAM) Write(address uint32, value byte) {
	m.stats.Writes++
	m.memory[address&m.mask] = value
}

func (m *RAM) In(port uint32) byte {
	m.stats.PortReads++
	if m.OnIn != nil {
		return m.OnIn(port)
	}
	return m.ports[port&0xFF]
}

func (m *RAM) Out(port uint32, value byte) {
	m.stats.PortWrites++
	m.ports[port&0xFF] = value
	if m.OnOut != nil {
		m.OnOut(port, value)
	}
}

// Peek reads without being counted, for debuggers and tests.
func (m *RAM) Peek(address uint32) byte {
	return m.memory[address&m.mask]
}

// Poke writes without being counted.
func (m *RAM) Poke(address uint32, value byte) {
	m.memory[address&m.mask] = value
}

// Port returns the last value written to a port.
func (m *RAM) Port(port uint32) byte {
	return m.ports[port&0xFF]
}

// SetPort presets the value returned by In for a port.
func (m *RAM) SetPort(port uint32, value byte) {
	m.ports[port&0xFF] = value
}

// Load copies data into memory starting at address, wrapping at the end.
func (m *RAM) Load(address uint32, data []byte) {
	for i, b := range data {
		m.memory[(address+uint32(i))&m.mask] = b
	}
}

// LoadFile reads an image from disk and places it at address.
func (m *RAM) LoadFile(path string, address uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if len(data) > len(m.memory) {
		return fmt.Errorf("image %s is %d bytes, larger than the %d byte address space", path, len(data), len(m.memory))
	}
	m.Load(address, data)
	slog.Debug("Loaded image", "path", path, "addr", fmt.Sprintf("0x%X", address), "size", len(data))
	return nil
}

// Size returns the size of the address space in bytes.
func (m *RAM) Size() int {
	return len(m.memory)
}

// Stats returns the access counters.
func (m *RAM) Stats() AccessStats {
	return m.stats
}

// ResetStats zeroes the access counters.
func (m *RAM) ResetStats() {
	m.stats = AccessStats{}
}
