package cdp1802

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/memory"
)

func newTestCPU(t *testing.T, cfg Config, program ...byte) (*CPU, *memory.RAM) {
	t.Helper()
	mem := memory.New64K()
	mem.Load(0, program)

	cfg.Bus, cfg.IO = mem, mem
	if cfg.Ack == nil {
		cfg.Ack = cpu.IgnoreAck
	}
	c, err := New(cfg)
	require.NoError(t, err)
	c.Reset()
	return c, mem
}

func TestNew(t *testing.T) {
	mem := memory.New64K()

	_, err := New(Config{IO: mem, Ack: cpu.IgnoreAck})
	assert.ErrorIs(t, err, cpu.ErrMissingBus)

	_, err = New(Config{Bus: mem, Ack: cpu.IgnoreAck})
	assert.ErrorIs(t, err, cpu.ErrMissingIO)

	_, err = New(Config{Bus: mem, IO: mem})
	assert.ErrorIs(t, err, cpu.ErrMissingAck)
}

func TestReset(t *testing.T) {
	var q []bool
	c, _ := newTestCPU(t, Config{Q: func(level bool) { q = append(q, level) }})

	require.NoError(t, c.SetRegister("R0", 0x1234))
	require.NoError(t, c.SetRegister("X", 5))
	require.NoError(t, c.SetRegister("IE", 0))
	c.Reset()

	assert.Equal(t, uint32(0), c.PC())
	assert.Equal(t, uint8(0), c.X())
	assert.Equal(t, uint8(0), c.P())
	assert.True(t, c.IE())
	assert.False(t, c.Q())
	assert.Equal(t, []bool{false, false}, q)
}

func TestRegisterLoads(t *testing.T) {
	c, _ := newTestCPU(t, Config{},
		0xF8, 0x12, // LDI #$12
		0xA3,       // PLO R3
		0xF8, 0x34, // LDI #$34
		0xB3, // PHI R3
		0x13, // INC R3
		0x93, // GHI R3
	)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 2, c.Step())
	}
	assert.Equal(t, uint16(0x3413), c.R(3))

	c.Step()
	assert.Equal(t, uint8(0x34), c.D())
}

func TestArithmetic(t *testing.T) {
	testCases := []struct {
		desc    string
		program []byte
		d       uint8
		df      bool
	}{
		{desc: "add with carry out", program: []byte{0xF8, 0xF0, 0xFC, 0x20}, d: 0x10, df: true},
		{desc: "add without carry", program: []byte{0xF8, 0x10, 0xFC, 0x20}, d: 0x30, df: false},
		{desc: "subtract memory with borrow", program: []byte{0xF8, 0x05, 0xFF, 0x06}, d: 0xFF, df: false},
		{desc: "subtract D", program: []byte{0xF8, 0x05, 0xFD, 0x06}, d: 0x01, df: true},
		{desc: "shift left", program: []byte{0xF8, 0x81, 0xFE}, d: 0x02, df: true},
		{desc: "shift right", program: []byte{0xF8, 0x81, 0xF6}, d: 0x40, df: true},
		{desc: "ring shift right takes DF", program: []byte{0xF8, 0x81, 0xFE, 0x76}, d: 0x81, df: false},
		{desc: "add with carry in", program: []byte{0xF8, 0xFF, 0xFC, 0x01, 0x7C, 0x00}, d: 0x01, df: false},
		{desc: "subtract with borrow in", program: []byte{0xF8, 0x00, 0xFF, 0x01, 0x7F, 0x00}, d: 0xFE, df: true},
		{desc: "logic", program: []byte{0xF8, 0xF0, 0xF9, 0x0F, 0xFA, 0x3C, 0xFB, 0xFF}, d: 0xC3, df: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU(t, Config{}, tC.program...)
			for c.PC() < uint32(len(tC.program)) {
				c.Step()
			}
			assert.Equal(t, tC.d, c.D())
			assert.Equal(t, tC.df, c.DF())
		})
	}
}

func TestBranches(t *testing.T) {
	t.Run("short branch stays in page", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0x30, 0x40)
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, uint32(0x0040), c.PC())
	})

	t.Run("external flags", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{EF: func(n int) bool { return n == 2 }},
			0x34, 0x40, // B1, not taken
			0x35, 0x40, // B2, taken
		)
		c.Step()
		assert.Equal(t, uint32(0x0002), c.PC())
		c.Step()
		assert.Equal(t, uint32(0x0040), c.PC())
	})

	t.Run("long branch costs three cycles", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC0, 0x12, 0x34)
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint32(0x1234), c.PC())
	})

	t.Run("long skip", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC8, 0x00, 0x00, 0xC4)
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint32(0x0003), c.PC())
		assert.Equal(t, 3, c.Step(), "NOP")
	})

	t.Run("skip on interrupt enable", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xCC)
		c.Step()
		assert.Equal(t, uint32(0x0003), c.PC())
	})
}

func TestIO(t *testing.T) {
	c, mem := newTestCPU(t, Config{},
		0x62, 0xAA, // OUT 2
		0x6B, // INP 3
	)
	mem.SetPort(3, 0x77)

	c.Step()
	assert.Equal(t, byte(0xAA), mem.Port(2))
	assert.Equal(t, uint32(0x0002), c.PC())

	c.Step()
	assert.Equal(t, uint8(0x77), c.D())
	assert.Equal(t, byte(0x77), mem.Peek(0x0003))
}

func TestQ(t *testing.T) {
	var levels []bool
	c, _ := newTestCPU(t, Config{Q: func(level bool) { levels = append(levels, level) }},
		0x7B, // SEQ
		0x7B, // SEQ
		0x7A, // REQ
	)
	c.Step()
	c.Step()
	c.Step()
	assert.Equal(t, []bool{false, true, false}, levels)
}

func TestMark(t *testing.T) {
	c, mem := newTestCPU(t, Config{}, 0x79)
	require.NoError(t, c.SetRegister("X", 5))
	require.NoError(t, c.SetRegister("R2", 0x200))

	c.Step()
	assert.Equal(t, uint8(0x50), c.T())
	assert.Equal(t, byte(0x50), mem.Peek(0x200))
	assert.Equal(t, uint8(0), c.X())
	assert.Equal(t, uint16(0x1FF), c.R(2))
}

func TestUndefinedOpcode(t *testing.T) {
	var logs bytes.Buffer
	c, _ := newTestCPU(t, Config{Logger: slog.New(slog.NewTextHandler(&logs, nil))}, 0x68)

	assert.Equal(t, 2, c.Step())
	assert.Equal(t, uint32(1), c.PC())
	assert.Contains(t, logs.String(), "Undefined opcode")
}

func TestAllOpcodesExecute(t *testing.T) {
	for opcode := 0; opcode < 256; opcode++ {
		c, _ := newTestCPU(t, Config{}, byte(opcode), 0x10, 0x20)
		var cycles int
		assert.NotPanics(t, func() { cycles = c.Step() }, "opcode 0x%02X", opcode)
		assert.Positive(t, cycles, "opcode 0x%02X", opcode)
	}
}

func TestDisassemble(t *testing.T) {
	c, mem := newTestCPU(t, Config{})
	mem.Load(0x100, []byte{0xF8, 0x12, 0xC0, 0x80, 0x00, 0x3A, 0x20, 0x00, 0x67, 0x6C, 0xD3})

	testCases := []struct {
		pc     uint32
		text   string
		length int
	}{
		{0x100, "LDI #$12", 2},
		{0x102, "LBR $8000", 3},
		{0x105, "BNZ $0120", 2},
		{0x107, "IDL", 1},
		{0x108, "OUT 7", 1},
		{0x109, "INP 4", 1},
		{0x10A, "SEP R3", 1},
	}
	for _, tC := range testCases {
		text, length := c.Disassemble(tC.pc)
		assert.Equal(t, tC.text, text)
		assert.Equal(t, tC.length, length)
	}
}

func TestOperandsAreOpcodeFetches(t *testing.T) {
	c, mem := newTestCPU(t, Config{},
		0xF8, 0x12, // LDI #$12
		0x30, 0x05, // BR $05
		0x00,
		0xC0, 0x00, 0x00, // LBR $0000
	)
	mem.ResetStats()

	c.Step()
	c.Step()
	c.Step()

	assert.Equal(t, uint32(0), c.PC())
	stats := mem.Stats()
	assert.Equal(t, uint64(7), stats.OpcodeReads)
	assert.Zero(t, stats.Reads)
}
