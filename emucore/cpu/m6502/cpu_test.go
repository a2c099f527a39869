package m6502

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/memory"
)

// newTestCPU loads program at $8000, points the reset vector at it and resets.
func newTestCPU(t *testing.T, v Variant, program ...byte) (*CPU, *memory.RAM) {
	t.Helper()
	mem := memory.New64K()
	mem.Load(0x8000, program)
	if v == DECO16 {
		mem.Load(0xFFF0, []byte{0x80, 0x00})
	} else {
		mem.Load(0xFFFC, []byte{0x00, 0x80})
	}

	c, err := New(Config{Bus: mem, IO: mem, Ack: cpu.IgnoreAck, Variant: v})
	require.NoError(t, err)
	c.Reset()
	return c, mem
}

func TestReset(t *testing.T) {
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			c, _ := newTestCPU(t, v)
			assert.Equal(t, uint32(0x8000), c.PC())
			assert.Equal(t, uint8(0xFF), c.SP())
			assert.True(t, c.Flag(FlagI))
			assert.True(t, c.Flag(FlagT))
		})
	}

	t.Run("decimal flag survives reset on NMOS only", func(t *testing.T) {
		nmos, _ := newTestCPU(t, NMOS6502, 0xF8)
		nmos.Step()
		nmos.Reset()
		assert.True(t, nmos.Flag(FlagD))

		cmos, _ := newTestCPU(t, M65C02, 0xF8)
		cmos.Step()
		cmos.Reset()
		assert.False(t, cmos.Flag(FlagD))
	})
}

func TestNew(t *testing.T) {
	mem := memory.New64K()

	testCases := []struct {
		desc string
		cfg  Config
		want error
	}{
		{desc: "missing bus", cfg: Config{Ack: cpu.IgnoreAck}, want: cpu.ErrMissingBus},
		{desc: "missing ack", cfg: Config{Bus: mem}, want: cpu.ErrMissingAck},
		{desc: "unknown variant", cfg: Config{Bus: mem, Ack: cpu.IgnoreAck, Variant: Variant(42)}, want: cpu.ErrInvalidVariant},
		{desc: "deco16 without io", cfg: Config{Bus: mem, Ack: cpu.IgnoreAck, Variant: DECO16}, want: cpu.ErrMissingIO},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := New(tC.cfg)
			assert.ErrorIs(t, err, tC.want)
		})
	}
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("M65C02")
	require.NoError(t, err)
	assert.Equal(t, M65C02, v)

	v, err = ParseVariant("2a03")
	require.NoError(t, err)
	assert.Equal(t, N2A03, v)

	_, err = ParseVariant("z80")
	assert.ErrorIs(t, err, cpu.ErrInvalidVariant)
}

func TestTiming(t *testing.T) {
	t.Run("page crossing costs a cycle", func(t *testing.T) {
		c, _ := newTestCPU(t, NMOS6502,
			0xA2, 0x01, // LDX #$01
			0xBD, 0xFF, 0x20, // LDA $20FF,X
			0xBD, 0x00, 0x20, // LDA $2000,X
		)
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, 5, c.Step())
		assert.Equal(t, 4, c.Step())
	})

	t.Run("stores always pay for indexing", func(t *testing.T) {
		c, _ := newTestCPU(t, NMOS6502, 0x9D, 0x00, 0x20) // STA $2000,X
		assert.Equal(t, 5, c.Step())
	})

	t.Run("branches", func(t *testing.T) {
		c, _ := newTestCPU(t, NMOS6502,
			0xA2, 0x01, // LDX #$01
			0xF0, 0x02, // BEQ, not taken
			0xD0, 0x02, // BNE, taken
		)
		c.Step()
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint32(0x8008), c.PC())
	})

	t.Run("branch to another page", func(t *testing.T) {
		c, mem := newTestCPU(t, NMOS6502)
		mem.Load(0x80F0, []byte{0xD0, 0x20}) // BNE +$20
		require.NoError(t, c.SetRegister("PC", 0x80F0))
		require.NoError(t, c.SetRegister("P", 0x24))
		assert.Equal(t, 4, c.Step())
		assert.Equal(t, uint32(0x8112), c.PC())
	})
}

func TestAllOpcodesExecute(t *testing.T) {
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			for opcode := 0; opcode < 256; opcode++ {
				c, _ := newTestCPU(t, v, byte(opcode), 0x10, 0x20)
				var cycles int
				assert.NotPanics(t, func() { cycles = c.Step() }, "opcode 0x%02X", opcode)
				assert.Positive(t, cycles, "opcode 0x%02X", opcode)
			}
		})
	}
}

func TestCMOSHasNoUndefinedOpcodes(t *testing.T) {
	for _, v := range []Variant{M65C02, M65SC02} {
		for opcode, e := range tables[v] {
			assert.False(t, e.illegal(), "%v opcode 0x%02X", v, opcode)
		}
	}
	assert.Equal(t, opNOP, tables[M65SC02][0x07].op)
	assert.Equal(t, opRMB, tables[M65C02][0x07].op)
}

func TestDecimalMode(t *testing.T) {
	add := []byte{
		0xF8,       // SED
		0x18,       // CLC
		0xA9, 0x99, // LDA #$99
		0x69, 0x01, // ADC #$01
	}

	t.Run("NMOS flags follow the binary sum", func(t *testing.T) {
		c, _ := newTestCPU(t, NMOS6502, add...)
		c.Step()
		c.Step()
		c.Step()
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, uint8(0x00), c.A())
		assert.True(t, c.Flag(FlagC))
		assert.False(t, c.Flag(FlagZ))
		assert.True(t, c.Flag(FlagN))
	})

	t.Run("CMOS fixes the flags for a cycle", func(t *testing.T) {
		c, _ := newTestCPU(t, M65C02, add...)
		c.Step()
		c.Step()
		c.Step()
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint8(0x00), c.A())
		assert.True(t, c.Flag(FlagC))
		assert.True(t, c.Flag(FlagZ))
		assert.False(t, c.Flag(FlagN))
	})

	t.Run("2A03 has no decimal adder", func(t *testing.T) {
		c, _ := newTestCPU(t, N2A03, add...)
		for i := 0; i < 4; i++ {
			c.Step()
		}
		assert.Equal(t, uint8(0x9A), c.A())
		assert.False(t, c.Flag(FlagC))
	})

	sub := []byte{
		0xF8,       // SED
		0x38,       // SEC
		0xA9, 0x15, // LDA #$15
		0xE9, 0x06, // SBC #$06
	}
	for _, v := range []Variant{NMOS6502, M65C02} {
		t.Run("subtract on "+v.String(), func(t *testing.T) {
			c, _ := newTestCPU(t, v, sub...)
			for i := 0; i < 4; i++ {
				c.Step()
			}
			assert.Equal(t, uint8(0x09), c.A())
			assert.True(t, c.Flag(FlagC))
		})
	}
}

func TestJumpIndirect(t *testing.T) {
	program := []byte{0x6C, 0xFF, 0x10} // JMP ($10FF)

	nmos, mem := newTestCPU(t, NMOS6502, program...)
	mem.Load(0x10FF, []byte{0x34, 0x56})
	mem.Poke(0x1000, 0x12)
	assert.Equal(t, 5, nmos.Step())
	assert.Equal(t, uint32(0x1234), nmos.PC())

	cmos, mem := newTestCPU(t, M65C02, program...)
	mem.Load(0x10FF, []byte{0x34, 0x56})
	mem.Poke(0x1000, 0x12)
	assert.Equal(t, 6, cmos.Step())
	assert.Equal(t, uint32(0x5634), cmos.PC())
}

func TestReadModifyWrite(t *testing.T) {
	program := []byte{0xE6, 0x10} // INC $10

	t.Run("NMOS writes twice", func(t *testing.T) {
		c, mem := newTestCPU(t, NMOS6502, program...)
		mem.Poke(0x10, 0x41)
		mem.ResetStats()
		assert.Equal(t, 5, c.Step())
		assert.Equal(t, uint8(0x42), mem.Peek(0x10))
		assert.Equal(t, uint64(2), mem.Stats().Writes)
		assert.Equal(t, uint64(1), mem.Stats().Reads)
	})

	t.Run("CMOS reads twice", func(t *testing.T) {
		c, mem := newTestCPU(t, M65C02, program...)
		mem.Poke(0x10, 0x41)
		mem.ResetStats()
		c.Step()
		assert.Equal(t, uint8(0x42), mem.Peek(0x10))
		assert.Equal(t, uint64(1), mem.Stats().Writes)
		assert.Equal(t, uint64(2), mem.Stats().Reads)
	})
}

func TestKIL(t *testing.T) {
	var logs bytes.Buffer
	mem := memory.New64K()
	mem.Load(0xFFFC, []byte{0x00, 0x80})
	mem.Poke(0x8000, 0x02)

	c, err := New(Config{
		Bus:     mem,
		Ack:     cpu.IgnoreAck,
		Variant: NMOS6502,
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	c.Reset()

	assert.Equal(t, 100, c.Execute(100))
	assert.True(t, c.Jammed())
	assert.Equal(t, uint32(0x8001), c.PC())
	assert.Contains(t, logs.String(), "KIL")

	assert.Equal(t, 50, c.Execute(50))
	assert.Equal(t, uint32(0x8001), c.PC())

	c.Reset()
	assert.False(t, c.Jammed())
	assert.Equal(t, uint32(0x8000), c.PC())
}

func TestStack(t *testing.T) {
	c, mem := newTestCPU(t, NMOS6502,
		0x20, 0x00, 0x90, // JSR $9000
		0xEA, // NOP
	)
	mem.Poke(0x9000, 0x60) // RTS

	assert.Equal(t, 6, c.Step())
	assert.Equal(t, uint32(0x9000), c.PC())
	assert.Equal(t, uint8(0xFD), c.SP())
	assert.Equal(t, uint8(0x80), mem.Peek(0x01FF))
	assert.Equal(t, uint8(0x02), mem.Peek(0x01FE))

	assert.Equal(t, 6, c.Step())
	assert.Equal(t, uint32(0x8003), c.PC())
	assert.Equal(t, uint8(0xFF), c.SP())
}

func TestBitInstructions(t *testing.T) {
	c, mem := newTestCPU(t, M65C02,
		0x97, 0x20, // SMB1 $20
		0x9F, 0x20, 0x02, // BBS1 $20,+2
		0xEA, 0xEA, // skipped
		0x17, 0x20, // RMB1 $20
	)
	c.Step()
	assert.Equal(t, uint8(0x02), mem.Peek(0x20))

	c.Step()
	assert.Equal(t, uint32(0x8007), c.PC())

	c.Step()
	assert.Equal(t, uint8(0x00), mem.Peek(0x20))
}
