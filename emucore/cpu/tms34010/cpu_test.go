package tms34010

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emucore/emucore/addr"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/memory"
)

const (
	base     uint32 = 0x1000 // bit address of the test program
	stackTop uint32 = 0x40000
)

func words(ws ...uint16) []byte {
	out := make([]byte, 0, 2*len(ws))
	for _, w := range ws {
		out = append(out, byte(w), byte(w>>8))
	}
	return out
}

func putLong(mem *memory.RAM, bitAddress, value uint32) {
	mem.Load(bitAddress>>3, []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)})
}

// newTestCPU loads program at base, points the reset vector at it, resets
// and places the stack at stackTop.
func newTestCPU(t *testing.T, cfg Config, program ...uint16) (*CPU, *memory.RAM) {
	t.Helper()
	mem := memory.New64K()
	mem.Load(base>>3, words(program...))
	putLong(mem, addr.TMS34010Reset, base)

	cfg.Bus = mem
	if cfg.Ack == nil {
		cfg.Ack = cpu.IgnoreAck
	}
	c, err := New(cfg)
	require.NoError(t, err)
	c.Reset()
	require.NoError(t, c.SetRegister("SP", stackTop))
	return c, mem
}

func TestNew(t *testing.T) {
	mem := memory.New64K()

	_, err := New(Config{Ack: cpu.IgnoreAck})
	assert.ErrorIs(t, err, cpu.ErrMissingBus)

	_, err = New(Config{Bus: mem})
	assert.ErrorIs(t, err, cpu.ErrMissingAck)
}

func TestReset(t *testing.T) {
	t.Run("loads the vector and clears state", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{})
		c.writeIO(regPSIZE, 8)
		require.NoError(t, c.SetRegister("A3", 0x1234))
		c.Reset()

		assert.Equal(t, base, c.PC())
		assert.Equal(t, uint32(resetST), c.ST())
		assert.Equal(t, uint32(0), c.SP())
		assert.Equal(t, uint32(0), c.A(3))
		assert.Equal(t, uint16(0), c.IORegister(regPSIZE))
		assert.Equal(t, uint(1), c.pixelSize())
		assert.Equal(t, uint(16), c.fieldSize(0))
		assert.Equal(t, uint(32), c.fieldSize(1))
	})

	t.Run("halt on reset waits for the host", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{HaltOnReset: true}, 0x0300)
		assert.True(t, c.Halted())
		assert.Equal(t, 0, c.Execute(10))

		c.HostWrite(HostControl, 0)
		assert.False(t, c.Halted())
		assert.Equal(t, 1, c.Step())
		assert.Equal(t, base+16, c.PC())
	})
}

type flagCheck struct {
	set, clear []Flag
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		steps   int
		want    map[string]uint32
		flags   flagCheck
	}{
		{
			name:    "ADDK overflows into the sign",
			program: []uint16{0x09E0, 0xFFFF, 0x7FFF, 0x1020},
			steps:   2,
			want:    map[string]uint32{"A0": 0x80000000},
			flags:   flagCheck{set: []Flag{FlagN, FlagV}, clear: []Flag{FlagZ, FlagC}},
		},
		{
			name:    "ADDK carries out",
			program: []uint16{0x09C0, 0xFFFF, 0x1020},
			steps:   2,
			want:    map[string]uint32{"A0": 0},
			flags:   flagCheck{set: []Flag{FlagZ, FlagC}, clear: []Flag{FlagN, FlagV}},
		},
		{
			name:    "SUB borrows",
			program: []uint16{0x1840, 0x1821, 0x4401},
			steps:   3,
			want:    map[string]uint32{"A1": 0xFFFFFFFF},
			flags:   flagCheck{set: []Flag{FlagN, FlagC}, clear: []Flag{FlagZ, FlagV}},
		},
		{
			name:    "CMP equal",
			program: []uint16{0x18A0, 0x18A1, 0x4801},
			steps:   3,
			want:    map[string]uint32{"A0": 5, "A1": 5},
			flags:   flagCheck{set: []Flag{FlagZ}, clear: []Flag{FlagC}},
		},
		{
			name:    "CMPI takes a complemented word",
			program: []uint16{0x18A0, 0x0B40, 0xFFFA},
			steps:   2,
			flags:   flagCheck{set: []Flag{FlagZ}},
		},
		{
			name:    "SUBI IL",
			program: []uint16{0x1940, 0x0D00, 0xFFFC, 0xFFFF},
			steps:   2,
			want:    map[string]uint32{"A0": 7},
		},
		{
			name:    "ANDI takes a complemented long",
			program: []uint16{0x09C0, 0x00FF, 0x0B80, 0xFFF0, 0xFFFF},
			steps:   2,
			want:    map[string]uint32{"A0": 0x0F},
			flags:   flagCheck{clear: []Flag{FlagZ}},
		},
		{
			name:    "NEG",
			program: []uint16{0x1820, 0x03A0},
			steps:   2,
			want:    map[string]uint32{"A0": 0xFFFFFFFF},
			flags:   flagCheck{set: []Flag{FlagN, FlagC}},
		},
		{
			name:    "ABS",
			program: []uint16{0x09C0, 0xFFFB, 0x0380},
			steps:   2,
			want:    map[string]uint32{"A0": 5},
			flags:   flagCheck{clear: []Flag{FlagN, FlagV}},
		},
		{
			name:    "ADDC uses the carry",
			program: []uint16{0x0DE0, 0x1820, 0x1841, 0x4201},
			steps:   4,
			want:    map[string]uint32{"A1": 4},
		},
		{
			name:    "MOVE across files",
			program: []uint16{0x1870, 0x4E11},
			steps:   2,
			want:    map[string]uint32{"B0": 3, "A1": 3},
		},
		{
			name:    "ADDXY",
			program: []uint16{0x09E0, 0x0003, 0x0002, 0x09E1, 0xFFFF, 0x0001, 0xE001},
			steps:   3,
			want:    map[string]uint32{"A1": 0x00030002},
			flags:   flagCheck{clear: []Flag{FlagN, FlagZ, FlagC, FlagV}},
		},
		{
			name:    "SLA overflow",
			program: []uint16{0x09E0, 0x0000, 0x4000, 0x2020},
			steps:   2,
			want:    map[string]uint32{"A0": 0x80000000},
			flags:   flagCheck{set: []Flag{FlagN, FlagV}, clear: []Flag{FlagC}},
		},
		{
			name:    "SRA K is encoded negated",
			program: []uint16{0x09E0, 0x0000, 0x8000, 0x2B80},
			steps:   2,
			want:    map[string]uint32{"A0": 0xF8000000},
			flags:   flagCheck{set: []Flag{FlagN}, clear: []Flag{FlagC}},
		},
		{
			name:    "RL",
			program: []uint16{0x09E0, 0x5678, 0x1234, 0x3080},
			steps:   2,
			want:    map[string]uint32{"A0": 0x23456781},
			flags:   flagCheck{set: []Flag{FlagC}},
		},
		{
			name:    "SRL",
			program: []uint16{0x09C0, 0x1234, 0x2F00},
			steps:   2,
			want:    map[string]uint32{"A0": 0x12},
			flags:   flagCheck{clear: []Flag{FlagC, FlagZ}},
		},
		{
			name:    "SLL by register",
			program: []uint16{0x1881, 0x1820, 0x6220},
			steps:   3,
			want:    map[string]uint32{"A0": 16},
		},
		{
			name:    "LMO",
			program: []uint16{0x09E0, 0x0000, 0x0001, 0x6A01},
			steps:   2,
			want:    map[string]uint32{"A1": 15},
		},
		{
			name:    "BTST K",
			program: []uint16{0x1880, 0x1FA0},
			steps:   2,
			flags:   flagCheck{clear: []Flag{FlagZ}},
		},
		{
			name:    "MPYS into a register pair",
			program: []uint16{0x09C0, 0xFFFD, 0x18E2, 0x5C40},
			steps:   3,
			want:    map[string]uint32{"A0": 0xFFFFFFFF, "A1": 0xFFFFFFEB},
			flags:   flagCheck{set: []Flag{FlagN}},
		},
		{
			name:    "DIVU odd register",
			program: []uint16{0x09C1, 0x0064, 0x18E2, 0x5A41},
			steps:   3,
			want:    map[string]uint32{"A1": 14},
		},
		{
			name:    "DIVS by zero sets V",
			program: []uint16{0x1821, 0x5841},
			steps:   2,
			want:    map[string]uint32{"A1": 1},
			flags:   flagCheck{set: []Flag{FlagV}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCPU(t, Config{}, tt.program...)
			for i := 0; i < tt.steps; i++ {
				c.Step()
			}
			for name, want := range tt.want {
				got, ok := c.Register(name)
				require.True(t, ok, name)
				assert.Equal(t, want, got, name)
			}
			for _, f := range tt.flags.set {
				assert.True(t, c.Flag(f), "flag %08X should be set", uint32(f))
			}
			for _, f := range tt.flags.clear {
				assert.False(t, c.Flag(f), "flag %08X should be clear", uint32(f))
			}
		})
	}
}

func TestJumps(t *testing.T) {
	t.Run("short taken", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC001, 0x1820, 0x1840)
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, base+32, c.PC())
		c.Step()
		assert.Equal(t, uint32(2), c.A(0))
	})

	t.Run("short not taken", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xCA01, 0x1820)
		assert.Equal(t, 1, c.Step())
		assert.Equal(t, base+16, c.PC())
	})

	t.Run("long", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC000, 0x0001, 0x1820, 0x1840)
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, base+48, c.PC())
	})

	t.Run("absolute", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC080, 0x1100, 0x0000)
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint32(0x1100), c.PC())
	})

	t.Run("DSJS loops until zero", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0x1860, 0x3C20)
		c.Step()
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, 3, c.Step())
		assert.Equal(t, uint32(0), c.A(0))
		assert.Equal(t, base+32, c.PC())
	})

	t.Run("DSJNE skips when Z is set", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0x1860, 0x4800, 0x0DC0, 0xFFFE)
		c.Step()
		c.Step() // CMP A0,A0
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, uint32(3), c.A(0))
		assert.Equal(t, base+64, c.PC())
	})
}

func TestCallReturn(t *testing.T) {
	t.Run("CALLA and RETS", func(t *testing.T) {
		c, mem := newTestCPU(t, Config{}, 0x0D5F, 0x1100, 0x0000)
		mem.Load(0x1100>>3, words(0x0960))

		assert.Equal(t, 4, c.Step())
		assert.Equal(t, uint32(0x1100), c.PC())
		assert.Equal(t, stackTop-32, c.SP())
		assert.Equal(t, base+48, c.readLong(c.SP()))

		assert.Equal(t, 7, c.Step())
		assert.Equal(t, base+48, c.PC())
		assert.Equal(t, stackTop, c.SP())
	})

	t.Run("CALL through a register", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0x0920)
		require.NoError(t, c.SetRegister("A0", 0x2008))
		c.Step()
		assert.Equal(t, uint32(0x2000), c.PC())
		assert.Equal(t, base+16, c.readLong(c.SP()))
	})

	t.Run("MMTM and MMFM", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0x098F, 0xC000, 0x09AF, 0x0003)
		require.NoError(t, c.SetRegister("A0", 11))
		require.NoError(t, c.SetRegister("A1", 22))

		assert.Equal(t, 6, c.Step())
		assert.Equal(t, stackTop-64, c.SP())
		require.NoError(t, c.SetRegister("A0", 0))
		require.NoError(t, c.SetRegister("A1", 0))

		c.Step()
		assert.Equal(t, uint32(11), c.A(0))
		assert.Equal(t, uint32(22), c.A(1))
		assert.Equal(t, stackTop, c.SP())
	})

	t.Run("TRAP and RETI", func(t *testing.T) {
		c, mem := newTestCPU(t, Config{}, 0x0905)
		putLong(mem, addr.TMS34010TrapVector(5), 0x5000)
		mem.Load(0x5000>>3, words(0x0940))
		require.NoError(t, c.SetRegister("ST", resetST|uint32(FlagIE)))

		assert.Equal(t, trapCycles, c.Step())
		assert.Equal(t, uint32(0x5000), c.PC())
		assert.False(t, c.Flag(FlagIE))

		assert.Equal(t, 11, c.Step())
		assert.Equal(t, base+16, c.PC())
		assert.True(t, c.Flag(FlagIE))
		assert.Equal(t, stackTop, c.SP())
	})
}

func TestFieldMoves(t *testing.T) {
	c, mem := newTestCPU(t, Config{},
		0x8001, // MOVE A0,*A1,0
		0x8422, // MOVE *A1,A2,0
		0x0570, // SETF 16,1,0
		0x8422, // MOVE *A1,A2,0
		0x9001, // MOVE A0,*A1+,0
		0xA001, // MOVE A0,-*A1,0
		0x8C01, // MOVB A0,*A1
		0x8E22, // MOVB *A1,A2
		0x8201, // MOVE A0,*A1,1
		0x8622, // MOVE *A1,A2,1
	)
	require.NoError(t, c.SetRegister("A0", 0xABCD))
	require.NoError(t, c.SetRegister("A1", 0x20004))

	c.Step()
	assert.Equal(t, []byte{0xD0, 0xBC, 0x0A, 0x00}, []byte{mem.Peek(0x4000), mem.Peek(0x4001), mem.Peek(0x4002), mem.Peek(0x4003)})

	c.Step()
	assert.Equal(t, uint32(0xABCD), c.A(2))
	assert.False(t, c.Flag(FlagN))

	c.Step()
	c.Step()
	assert.Equal(t, uint32(0xFFFFABCD), c.A(2))
	assert.True(t, c.Flag(FlagN))

	c.Step()
	assert.Equal(t, uint32(0x20014), c.A(1))
	c.Step()
	assert.Equal(t, uint32(0x20004), c.A(1))

	c.Step()
	c.Step()
	assert.Equal(t, uint32(0xFFFFFFCD), c.A(2))

	require.NoError(t, c.SetRegister("A0", 0x12345678))
	c.Step()
	c.Step()
	assert.Equal(t, uint32(0x12345678), c.A(2))
	assert.Equal(t, uint32(0x12345678), c.readField(0x20004, 32))
}

func TestPixels(t *testing.T) {
	t.Run("memory mapped PSIZE and PIXT", func(t *testing.T) {
		c, mem := newTestCPU(t, Config{},
			0x09E1, 0x0150, 0xC000, // MOVI >C0000150,A1
			0x1880, // MOVK 4,A0
			0x8001, // MOVE A0,*A1,0
			0xF802, // PIXT A0,*A2
			0xFA43, // PIXT *A2,A3
			0xF002, // PIXT A0,*A2.XY
		)
		require.NoError(t, c.SetRegister("A2", 0x20004))
		c.Step()
		c.Step()
		c.Step()
		assert.Equal(t, uint16(4), c.IORegister(regPSIZE))
		assert.Equal(t, uint(4), c.pixelSize())

		require.NoError(t, c.SetRegister("A0", 0xF))
		assert.Equal(t, 2, c.Step())
		assert.Equal(t, byte(0xF0), mem.Peek(0x4000))

		assert.Equal(t, 4, c.Step())
		assert.Equal(t, uint32(0xF), c.A(3))

		c.writeIO(regCONVDP, 0x17)
		require.NoError(t, c.SetRegister("OFFSET", 0x20000))
		require.NoError(t, c.SetRegister("A2", 0x00020003))
		require.NoError(t, c.SetRegister("A0", 7))
		assert.Equal(t, 4, c.Step())
		assert.Equal(t, byte(0x70), mem.Peek(0x4041))
	})

	t.Run("transparency and raster ops", func(t *testing.T) {
		c, mem := newTestCPU(t, Config{})
		c.writeIO(regPSIZE, 4)
		c.writePixel(0x20004, 0xF)
		require.Equal(t, byte(0xF0), mem.Peek(0x4000))

		c.writeIO(regCONTROL, controlTransparent)
		c.writePixel(0x20004, 0x10)
		assert.Equal(t, byte(0xF0), mem.Peek(0x4000), "zero pixels are transparent")

		c.writeIO(regCONTROL, 10<<10)
		c.writePixel(0x20004, 0x3)
		assert.Equal(t, byte(0xC0), mem.Peek(0x4000))

		c.writeIO(regCONTROL, 10<<10|controlTransparent)
		c.writePixel(0x20004, 0xC)
		assert.Equal(t, byte(0xC0), mem.Peek(0x4000), "transparency applies to the raster op result")
	})
}

func TestRasterOps(t *testing.T) {
	tests := []struct {
		ppop     uint8
		src, dst uint32
		want     uint32
	}{
		{0, 9, 8, 9},
		{1, 0xC, 0xA, 0x8},
		{3, 9, 8, 0},
		{9, 9, 8, 8},
		{10, 0xC, 0xA, 0x6},
		{16, 9, 8, 17},
		{17, 9, 8, 0xF},
		{18, 9, 8, 0xFFFFFFFF},
		{19, 9, 8, 0},
		{19, 3, 8, 5},
		{20, 9, 8, 9},
		{21, 9, 8, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rasterOp(tt.ppop, tt.src, tt.dst, 0xF), "ppop %d", tt.ppop)
	}
}

func TestIllegalOpcode(t *testing.T) {
	var logs bytes.Buffer
	c, mem := newTestCPU(t, Config{Logger: slog.New(slog.NewTextHandler(&logs, nil))}, 0x0000, 0x0F00)
	putLong(mem, addr.TMS34010ILLOP, 0x4000)
	mem.Load(0x4000>>3, words(0x0F00))

	assert.Equal(t, trapCycles, c.Step())
	assert.Equal(t, uint32(0x4000), c.PC())
	assert.Equal(t, stackTop-64, c.SP())
	assert.Equal(t, base+16, c.readLong(stackTop-32))
	assert.Contains(t, logs.String(), "Illegal opcode")

	assert.Equal(t, blockCycles, c.Step())
	assert.Contains(t, logs.String(), "PIXBLT")
}

func TestHalt(t *testing.T) {
	t.Run("HSTCTLH halt stops the slice", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{},
			0x09E1, 0x0100, 0xC000, // MOVI >C0000100,A1
			0x09C0, 0x8000, // MOVI >8000,A0
			0x8001, // MOVE A0,*A1,0
			0x0300, 0x0300, 0x0300, 0x0300, 0x0300, 0x0300, // NOP
			0x0300, 0x0300, 0x0300, 0x0300, 0x0300, 0x0300,
		)
		assert.Equal(t, 100, c.Execute(100))
		assert.True(t, c.Halted())
		assert.Equal(t, base+96, c.PC())
		assert.Equal(t, 0, c.Execute(100))

		c.HostWrite(HostControl, 0)
		assert.False(t, c.Halted())
		assert.Equal(t, 1, c.Step())
		// the halted slice was spent, nothing is owed afterwards
		assert.Equal(t, 10, c.Execute(10))
		assert.Equal(t, base+16*(6+11), c.PC())
	})

	t.Run("halt line", func(t *testing.T) {
		c, _ := newTestCPU(t, Config{}, 0xC0FF) // JRUC to itself
		c.SetInputLine(cpu.LineHalt, cpu.Assert)
		assert.Equal(t, 0, c.Execute(10))
		assert.Equal(t, base, c.PC())
		c.SetInputLine(cpu.LineHalt, cpu.Clear)
		assert.Equal(t, 10, c.Execute(10))
	})
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		program []uint16
		text    string
		length  int
	}{
		{[]uint16{0x4001}, "ADD A0,A1", 16},
		{[]uint16{0x4E11}, "MOVE B0,A1", 16},
		{[]uint16{0x09C0, 0x0005}, "MOVI >5,A0", 32},
		{[]uint16{0x0B40, 0xFFFA}, "CMPI >5,A0", 32},
		{[]uint16{0xC001}, "JRUC 0x00001020", 16},
		{[]uint16{0xCB00, 0xFFFF}, "JRNE 0x00001010", 32},
		{[]uint16{0x0D5F, 0x2000, 0x0000}, "CALLA 0x00002000", 48},
		{[]uint16{0x098F, 0xC000}, "MMTM SP,>C000", 32},
		{[]uint16{0x8422}, "MOVE *A1,A2,0", 16},
		{[]uint16{0xB001, 0x0020}, "MOVE A0,*A1(>20),0", 32},
		{[]uint16{0x1FA0}, "BTST 2,A0", 16},
		{[]uint16{0x2B80}, "SRA 4,A0", 16},
		{[]uint16{0xFC22}, "PIXT *A1,*A2", 16},
		{[]uint16{0x0300}, "NOP", 16},
		{[]uint16{0x0F00}, "PIXBLT B,L", 16},
		{[]uint16{0x0000}, "DW >0000", 16},
	}
	for _, tt := range tests {
		c, _ := newTestCPU(t, Config{}, tt.program...)
		text, length := c.Disassemble(base)
		assert.Equal(t, tt.text, text)
		assert.Equal(t, tt.length, length, tt.text)
	}
}
