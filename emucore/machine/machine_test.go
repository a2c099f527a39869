package machine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/cpu/cdp1802"
	"github.com/valerio/go-emucore/emucore/cpu/m6502"
	"github.com/valerio/go-emucore/emucore/memory"
)

// fakeCore spends exactly what it is asked for, plus a fixed overshoot.
type fakeCore struct {
	name      string
	overshoot int
	halted    bool
	trace     *[]string
	total     int
}

func (f *fakeCore) Arch() cpu.Arch { return cpu.ArchM6502 }
func (f *fakeCore) Reset() { f.total = 0 }

func (f *fakeCore) Execute(cycles int) int {
	if f.trace != nil {
		*f.trace = append(*f.trace, fmt.Sprintf("%s:%d", f.name, cycles))
	}
	if f.halted {
		return 0
	}
	f.total += cycles + f.overshoot
	return cycles + f.overshoot
}

func (f *fakeCore) Step() int {
	return f.Execute(1)
}

func (f *fakeCore) SetInputLine(line cpu.Line, state cpu.LineState) {
	if line == cpu.LineHalt {
		f.halted = state == cpu.Assert
	}
}

func (f *fakeCore) ContextSize() int { return 0 }
func (f *fakeCore) GetContext(dst []byte) (int, error) { return 0, nil }
func (f *fakeCore) SetContext(src []byte) error { return nil }
func (f *fakeCore) PC() uint32 { return 0 }
func (f *fakeCore) Registers() []cpu.Register { return nil }
func (f *fakeCore) Register(string) (uint32, bool) { return 0, false }
func (f *fakeCore) SetRegister(string, uint32) error { return cpu.ErrUnknownRegister }
func (f *fakeCore) Disassemble(uint32) (string, int) { return "", 1 }

func TestNew(t *testing.T) {
	core := &fakeCore{}

	testCases := []struct {
		desc  string
		slots []Slot
		want  error
	}{
		{desc: "no slots", want: ErrNoSlots},
		{desc: "nil core", slots: []Slot{{Name: "main", ClockHz: 1}}, want: ErrNilCore},
		{desc: "zero clock", slots: []Slot{{Name: "main", Core: core}}, want: ErrInvalidClock},
		{
			desc:  "duplicate name",
			slots: []Slot{{Name: "main", Core: core, ClockHz: 1}, {Name: "main", Core: core, ClockHz: 2}},
			want:  ErrDuplicateSlot,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := New(tC.slots...)
			assert.ErrorIs(t, err, tC.want)
		})
	}

	m, err := New(Slot{Name: "main", Core: core, ClockHz: 1_000_000})
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, m.Names())

	_, err = m.Core("sound")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestRunSlice(t *testing.T) {
	t.Run("cores run in slot order at their own clock", func(t *testing.T) {
		var trace []string
		m, err := New(
			Slot{Name: "main", Core: &fakeCore{name: "main", trace: &trace}, ClockHz: 1_000_000},
			Slot{Name: "sub", Core: &fakeCore{name: "sub", trace: &trace}, ClockHz: 3_000_000},
		)
		require.NoError(t, err)

		m.RunSlice(time.Millisecond)
		m.RunSlice(time.Millisecond)

		assert.Equal(t, []string{"main:1000", "sub:3000", "main:1000", "sub:3000"}, trace)
		main, _ := m.Cycles("main")
		sub, _ := m.Cycles("sub")
		assert.Equal(t, uint64(2000), main)
		assert.Equal(t, uint64(6000), sub)
		assert.Equal(t, 2*time.Millisecond, m.Elapsed())
	})

	t.Run("fractional clocks do not drift", func(t *testing.T) {
		core := &fakeCore{}
		m, err := New(Slot{Name: "nes", Core: core, ClockHz: 1_789_773})
		require.NoError(t, err)

		for range 1000 {
			m.RunSlice(time.Millisecond)
		}

		assert.Equal(t, 1_789_773, core.total)
		local, err := m.LocalTime("nes")
		require.NoError(t, err)
		assert.Equal(t, time.Second, local)
	})

	t.Run("overshoot is charged to the next slice", func(t *testing.T) {
		var trace []string
		core := &fakeCore{name: "main", overshoot: 3, trace: &trace}
		m, err := New(Slot{Name: "main", Core: core, ClockHz: 1_000_000})
		require.NoError(t, err)

		m.RunSlice(10 * time.Microsecond)
		m.RunSlice(10 * time.Microsecond)

		assert.Equal(t, []string{"main:10", "main:7"}, trace)
		executed, _ := m.Cycles("main")
		assert.Equal(t, uint64(23), executed)
	})

	t.Run("non-positive slices are ignored", func(t *testing.T) {
		core := &fakeCore{}
		m, err := New(Slot{Name: "main", Core: core, ClockHz: 1_000_000})
		require.NoError(t, err)

		m.RunSlice(0)
		m.RunSlice(-time.Second)

		assert.Zero(t, core.total)
		assert.Zero(t, m.Elapsed())
	})
}

func TestSuspend(t *testing.T) {
	core := &fakeCore{}
	m, err := New(Slot{Name: "main", Core: core, ClockHz: 1_000_000})
	require.NoError(t, err)

	require.NoError(t, m.Suspend("main"))
	assert.True(t, m.Suspended("main"))
	m.RunSlice(time.Millisecond)
	assert.Zero(t, core.total)

	// A suspended core does not fall behind machine time.
	local, _ := m.LocalTime("main")
	assert.Equal(t, time.Millisecond, local)

	require.NoError(t, m.Resume("main"))
	assert.False(t, m.Suspended("main"))
	m.RunSlice(time.Millisecond)
	assert.Equal(t, 1000, core.total)

	assert.ErrorIs(t, m.Suspend("nope"), ErrUnknownSlot)
	assert.ErrorIs(t, m.Resume("nope"), ErrUnknownSlot)
}

// counterLoop is INX / JMP $8000.
var counterLoop = []byte{0xE8, 0x4C, 0x00, 0x80}

func newM6502(t *testing.T) cpu.Core {
	t.Helper()
	mem := memory.New64K()
	mem.Load(0x8000, counterLoop)
	mem.Load(0xFFFC, []byte{0x00, 0x80})

	c, err := m6502.New(m6502.Config{Bus: mem, Ack: cpu.IgnoreAck, Variant: m6502.NMOS6502})
	require.NoError(t, err)
	c.Reset()
	return c
}

func newCDP1802(t *testing.T) cpu.Core {
	t.Helper()
	mem := memory.New64K()
	c, err := cdp1802.New(cdp1802.Config{Bus: mem, IO: mem, Ack: cpu.IgnoreAck})
	require.NoError(t, err)
	c.Reset()
	return c
}

func TestSaveLoad(t *testing.T) {
	m, err := New(
		Slot{Name: "main", Core: newM6502(t), ClockHz: 1_000_000},
		Slot{Name: "cosmac", Core: newCDP1802(t), ClockHz: 400_000},
	)
	require.NoError(t, err)

	m.RunSlice(time.Millisecond)
	state, err := m.Save()
	require.NoError(t, err)

	main, _ := m.Core("main")
	savedRegs := main.Registers()
	savedCycles, _ := m.Cycles("main")

	m.RunSlice(time.Millisecond)
	require.NotEqual(t, savedRegs, main.Registers())

	require.NoError(t, m.Load(state))
	assert.Equal(t, savedRegs, main.Registers())
	cycles, _ := m.Cycles("main")
	assert.Equal(t, savedCycles, cycles)
	assert.Equal(t, time.Millisecond, m.Elapsed())

	t.Run("rejects damaged states", func(t *testing.T) {
		assert.ErrorIs(t, m.Load(nil), ErrCorruptState)
		assert.ErrorIs(t, m.Load(state[:len(state)-1]), ErrCorruptState)
		assert.ErrorIs(t, m.Load(append(append([]byte{}, state...), 0)), ErrCorruptState)

		bad := append([]byte{}, state...)
		bad[0] = 'X'
		assert.ErrorIs(t, m.Load(bad), ErrCorruptState)
	})

	t.Run("rejects states from other machines", func(t *testing.T) {
		other, err := New(Slot{Name: "main", Core: newM6502(t), ClockHz: 1_000_000})
		require.NoError(t, err)
		assert.ErrorIs(t, other.Load(state), ErrCorruptState)
	})
}

func TestTransfer(t *testing.T) {
	m, err := New(
		Slot{Name: "a", Core: newM6502(t), ClockHz: 1_000_000},
		Slot{Name: "b", Core: newM6502(t), ClockHz: 1_000_000},
		Slot{Name: "cosmac", Core: newCDP1802(t), ClockHz: 1_000_000},
	)
	require.NoError(t, err)
	require.NoError(t, m.Suspend("b"))

	m.RunSlice(100 * time.Microsecond)
	a, _ := m.Core("a")
	b, _ := m.Core("b")
	x, _ := a.Register("X")
	require.NotZero(t, x)

	require.NoError(t, m.Transfer("a", "b"))
	assert.Equal(t, a.Registers(), b.Registers())

	assert.ErrorIs(t, m.Transfer("a", "cosmac"), ErrArchMismatch)
	assert.ErrorIs(t, m.Transfer("a", "nope"), ErrUnknownSlot)
}

func TestStep(t *testing.T) {
	var trace []string
	m, err := New(Slot{Name: "main", Core: &fakeCore{name: "main", overshoot: 1, trace: &trace}, ClockHz: 1_000_000})
	require.NoError(t, err)

	n, err := m.Step("main")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m.RunSlice(10 * time.Microsecond)
	assert.Equal(t, []string{"main:1", "main:8"}, trace)

	_, err = m.Step("nope")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestStepRealCore(t *testing.T) {
	mem := memory.New64K()
	mem.Load(0x8000, []byte{0xEA, 0xEA, 0xEA})
	mem.Load(0xFFFC, []byte{0x00, 0x80})
	core, err := m6502.New(m6502.Config{Bus: mem, Ack: cpu.IgnoreAck, Variant: m6502.NMOS6502})
	require.NoError(t, err)
	core.Reset()

	m, err := New(Slot{Name: "main", Core: core, ClockHz: 1_000_000})
	require.NoError(t, err)

	for i, pc := range []uint32{0x8001, 0x8002, 0x8003} {
		n, err := m.Step("main")
		require.NoError(t, err)
		assert.Equal(t, 2, n, "step %d", i)
		assert.Equal(t, pc, core.PC(), "step %d", i)
	}
	cycles, _ := m.Cycles("main")
	assert.Equal(t, uint64(6), cycles)
}

func TestLoadAllOrNothing(t *testing.T) {
	src, err := New(
		Slot{Name: "a", Core: newM6502(t), ClockHz: 1_000_000},
		Slot{Name: "b", Core: newM6502(t), ClockHz: 1_000_000},
	)
	require.NoError(t, err)
	state, err := src.Save()
	require.NoError(t, err)

	mem := memory.New64K()
	cmos, err := m6502.New(m6502.Config{Bus: mem, Ack: cpu.IgnoreAck, Variant: m6502.M65C02})
	require.NoError(t, err)
	a := newM6502(t)
	require.NoError(t, a.SetRegister("A", 0x42))

	dst, err := New(
		Slot{Name: "a", Core: a, ClockHz: 1_000_000},
		Slot{Name: "b", Core: cmos, ClockHz: 1_000_000},
	)
	require.NoError(t, err)
	require.Error(t, dst.Load(state))

	v, _ := a.Register("A")
	assert.Equal(t, uint32(0x42), v)
}

func TestLoadRejectsRepeatedSlot(t *testing.T) {
	src, err := New(
		Slot{Name: "a", Core: newM6502(t), ClockHz: 1_000_000},
		Slot{Name: "b", Core: newM6502(t), ClockHz: 1_000_000},
	)
	require.NoError(t, err)
	state, err := src.Save()
	require.NoError(t, err)

	// header, then slot "a": name length, name, executed, context length, context
	a, _ := src.Core("a")
	second := 16 + 2 + 1 + 8 + 4 + a.ContextSize()
	require.Equal(t, []byte{1, 0, 'b'}, state[second:second+3])
	state[second+2] = 'a'

	err = src.Load(state)
	assert.ErrorIs(t, err, ErrCorruptState)
}
