package machine

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"time"

	"github.com/valerio/go-emucore/emucore/cpu"
)

// Slot is one CPU of a machine, with the clock it runs at.
type Slot struct {
	Name    string
	Core    cpu.Core
	ClockHz uint64
}

type slot struct {
	Slot
	// executed counts the cycles the core has run, which is its local time.
	executed  uint64
	suspended bool
}

// Machine time-slices a set of cores. Cores run one after another in slot
// order within a slice, each until its local time reaches the slice end.
type Machine struct {
	slots   []*slot
	index   map[string]int
	elapsed time.Duration
}

// New validates slots and returns a machine at time zero.
func New(slots ...Slot) (*Machine, error) {
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	m := &Machine{index: make(map[string]int, len(slots))}
	for i, s := range slots {
		if s.Core == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilCore, s.Name)
		}
		if s.ClockHz == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidClock, s.Name)
		}
		if _, dup := m.index[s.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSlot, s.Name)
		}
		m.index[s.Name] = i
		m.slots = append(m.slots, &slot{Slot: s})
	}
	return m, nil
}

// cyclesAt converts a time into a cycle count at hz, rounding down.
func cyclesAt(t time.Duration, hz uint64) uint64 {
	hi, lo := bits.Mul64(uint64(t), hz)
	if hi >= uint64(time.Second) {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	return q
}

// durationOf converts a cycle count at hz into a time, rounding down.
func durationOf(cycles, hz uint64) time.Duration {
	hi, lo := bits.Mul64(cycles, uint64(time.Second))
	if hi >= hz {
		return time.Duration(math.MaxInt64)
	}
	q, _ := bits.Div64(hi, lo, hz)
	if q > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(q)
}

// RunSlice advances machine time by d and runs every core up to it.
func (m *Machine) RunSlice(d time.Duration) {
	if d <= 0 {
		return
	}
	m.elapsed += d
	for _, s := range m.slots {
		s.runUntil(cyclesAt(m.elapsed, s.ClockHz))
	}
}

func (s *slot) runUntil(target uint64) {
	for s.executed < target {
		want := min(target-s.executed, math.MaxInt32)
		got := s.Core.Execute(int(want))
		if got <= 0 {
			// A halted core keeps its place in time instead of catching up
			// when it is released.
			s.executed = target
			return
		}
		s.executed += uint64(got)
	}
}

// Step runs a single instruction on slot name and returns its cycles.
// The slot's local time moves ahead of machine time; the next slice
// absorbs the difference.
func (m *Machine) Step(name string) (int, error) {
	s, err := m.slot(name)
	if err != nil {
		return 0, err
	}
	n := s.Core.Step()
	s.executed += uint64(max(n, 0))
	return n, nil
}

// Elapsed is the machine time reached by the last slice.
func (m *Machine) Elapsed() time.Duration {
	return m.elapsed
}

// Names lists the slots in scheduling order.
func (m *Machine) Names() []string {
	names := make([]string, len(m.slots))
	for i, s := range m.slots {
		names[i] = s.Name
	}
	return names
}

func (m *Machine) slot(name string) (*slot, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	return m.slots[i], nil
}

// Core returns the core in slot name.
func (m *Machine) Core(name string) (cpu.Core, error) {
	s, err := m.slot(name)
	if err != nil {
		return nil, err
	}
	return s.Core, nil
}

// Cycles returns the cycles slot name has executed.
func (m *Machine) Cycles(name string) (uint64, error) {
	s, err := m.slot(name)
	if err != nil {
		return 0, err
	}
	return s.executed, nil
}

// LocalTime returns how far slot name has run.
func (m *Machine) LocalTime(name string) (time.Duration, error) {
	s, err := m.slot(name)
	if err != nil {
		return 0, err
	}
	return durationOf(s.executed, s.ClockHz), nil
}

// Suspend asserts the halt line of slot name.
func (m *Machine) Suspend(name string) error {
	s, err := m.slot(name)
	if err != nil {
		return err
	}
	s.Core.SetInputLine(cpu.LineHalt, cpu.Assert)
	s.suspended = true
	slog.Debug("Suspended slot", "slot", name)
	return nil
}

// Resume releases the halt line of slot name.
func (m *Machine) Resume(name string) error {
	s, err := m.slot(name)
	if err != nil {
		return err
	}
	s.Core.SetInputLine(cpu.LineHalt, cpu.Clear)
	s.suspended = false
	slog.Debug("Resumed slot", "slot", name)
	return nil
}

// Suspended reports whether slot name was suspended through the machine.
func (m *Machine) Suspended(name string) bool {
	s, err := m.slot(name)
	return err == nil && s.suspended
}

// Transfer copies the live context of one slot into another running the
// same architecture.
func (m *Machine) Transfer(from, to string) error {
	src, err := m.slot(from)
	if err != nil {
		return err
	}
	dst, err := m.slot(to)
	if err != nil {
		return err
	}
	if src.Core.Arch() != dst.Core.Arch() {
		return fmt.Errorf("%w: %v to %v", ErrArchMismatch, src.Core.Arch(), dst.Core.Arch())
	}

	buf := make([]byte, src.Core.ContextSize())
	if _, err := src.Core.GetContext(buf); err != nil {
		return fmt.Errorf("failed to read context of %q: %w", from, err)
	}
	if err := dst.Core.SetContext(buf); err != nil {
		return fmt.Errorf("failed to load context into %q: %w", to, err)
	}
	slog.Debug("Transferred context", "from", from, "to", to, "arch", src.Core.Arch())
	return nil
}
