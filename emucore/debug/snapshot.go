package debug

import (
	"fmt"
	"strings"

	"github.com/valerio/go-emucore/emucore/cpu"
)

// State is a point-in-time view of a core for debug displays and traces.
type State struct {
	Arch        cpu.Arch
	PC          uint32
	Registers   []cpu.Register
	Instruction string
}

// Snapshot captures the registers of core and the instruction at its PC.
func Snapshot(core cpu.Core) *State {
	pc := core.PC()
	text, _ := core.Disassemble(pc)
	return &State{
		Arch:        core.Arch(),
		PC:          pc,
		Registers:   core.Registers(),
		Instruction: text,
	}
}

// Register looks a register up by name.
func (s *State) Register(name string) (uint32, bool) {
	return cpu.LookupRegister(s.Registers, name)
}

// String renders the registers on one line, e.g. "PC=8000 A=00 X=FF".
func (s *State) String() string {
	var sb strings.Builder
	for i, r := range s.Registers {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.Name)
		sb.WriteByte('=')
		sb.WriteString(FormatValue(r))
	}
	return sb.String()
}

// FormatValue prints a register as hex digits matching its width.
// Single-bit registers print as 0 or 1.
func FormatValue(r cpu.Register) string {
	digits := (r.Width + 3) / 4
	if digits < 1 {
		digits = 1
	}
	return fmt.Sprintf("%0*X", digits, r.Value)
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepSlice
)

func (d DebuggerState) String() string {
	switch d {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step"
	case DebuggerStepSlice:
		return "slice"
	}
	return fmt.Sprintf("DebuggerState(%d)", int(d))
}
