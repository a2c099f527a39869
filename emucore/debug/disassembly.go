package debug

import "github.com/valerio/go-emucore/emucore/cpu"

type DisasmLine struct {
	Address     uint32
	Instruction string
	IsCurrent   bool
}

// DisasmBuffer holds pre-allocated buffers for disassembly lines
type DisasmBuffer struct {
	Lines    []DisasmLine
	AllLines []DisasmLine
}

func NewDisasmBuffer(maxLines int) *DisasmBuffer {
	return &DisasmBuffer{
		Lines:    make([]DisasmLine, 0, maxLines),
		AllLines: make([]DisasmLine, 0, maxLines*3), // Extra space for context
	}
}

// lookBehind is how far before pc a listing starts, in PC units.
func lookBehind(arch cpu.Arch) uint32 {
	if arch == cpu.ArchTMS34010 {
		return 12 * 16
	}
	return 12
}

// Disassembly lists maxLines instructions around pc.
func Disassembly(core cpu.Core, pc uint32, maxLines int) []DisasmLine {
	return DisassemblyWithBuffer(core, pc, maxLines, NewDisasmBuffer(maxLines))
}

// DisassemblyWithBuffer is Disassembly reusing buf between calls.
//
// Instructions before pc are found by decoding forward from a fixed distance
// back. When that sweep does not land on pc (the start fell inside an operand)
// the listing starts at pc instead.
func DisassemblyWithBuffer(core cpu.Core, pc uint32, maxLines int, buf *DisasmBuffer) []DisasmLine {
	if core == nil || maxLines <= 0 {
		return nil
	}

	back := lookBehind(core.Arch())
	if pc >= back {
		buf.AllLines = sweep(core, pc-back, pc, maxLines, buf.AllLines[:0])
		if i := indexOf(buf.AllLines, pc); i >= 0 {
			return window(buf, i, maxLines)
		}
	}

	buf.Lines = sweep(core, pc, pc, maxLines, buf.Lines[:0])
	return buf.Lines
}

// sweep decodes from start until it is maxLines instructions past pc.
func sweep(core cpu.Core, start, pc uint32, maxLines int, lines []DisasmLine) []DisasmLine {
	after := 0
	for addr := start; after < maxLines; {
		text, length := core.Disassemble(addr)
		lines = append(lines, DisasmLine{Address: addr, Instruction: text, IsCurrent: addr == pc})
		if addr >= pc {
			after++
		}
		if length <= 0 {
			length = 1
		}
		addr += uint32(length)
	}
	return lines
}

func indexOf(lines []DisasmLine, pc uint32) int {
	for i, line := range lines {
		if line.Address == pc {
			return i
		}
	}
	return -1
}

// window copies maxLines lines centered on index into buf.Lines.
func window(buf *DisasmBuffer, index, maxLines int) []DisasmLine {
	half := maxLines / 2
	start := max(index-half, 0)
	end := start + maxLines
	if end > len(buf.AllLines) {
		end = len(buf.AllLines)
		start = max(end-maxLines, 0)
	}

	buf.Lines = append(buf.Lines[:0], buf.AllLines[start:end]...)
	return buf.Lines
}
