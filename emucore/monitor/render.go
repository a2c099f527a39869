package monitor

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/debug"
)

var (
	borderStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	regStyle     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	disasmStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

func (m *Monitor) render() {
	termWidth, termHeight := m.screen.Size()
	m.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		m.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := registerWidth + 1
	logsY := disasmHeight + 2

	for y := 0; y < logsY; y++ {
		m.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := 0; x < termWidth; x++ {
		m.screen.SetContent(x, logsY, '─', nil, borderStyle)
	}
	m.screen.SetContent(dividerX, logsY, '┴', nil, borderStyle)

	m.drawText(1, 0, registerWidth, fmt.Sprintf(" %s [%s] ", m.slot, m.core.Arch()), titleStyle)
	m.drawText(dividerX+2, 0, termWidth-dividerX-2, " Disassembly ", titleStyle)
	m.drawText(1, logsY, termWidth-1, fmt.Sprintf(" Logs [%s] (-/+ filter) ", m.logLevel), titleStyle)

	snapshot := debug.Snapshot(m.core)
	m.drawRegisters(snapshot, 1, 1, registerWidth-1, disasmHeight)
	m.drawDisassembly(snapshot.PC, dividerX+2, 1, termWidth-dividerX-2)
	m.drawLogs(1, logsY+1, termWidth-1, termHeight-logsY-2)

	help := " SPACE=step R=run/pause S=slice Q=quit | Logs: +/- filter "
	m.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (m *Monitor) drawRegisters(s *debug.State, x, y, width, height int) {
	cycles, _ := m.machine.Cycles(m.slot)
	local, _ := m.machine.LocalTime(m.slot)

	lines := []string{
		fmt.Sprintf("Status: %s", m.state),
		fmt.Sprintf("Cycles: %d", cycles),
		fmt.Sprintf("Time:   %s", local),
	}
	if m.machine.Suspended(m.slot) {
		lines[0] += " (halted)"
	}

	// Two registers per row keeps the 34010's 33 registers on screen.
	regs := s.Registers
	for i := 0; i < len(regs); i += 2 {
		line := formatRegister(regs[i])
		if i+1 < len(regs) {
			line = fmt.Sprintf("%-11s %s", line, formatRegister(regs[i+1]))
		}
		lines = append(lines, line)
	}

	for i, line := range lines {
		if i >= height {
			break
		}
		m.drawText(x, y+i, width, line, regStyle)
	}
}

func formatRegister(r cpu.Register) string {
	return fmt.Sprintf("%-3s %s", r.Name, debug.FormatValue(r))
}

func (m *Monitor) drawDisassembly(pc uint32, x, y, width int) {
	digits := 4
	if m.core.Arch() == cpu.ArchTMS34010 {
		digits = 8
	}

	for i, line := range debug.DisassemblyWithBuffer(m.core, pc, disasmHeight, m.disasm) {
		marker, style := ' ', disasmStyle
		if line.IsCurrent {
			marker, style = '→', currentStyle
		}
		text := fmt.Sprintf("%c %0*X: %s", marker, digits, line.Address, line.Instruction)
		m.drawText(x, y+i, width, text, style)
	}
}

func (m *Monitor) drawLogs(x, y, width, height int) {
	if height <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range m.logs.Recent(height, m.logLevel) {
		style := infoStyle
		switch {
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		}

		text := FormatLogEntry(entry)
		if len(text) > width && width > 3 {
			text = text[:width-3] + "..."
		}
		m.drawText(x, y+i, width, text, style)
	}
}

// drawText writes text from (x, y), clipped to width cells.
func (m *Monitor) drawText(x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= width {
			return
		}
		m.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}
