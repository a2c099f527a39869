// Package monitor is an interactive terminal front end for a machine slot.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/debug"
	"github.com/valerio/go-emucore/emucore/machine"
	"github.com/valerio/go-emucore/emucore/timing"
)

const (
	registerWidth = 26
	disasmHeight  = 20
	minTermWidth  = 60
	minTermHeight = 26
	logCapacity   = 200
	idlePoll      = 10 * time.Millisecond
)

var ErrNoMachine = errors.New("monitor: no machine configured")

type Config struct {
	Machine *machine.Machine
	Slot    string
	// Slice is the machine time run per tick while running and per 's' key.
	Slice time.Duration
	// Limiter paces running slices. Nil means unpaced.
	Limiter timing.Limiter
	// Screen replaces the terminal, for tests.
	Screen tcell.Screen
	// Running starts execution immediately instead of paused.
	Running bool
}

// Monitor shows registers, disassembly and logs of one slot and drives the
// machine from the keyboard: space steps an instruction, 'r' toggles
// run/pause, 's' runs one slice and 'q' quits.
type Monitor struct {
	screen  tcell.Screen
	machine *machine.Machine
	core    cpu.Core
	slot    string
	slice   time.Duration
	limiter timing.Limiter

	logs      *LogBuffer
	logLevel  slog.Level
	prevLog   *slog.Logger
	state     debug.DebuggerState
	disasm    *debug.DisasmBuffer
	alive     bool
	lastError error
}

func New(cfg Config) (*Monitor, error) {
	if cfg.Machine == nil {
		return nil, ErrNoMachine
	}
	core, err := cfg.Machine.Core(cfg.Slot)
	if err != nil {
		return nil, err
	}

	screen := cfg.Screen
	if screen == nil {
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	slice := cfg.Slice
	if slice <= 0 {
		slice = timing.DefaultSlice
	}

	state := debug.DebuggerPaused
	if cfg.Running {
		state = debug.DebuggerRunning
	}

	return &Monitor{
		screen:   screen,
		machine:  cfg.Machine,
		core:     core,
		slot:     cfg.Slot,
		slice:    slice,
		limiter:  limiter,
		logs:     NewLogBuffer(logCapacity),
		logLevel: slog.LevelInfo,
		state:    state,
		disasm:   debug.NewDisasmBuffer(disasmHeight),
	}, nil
}

// Logs exposes the captured log ring.
func (m *Monitor) Logs() *LogBuffer {
	return m.logs
}

// State is the current run state.
func (m *Monitor) State() debug.DebuggerState {
	return m.state
}

// Run takes over the terminal until the user quits or ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.init(); err != nil {
		return err
	}
	defer m.close()

	for m.alive {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		for m.screen.HasPendingEvent() {
			m.handleEvent(m.screen.PollEvent())
		}
		m.tick()
		m.render()
		m.screen.Show()

		if m.state == debug.DebuggerRunning {
			m.limiter.WaitForNextSlice()
		} else {
			time.Sleep(idlePoll)
		}
	}
	return m.lastError
}

func (m *Monitor) init() error {
	if err := m.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	m.prevLog = slog.Default()
	slog.SetDefault(slog.New(NewLogBufferHandler(m.logs, slog.LevelDebug)))
	slog.Info("Monitor attached", "slot", m.slot, "arch", m.core.Arch())

	m.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	m.screen.Clear()
	m.alive = true
	return nil
}

func (m *Monitor) close() {
	m.screen.Fini()
	if m.prevLog != nil {
		slog.SetDefault(m.prevLog)
	}
}

func (m *Monitor) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		m.handleKey(ev)
	case *tcell.EventResize:
		m.screen.Sync()
	}
}

func (m *Monitor) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		m.alive = false
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q':
		m.alive = false
	case ' ':
		m.state = debug.DebuggerStepInstruction
	case 's':
		m.state = debug.DebuggerStepSlice
	case 'r':
		if m.state == debug.DebuggerRunning {
			m.state = debug.DebuggerPaused
			slog.Info("Paused", "slot", m.slot)
		} else {
			m.state = debug.DebuggerRunning
			m.limiter.Reset()
			slog.Info("Running", "slot", m.slot)
		}
	case '+', '=':
		m.changeLogLevel(-4)
	case '-', '_':
		m.changeLogLevel(4)
	}
}

// tick advances the machine according to the current state.
func (m *Monitor) tick() {
	switch m.state {
	case debug.DebuggerRunning:
		m.machine.RunSlice(m.slice)
	case debug.DebuggerStepInstruction:
		if _, err := m.machine.Step(m.slot); err != nil {
			m.fail(err)
		}
		m.state = debug.DebuggerPaused
	case debug.DebuggerStepSlice:
		m.machine.RunSlice(m.slice)
		m.state = debug.DebuggerPaused
	}
}

func (m *Monitor) fail(err error) {
	slog.Error("Monitor stopped", "error", err)
	m.lastError = err
	m.alive = false
}

// changeLogLevel moves the display filter by delta, between debug and error.
func (m *Monitor) changeLogLevel(delta slog.Level) {
	next := min(max(m.logLevel+delta, slog.LevelDebug), slog.LevelError)
	if next != m.logLevel {
		slog.Info("Log filter changed", "from", m.logLevel, "to", next)
		m.logLevel = next
	}
}
