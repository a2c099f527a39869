package main

import (
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-emucore/emucore/cpu"
	"github.com/valerio/go-emucore/emucore/cpu/cdp1802"
	"github.com/valerio/go-emucore/emucore/cpu/m6502"
	"github.com/valerio/go-emucore/emucore/cpu/tms34010"
	"github.com/valerio/go-emucore/emucore/machine"
	"github.com/valerio/go-emucore/emucore/memory"
)

// archDefaults holds the clock and memory size used when flags leave them unset.
var archDefaults = map[cpu.Arch]struct {
	clockHz uint64
	memory  int
}{
	cpu.ArchM6502:    {clockHz: 1_000_000, memory: 1 << 16},
	cpu.ArchCDP1802:  {clockHz: 220_000, memory: 1 << 16}, // 1.76 MHz crystal, 8 clocks per machine cycle
	cpu.ArchTMS34010: {clockHz: 6_000_000, memory: 1 << 20},
}

type setup struct {
	mem     *memory.RAM
	console *memory.Console
	core    cpu.Core
	machine *machine.Machine
	clockHz uint64
	slice   time.Duration
}

type image struct {
	path    string
	address uint32
}

func newSetup(c *cli.Context) (*setup, error) {
	arch, err := parseArch(c.String("cpu"))
	if err != nil {
		return nil, err
	}
	defaults := archDefaults[arch]

	size := c.Int("memory")
	if size <= 0 {
		size = defaults.memory
	}
	mem := memory.New(roundPow2(size))

	var console *memory.Console
	if port := c.Int("console-port"); port >= 0 {
		console = memory.NewConsole(uint32(port), nil)
		mem.OnOut = console.Out
	}

	images := c.StringSlice("load")
	images = append(images, c.Args()...)
	if len(images) == 0 {
		return nil, fmt.Errorf("no image provided")
	}
	for _, arg := range images {
		img, err := parseImage(arg)
		if err != nil {
			return nil, err
		}
		if err := mem.LoadFile(img.path, img.address); err != nil {
			return nil, err
		}
	}

	core, err := newCore(arch, c.String("variant"), mem)
	if err != nil {
		return nil, err
	}
	core.Reset()

	if pc := c.String("reset-vector"); pc != "" {
		v, err := parseAddress(pc)
		if err != nil {
			return nil, fmt.Errorf("invalid --reset-vector: %w", err)
		}
		if err := core.SetRegister("PC", v); err != nil {
			return nil, err
		}
	}

	clockHz := c.Uint64("clock")
	if clockHz == 0 {
		clockHz = defaults.clockHz
	}
	m, err := machine.New(machine.Slot{Name: slotName, Core: core, ClockHz: clockHz})
	if err != nil {
		return nil, err
	}

	if path := c.String("load-state"); path != "" {
		state, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read state: %w", err)
		}
		if err := m.Load(state); err != nil {
			return nil, err
		}
		slog.Info("Restored machine state", "path", path, "machine_time", m.Elapsed())
	}

	return &setup{mem: mem, console: console, core: core, machine: m, clockHz: clockHz, slice: c.Duration("slice")}, nil
}

func parseArch(name string) (cpu.Arch, error) {
	for _, a := range []cpu.Arch{cpu.ArchM6502, cpu.ArchCDP1802, cpu.ArchTMS34010} {
		if strings.EqualFold(name, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture %q", name)
}

// newCore builds a core on mem, which also serves as its IO space.
func newCore(arch cpu.Arch, variant string, mem *memory.RAM) (cpu.Core, error) {
	logger := slog.Default()
	switch arch {
	case cpu.ArchM6502:
		v, err := m6502.ParseVariant(variant)
		if err != nil {
			return nil, err
		}
		return m6502.New(m6502.Config{Bus: mem, IO: mem, Ack: cpu.IgnoreAck, Variant: v, Logger: logger})
	case cpu.ArchCDP1802:
		return cdp1802.New(cdp1802.Config{Bus: mem, IO: mem, Ack: cpu.IgnoreAck, Logger: logger})
	case cpu.ArchTMS34010:
		return tms34010.New(tms34010.Config{Bus: mem, Ack: cpu.IgnoreAck, Logger: logger})
	}
	return nil, fmt.Errorf("%w: %v", cpu.ErrInvalidVariant, arch)
}

// parseImage splits "path@address"; the address defaults to 0.
func parseImage(arg string) (image, error) {
	path, at, found := strings.Cut(arg, "@")
	if path == "" {
		return image{}, fmt.Errorf("invalid image %q: empty path", arg)
	}
	img := image{path: path}
	if found {
		v, err := parseAddress(at)
		if err != nil {
			return image{}, fmt.Errorf("invalid image %q: %w", arg, err)
		}
		img.address = v
	}
	return img, nil
}

// parseAddress accepts decimal, 0x-prefixed or $-prefixed hex.
func parseAddress(s string) (uint32, error) {
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + rest
	}
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

func roundPow2(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
