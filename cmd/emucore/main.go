package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-emucore/emucore/debug"
	"github.com/valerio/go-emucore/emucore/machine"
	"github.com/valerio/go-emucore/emucore/monitor"
	"github.com/valerio/go-emucore/emucore/timing"
)

const slotName = "main"

var commonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "cpu, arch",
		Usage:  "CPU architecture: m6502, cdp1802 or tms34010",
		Value:  "m6502",
		EnvVar: "EMUCORE_CPU",
	},
	cli.StringFlag{
		Name:   "variant",
		Usage:  "6502 family member: 6502, 65c02, 65sc02, 2a03, 6510 or deco16",
		Value:  "6502",
		EnvVar: "EMUCORE_VARIANT",
	},
	cli.StringSliceFlag{
		Name:  "load, image",
		Usage: "Binary to load, as path[@address] with a hex or decimal bus address (repeatable)",
	},
	cli.StringFlag{
		Name:  "reset-vector, pc",
		Usage: "Override the entry point after reset",
	},
	cli.IntFlag{
		Name:  "memory",
		Usage: "Memory size in bytes, rounded up to a power of two (0 = architecture default)",
	},
	cli.Uint64Flag{
		Name:   "clock",
		Usage:  "Rate of the core's cycle unit in Hz (0 = architecture default)",
		EnvVar: "EMUCORE_CLOCK",
	},
	cli.DurationFlag{
		Name:  "slice",
		Usage: "Machine time run per scheduling slice",
		Value: timing.DefaultSlice,
	},
	cli.IntFlag{
		Name:  "console-port",
		Usage: "Log text written to this IO port (-1 = disabled)",
		Value: -1,
	},
	cli.StringFlag{
		Name:  "load-state",
		Usage: "Restore a saved machine state after loading images",
	},
	cli.StringFlag{
		Name:   "log-level",
		Usage:  "Log level: debug, info, warn or error",
		Value:  "info",
		EnvVar: "EMUCORE_LOG_LEVEL",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "emucore"
	app.Description = "Cycle-accurate CPU interpreter cores"
	app.Usage = "emucore <command> [options] [image]"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "Run a program headless and print the final registers",
			Flags: append([]cli.Flag{
				cli.Int64Flag{
					Name:  "cycles",
					Usage: "Cycles to run (required)",
				},
				cli.BoolFlag{
					Name:  "trace",
					Usage: "Log every instruction at debug level",
				},
				cli.BoolFlag{
					Name:  "realtime",
					Usage: "Pace slices against the wall clock",
				},
				cli.StringFlag{
					Name:  "save-state",
					Usage: "Write the machine state to this file when done",
				},
			}, commonFlags...),
			Action: runHeadless,
		},
		{
			Name:   "monitor",
			Usage:  "Step and run a program in the terminal monitor",
			Flags:  commonFlags,
			Action: runMonitor,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runHeadless(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	if c.Bool("trace") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cycles := c.Int64("cycles")
	if cycles <= 0 {
		return errors.New("run requires --cycles with a positive value")
	}

	setup, err := newSetup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Running headless", "arch", setup.core.Arch(), "clock_hz", setup.clockHz, "cycles", cycles)
	start := time.Now()
	if c.Bool("trace") {
		err = trace(ctx, setup, uint64(cycles))
	} else {
		err = runSlices(ctx, setup, uint64(cycles), c.Bool("realtime"))
	}
	if err != nil {
		return err
	}

	if setup.console != nil {
		setup.console.Flush()
	}
	executed, _ := setup.machine.Cycles(slotName)
	slog.Info("Headless execution completed", "cycles", executed, "machine_time", setup.machine.Elapsed(), "wall_time", time.Since(start))

	if path := c.String("save-state"); path != "" {
		if err := saveState(setup.machine, path); err != nil {
			return err
		}
	}

	fmt.Println(debug.Snapshot(setup.core))
	return nil
}

// runSlices runs whole slices until the slot has executed cycles.
func runSlices(ctx context.Context, s *setup, cycles uint64, realtime bool) error {
	limiter := timing.NewNoOpLimiter()
	if realtime {
		ticker := timing.NewTickerLimiter(s.slice)
		defer ticker.Stop()
		limiter = ticker
	}

	for done := uint64(0); done < cycles; {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.machine.RunSlice(s.slice)
		done, _ = s.machine.Cycles(slotName)
		limiter.WaitForNextSlice()
	}
	return nil
}

// trace single-steps the slot, logging each instruction before it runs.
func trace(ctx context.Context, s *setup, cycles uint64) error {
	for done := uint64(0); done < cycles; {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap := debug.Snapshot(s.core)
		slog.Debug("Trace", "pc", fmt.Sprintf("%X", snap.PC), "insn", snap.Instruction, "regs", snap.String())

		n, err := s.machine.Step(slotName)
		if err != nil {
			return err
		}
		if n == 0 {
			slog.Info("Core halted", "pc", fmt.Sprintf("%X", s.core.PC()))
			return nil
		}
		done, _ = s.machine.Cycles(slotName)
	}
	return nil
}

func runMonitor(c *cli.Context) error {
	setup, err := newSetup(c)
	if err != nil {
		return err
	}

	limiter := timing.NewAdaptiveLimiter(setup.slice)
	mon, err := monitor.New(monitor.Config{
		Machine: setup.machine,
		Slot:    slotName,
		Slice:   setup.slice,
		Limiter: limiter,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	if err := mon.Run(ctx); err != nil {
		return err
	}

	fmt.Println(debug.Snapshot(setup.core))
	return nil
}

func saveState(m *machine.Machine, path string) error {
	state, err := m.Save()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, state, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	slog.Info("Saved machine state", "path", path, "bytes", len(state))
	return nil
}
