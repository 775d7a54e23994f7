package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/velodsp/quadlfo/quadlfo"
	"github.com/velodsp/quadlfo/quadlfo/engine"
	"github.com/velodsp/quadlfo/quadlfo/playback"
	"github.com/velodsp/quadlfo/quadlfo/render"
	"github.com/velodsp/quadlfo/quadlfo/timing"
	"github.com/velodsp/quadlfo/quadlfo/ui"
)

func main() {
	app := cli.NewApp()
	app.Name = "quadlfo"
	app.Description = "A four-channel LFO engine with a terminal scope"
	app.Usage = "quadlfo [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "mode",
			Usage: "Feature mode: free, quad, phase or divide",
			Value: "free",
		},
		cli.BoolFlag{
			Name:  "sync",
			Usage: "Start in sync mode (CV selects clock multiply/divide)",
		},
		cli.IntFlag{
			Name:  "shape",
			Usage: "Base shape selector (0-3)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "random-bank",
			Usage: "Select the random wavebank on all channels",
		},
		cli.Float64Flag{
			Name:  "clock",
			Usage: "Wire a clock of this frequency (Hz) to channel 1's reset input",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without the terminal scope",
		},
		cli.IntFlag{
			Name:  "ticks",
			Usage: "Number of ticks to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "play",
			Usage: "Monitor the output on the audio device",
		},
	}
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running quadlfo", "error", err)
		os.Exit(1)
	}
}

func parseMode(s string) (ui.FeatureMode, error) {
	switch s {
	case "free":
		return ui.FeatModeFree, nil
	case "quad":
		return ui.FeatModeQuad, nil
	case "phase":
		return ui.FeatModePhase, nil
	case "divide":
		return ui.FeatModeDivide, nil
	}
	return 0, fmt.Errorf("unknown feature mode %q", s)
}

func run(c *cli.Context) error {
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}

	mod := quadlfo.New()
	mod.Surface.SetFeatureMode(mode)
	mod.Surface.SetSyncMode(c.Bool("sync"))
	mod.Surface.SetShape(uint8(c.Int("shape") % 4))
	if c.Bool("random-bank") {
		for ch := 0; ch < engine.NumChannels; ch++ {
			mod.Surface.SetBank(ch, ui.BankRandom)
		}
	}
	if hz := c.Float64("clock"); hz > 0 {
		mod.SetResetClock(0, hz)
	}

	if c.Bool("headless") {
		return runHeadless(c, mod)
	}

	if c.Bool("play") {
		player, err := playback.NewPlayer(mod.Capture)
		if err != nil {
			return err
		}
		player.Start()
		defer player.Close()
	}

	scope, err := render.NewScope(mod)
	if err != nil {
		return err
	}
	return scope.Run()
}

func runHeadless(c *cli.Context, mod *quadlfo.Module) error {
	ticks := c.Int("ticks")
	if ticks <= 0 {
		return errors.New("headless mode requires --ticks with a positive value")
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("Running headless", "ticks", ticks, "mode", mod.Surface.FeatureMode().String())

	var limiter timing.Limiter = timing.NewNoOpLimiter()
	if c.Bool("play") {
		player, err := playback.NewPlayer(mod.Capture)
		if err != nil {
			return err
		}
		player.Start()
		defer player.Close()
		limiter = timing.NewTickerLimiter()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for done := 0; done < ticks; {
		select {
		case <-signals:
			slog.Info("Received signal to stop", "ticks_done", done)
			return nil
		default:
		}

		limiter.WaitForNextBlock()
		block := timing.TicksPerBlock
		if ticks-done < block {
			block = ticks - done
		}
		mod.RunBlock(block)
		done += block
	}

	frame := mod.Capture.Last()
	for ch := 0; ch < engine.NumChannels; ch++ {
		slog.Info("Final output",
			"channel", ch+1,
			"sine", frame.Sine[ch],
			"assign", frame.Assign[ch],
			"pitch", mod.Osc[ch].Pitch())
	}
	slog.Info("Headless execution completed", "ticks", mod.Ticks())
	return nil
}
