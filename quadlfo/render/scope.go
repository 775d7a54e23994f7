// Package render draws the module's eight outputs as a terminal
// oscilloscope and maps keyboard input onto the control surface.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/velodsp/quadlfo/quadlfo"
	"github.com/velodsp/quadlfo/quadlfo/engine"
	"github.com/velodsp/quadlfo/quadlfo/sim"
	"github.com/velodsp/quadlfo/quadlfo/ui"
)

const (
	frameTime = 33 * time.Millisecond
	laneRows  = 5
)

// ticksPerFrame keeps the simulation at the nominal rate while the
// terminal redraws at ~30 fps.
var ticksPerFrame = int(engine.SampleRate * frameTime / time.Second)

// Scope runs the module in real time and renders its outputs.
type Scope struct {
	screen  tcell.Screen
	mod     *quadlfo.Module
	running bool

	history []sim.Frame
}

func NewScope(mod *quadlfo.Module) (*Scope, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &Scope{
		screen:  screen,
		mod:     mod,
		running: true,
	}, nil
}

func (s *Scope) Run() error {
	defer func() {
		slog.Info("Finishing scope")
		s.screen.Fini()
	}()

	s.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.screen.Clear()

	go s.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for s.running {
		select {
		case <-ticker.C:
			s.mod.RunBlock(ticksPerFrame)
			s.render()
			s.screen.Show()
		case <-signals:
			s.running = false
			slog.Info("Received signal to stop")
			return nil
		}
	}

	return nil
}

func (s *Scope) handleInput() {
	for s.running {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				s.running = false
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'q':
					s.running = false
				case 'm':
					s.mod.Surface.CycleFeatureMode()
				case 's':
					s.mod.Surface.SetSyncMode(!s.mod.Surface.SyncMode())
				case 'w':
					s.mod.Surface.SetShape((s.mod.Surface.Shape() + 1) % 4)
				case 'b':
					for ch := 0; ch < engine.NumChannels; ch++ {
						if s.mod.Surface.Bank(ch) == ui.BankClassic {
							s.mod.Surface.SetBank(ch, ui.BankRandom)
						} else {
							s.mod.Surface.SetBank(ch, ui.BankClassic)
						}
					}
				case '1', '2', '3', '4':
					s.mod.FireReset(int(ev.Rune() - '1'))
				}
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

func (s *Scope) render() {
	s.screen.Clear()
	width, height := s.screen.Size()

	surf := s.mod.Surface
	header := fmt.Sprintf(" mode:%s  sync:%v  shape:%d  offset:%d  [m]ode [s]ync [w]ave [b]ank [1-4]reset [q]uit",
		surf.FeatureMode(), surf.SyncMode(), surf.Shape(), s.mod.Proc.WaveformOffset())
	s.drawText(0, 0, header)

	if cap(s.history) < width {
		s.history = make([]sim.Frame, width)
	}
	n := s.mod.Capture.History(s.history[:width])

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for ch := 0; ch < engine.NumChannels; ch++ {
		top := 2 + ch*(laneRows+1)
		if top+laneRows >= height {
			break
		}
		s.drawText(0, top, fmt.Sprintf("ch%d", ch+1))
		for x := 0; x < n; x++ {
			v := int32(s.history[x].Assign[ch])
			// map -32768..32767 onto the lane, top row = max
			row := int((32767 - int64(v)) * int64(laneRows) / 65536)
			s.screen.SetContent(x, top+1+row, '•', nil, style)
		}
	}
}

func (s *Scope) drawText(x, y int, text string) {
	for i, r := range text {
		s.screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
