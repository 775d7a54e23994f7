// Package quadlfo wires the control surface, the simulated converters,
// the four oscillators and the orchestration engine into a runnable
// module.
package quadlfo

import (
	"github.com/velodsp/quadlfo/quadlfo/engine"
	"github.com/velodsp/quadlfo/quadlfo/lfo"
	"github.com/velodsp/quadlfo/quadlfo/sim"
	"github.com/velodsp/quadlfo/quadlfo/ui"
)

var _ engine.ControlSurface = (*ui.Surface)(nil)

// Module is the root struct and entry point for running the LFO engine.
type Module struct {
	Surface *ui.Surface
	Analog  *sim.Analog
	Capture *sim.Capture
	Osc     [engine.NumChannels]*lfo.Lfo
	Proc    *engine.Processor

	triggers [engine.NumChannels]*sim.Trigger
	ticks    uint64
}

// New creates a module with idle inputs: all CVs at zero and a manual
// trigger wired to every reset input.
func New() *Module {
	m := &Module{
		Surface: ui.NewSurface(),
		Analog:  sim.NewAnalog(),
		Capture: sim.NewCapture(),
	}

	var osc [engine.NumChannels]engine.Oscillator
	for i := range m.Osc {
		m.Osc[i] = lfo.New(uint32(i+1) * 0x9e3779b9)
		osc[i] = m.Osc[i]
	}
	m.Proc = engine.NewProcessor(m.Surface, m.Analog, m.Capture, osc)

	for i := range m.triggers {
		m.triggers[i] = sim.NewTrigger()
		m.Analog.SetReset(i, m.triggers[i])
	}
	return m
}

// Tick advances the module by one sample period.
func (m *Module) Tick() {
	m.Analog.Advance()
	m.Proc.Process()
	m.Capture.Latch()
	m.ticks++
}

// RunBlock advances the module by n ticks.
func (m *Module) RunBlock(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// Ticks reports how many ticks have been processed.
func (m *Module) Ticks() uint64 { return m.ticks }

// FireReset pulses the given channel's reset input high for a few
// milliseconds worth of ticks.
func (m *Module) FireReset(ch int) {
	m.triggers[ch].Fire(engine.SampleRate / 250)
}

// SetResetClock replaces a channel's reset input with a periodic clock of
// the given frequency in Hz. A zero or negative frequency restores the
// manual trigger.
func (m *Module) SetResetClock(ch int, hz float64) {
	if hz <= 0 {
		m.Analog.SetReset(ch, m.triggers[ch])
		return
	}
	m.Analog.SetReset(ch, sim.NewPulseTrain(uint64(engine.SampleRate/hz)))
}
