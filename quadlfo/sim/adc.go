// Package sim provides host-side stand-ins for the converter hardware:
// signal sources standing in for the ADC inputs and a capturing sink
// standing in for the DAC. The engine only sees the AnalogReader and
// SampleWriter contracts.
package sim

import "github.com/velodsp/quadlfo/quadlfo/engine"

// Source produces one sample per tick for a CV or reset input.
type Source interface {
	Sample(tick uint64) int16
}

// Constant is a fixed-level source.
type Constant int16

func (c Constant) Sample(uint64) int16 { return int16(c) }

// PulseTrain is a periodic gate, useful as an external clock on a reset
// input. Levels default to 0/32000 which comfortably straddle the
// engine's trigger thresholds.
type PulseTrain struct {
	Period uint64 // ticks per cycle
	Width  uint64 // ticks the output stays high
	Low    int16
	High   int16
}

// NewPulseTrain returns a clock with the given period and a 1/4 duty cycle.
func NewPulseTrain(period uint64) *PulseTrain {
	return &PulseTrain{Period: period, Width: period / 4, High: 32000}
}

func (p *PulseTrain) Sample(tick uint64) int16 {
	if p.Period == 0 || tick%p.Period >= p.Width {
		return p.Low
	}
	return p.High
}

// Trigger is a manually fired gate: low until Fire, then high for the
// requested number of ticks.
type Trigger struct {
	remaining int
	High      int16
	Low       int16
}

func NewTrigger() *Trigger {
	return &Trigger{High: 32000}
}

// Fire raises the output for the next ticks samples.
func (t *Trigger) Fire(ticks int) {
	t.remaining = ticks
}

func (t *Trigger) Sample(uint64) int16 {
	if t.remaining > 0 {
		t.remaining--
		return t.High
	}
	return t.Low
}

// Analog implements the engine's AnalogReader over per-channel sources.
// Advance moves the clock one tick; reads within a tick are stable.
type Analog struct {
	cv    [engine.NumChannels]Source
	reset [engine.NumChannels]Source
	tick  uint64
}

func NewAnalog() *Analog {
	a := &Analog{}
	for i := 0; i < engine.NumChannels; i++ {
		a.cv[i] = Constant(0)
		a.reset[i] = Constant(0)
	}
	return a
}

func (a *Analog) SetCV(ch int, src Source)    { a.cv[ch] = src }
func (a *Analog) SetReset(ch int, src Source) { a.reset[ch] = src }

// Advance moves to the next tick.
func (a *Analog) Advance() { a.tick++ }

func (a *Analog) CV(ch int) int16    { return a.cv[ch].Sample(a.tick) }
func (a *Analog) Reset(ch int) int16 { return a.reset[ch].Sample(a.tick) }

var _ engine.AnalogReader = (*Analog)(nil)
