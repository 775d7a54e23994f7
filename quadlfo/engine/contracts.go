// Package engine is the tick-rate orchestration core: once per sample it
// turns the raw control surface into per-channel oscillator parameters,
// detects reset triggers with sub-sample timing, and mixes the four
// channels down to the DAC.
package engine

import "github.com/velodsp/quadlfo/quadlfo/ui"

// NumChannels is the number of LFO channels driven by the engine.
const NumChannels = ui.NumChannels

// SampleRate is the tick rate of the engine in Hz. One Process call
// corresponds to one sample period.
const SampleRate = 48000

// Octave is one octave in pitch units (1/128 semitone per unit).
const Octave = 12 * 128

// Shape identifies a waveform the oscillator can render. The classic and
// random families are each four consecutive values so the shape selector
// can be offset-rotated within a family.
type Shape uint8

const (
	ShapeSine Shape = iota
	ShapeTrapezoid
	ShapeRamp
	ShapeSaw
	ShapeSquare
	ShapeRandomStep
	ShapeRandomRamp
	ShapeRandomSmooth
	ShapeRandomWalk
)

// shapeFamilySize is the number of shapes the selector rotates through.
const shapeFamilySize = 4

// ControlSurface is the read-only accessor contract of the UI collaborator.
// Accessors must be non-blocking and return the most recently sampled value.
type ControlSurface interface {
	Coarse(ch int) uint16
	Fine(ch int) int16
	Phase(ch int) uint16
	Level(ch int) uint16
	Atten(ch int) uint16

	FeatureMode() ui.FeatureMode
	UIMode() ui.Mode
	Bank(ch int) ui.WaveBank
	RandomWaveformIndex(ch int) uint8
	Shape() uint8
	SyncMode() bool
}

// AnalogReader provides the per-tick CV and reset input samples.
type AnalogReader interface {
	CV(ch int) int16
	Reset(ch int) int16
}

// SampleWriter is the DAC sink: two signed samples per channel per tick.
type SampleWriter interface {
	SetSine(ch int, sample int16)
	SetAssign(ch int, sample int16)
}

// Oscillator is the contract the engine requires from each channel's LFO.
type Oscillator interface {
	// Init returns the oscillator to its default un-synced, zero-phase state.
	Init()
	// Reset re-aligns the phase to a trigger that crossed the threshold
	// subsample/32 of a tick after the previous sample.
	Reset(subsample int32)
	// Align snaps the phase to the start of the cycle (sync mode).
	Align()

	SetPeriod(ticks uint32)
	SetPitch(pitch int16)
	SetMultiplier(n uint8)
	SetDivider(n uint8)
	SetInitialPhase(phase uint16)
	SetLevel(level uint16)
	SetHold(hold bool)
	SetDirection(up bool)

	// LinkTo makes this oscillator a slave of master: it follows the
	// master's phase, hold and direction. A nil master unlinks.
	LinkTo(master Oscillator)

	Step()
	ComputeSampleShape(shape Shape) int16
	Level() uint16
}
