package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velodsp/quadlfo/quadlfo/ui"
)

// fakeOsc records every contract call so the orchestration can be
// asserted without real oscillator behavior. Level and samples are
// injected so mixing math can be checked exactly.
type fakeOsc struct {
	inits        int
	resets       []int32
	aligns       int
	period       uint32
	pitch        int16
	pitchSets    int
	multiplier   uint8
	divider      uint8
	initialPhase uint16
	levelSet     uint16
	hold         bool
	up           bool
	master       Oscillator
	steps        int

	levelRet  uint16
	sampleRet int16
}

func (f *fakeOsc) Init()                        { f.inits++ }
func (f *fakeOsc) Reset(subsample int32)        { f.resets = append(f.resets, subsample) }
func (f *fakeOsc) Align()                       { f.aligns++ }
func (f *fakeOsc) SetPeriod(ticks uint32)       { f.period = ticks }
func (f *fakeOsc) SetPitch(pitch int16)         { f.pitch = pitch; f.pitchSets++ }
func (f *fakeOsc) SetMultiplier(n uint8)        { f.multiplier = n }
func (f *fakeOsc) SetDivider(n uint8)           { f.divider = n }
func (f *fakeOsc) SetInitialPhase(phase uint16) { f.initialPhase = phase }
func (f *fakeOsc) SetLevel(level uint16)        { f.levelSet = level }
func (f *fakeOsc) SetHold(hold bool)            { f.hold = hold }
func (f *fakeOsc) SetDirection(up bool)         { f.up = up }
func (f *fakeOsc) LinkTo(master Oscillator)     { f.master = master }
func (f *fakeOsc) Step()                        { f.steps++ }
func (f *fakeOsc) Level() uint16                { return f.levelRet }

func (f *fakeOsc) ComputeSampleShape(Shape) int16 { return f.sampleRet }

type fakeADC struct {
	cv    [NumChannels]int16
	reset [NumChannels]int16
}

func (a *fakeADC) CV(ch int) int16    { return a.cv[ch] }
func (a *fakeADC) Reset(ch int) int16 { return a.reset[ch] }

type fakeDAC struct {
	sine   [NumChannels]int16
	assign [NumChannels]int16
}

func (d *fakeDAC) SetSine(ch int, s int16)   { d.sine[ch] = s }
func (d *fakeDAC) SetAssign(ch int, s int16) { d.assign[ch] = s }

type rig struct {
	surface *ui.Surface
	adc     *fakeADC
	dac     *fakeDAC
	osc     [NumChannels]*fakeOsc
	proc    *Processor
}

func newRig(mode ui.FeatureMode) *rig {
	r := &rig{
		surface: ui.NewSurface(),
		adc:     &fakeADC{},
		dac:     &fakeDAC{},
	}
	r.surface.SetFeatureMode(mode)
	var osc [NumChannels]Oscillator
	for i := range r.osc {
		r.osc[i] = &fakeOsc{levelRet: 65535, sampleRet: 1000}
		osc[i] = r.osc[i]
	}
	r.proc = NewProcessor(r.surface, r.adc, r.dac, osc)
	return r
}

// pulseReset drives one channel's reset input below-low then above-high
// across two Process calls, firing the trigger on the second.
func (r *rig) pulseReset(ch int) {
	r.adc.reset[ch] = 0
	r.proc.Process()
	r.adc.reset[ch] = 30000
	r.proc.Process()
	r.adc.reset[ch] = 0
}

func TestProcessSplashGate(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	r.surface.SetUIMode(ui.ModeSplash)

	r.proc.Process()

	for i := range r.osc {
		assert.Zero(t, r.osc[i].inits)
		assert.Zero(t, r.osc[i].steps)
	}
}

func TestProcessModeChangeReinitializesOnce(t *testing.T) {
	r := newRig(ui.FeatModeQuad)

	r.proc.Process()
	for i := range r.osc {
		assert.Equal(t, 1, r.osc[i].inits, "first tick initializes channel %d", i)
	}

	// rotate the waveform offset via a reset on channel 4
	r.pulseReset(3)
	require.Equal(t, uint8(1), r.proc.WaveformOffset())

	r.proc.Process()
	for i := range r.osc {
		assert.Equal(t, 1, r.osc[i].inits, "same mode must not reinitialize")
	}

	r.surface.SetFeatureMode(ui.FeatModeDivide)
	r.proc.Process()
	for i := range r.osc {
		assert.Equal(t, 2, r.osc[i].inits, "mode change reinitializes channel %d", i)
	}
	assert.Zero(t, r.proc.WaveformOffset(), "mode change clears the shape rotation")

	r.proc.Process()
	for i := range r.osc {
		assert.Equal(t, 2, r.osc[i].inits)
	}
}

func TestProcessFreeIndependentChannels(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	for i := 0; i < NumChannels; i++ {
		r.surface.SetPhase(i, uint16(1000*(i+1)))
	}

	r.proc.Process()

	for i := range r.osc {
		assert.Nil(t, r.osc[i].master, "free mode never links")
		assert.Equal(t, MapPhase(uint16(1000*(i+1)), 0, 0), r.osc[i].initialPhase)
		assert.Equal(t, 1, r.osc[i].pitchSets)
		assert.Equal(t, 1, r.osc[i].steps)
	}
	// every tick writes both outputs of every channel
	for i := 0; i < NumChannels; i++ {
		assert.Equal(t, int16(1000), r.dac.sine[i])
		assert.Equal(t, int16(1000), r.dac.assign[i])
	}
}

func TestProcessQuadSlaveDividers(t *testing.T) {
	r := newRig(ui.FeatModeQuad)

	for i := 1; i < NumChannels; i++ {
		r.surface.SetLevel(i, 0)
	}
	r.proc.Process()
	for i := 1; i < NumChannels; i++ {
		assert.Same(t, r.osc[0], r.osc[i].master)
		// 7*(65535-0)/65536 + (i+1)
		assert.Equal(t, uint8(6+i+1), r.osc[i].divider, "channel %d", i)
	}

	for i := 1; i < NumChannels; i++ {
		r.surface.SetLevel(i, 65535)
	}
	r.proc.Process()
	for i := 1; i < NumChannels; i++ {
		assert.Equal(t, uint8(i+1), r.osc[i].divider, "channel %d", i)
	}
}

func TestProcessQuadNormalization(t *testing.T) {
	r := newRig(ui.FeatModeQuad)

	levels := [NumChannels]uint16{60000, 50000, 40000, 30000}
	samples := [NumChannels]int16{12000, -8000, 3000, 500}
	for i := range r.osc {
		r.osc[i].levelRet = levels[i]
		r.osc[i].sampleRet = samples[i]
	}

	r.proc.Process()

	// reverse step order: sums accumulate from channel 3 down to 0
	var sum, gain int32
	want := [NumChannels]int16{}
	for i := NumChannels - 1; i >= 0; i-- {
		sum += int32(samples[i])
		gain += int32(levels[i])
		g := gain
		if g < 65535 {
			g = 65535
		}
		want[i] = int16(((sum << 13) / g) << 3)
	}
	for i := 0; i < NumChannels; i++ {
		assert.Equal(t, want[i], r.dac.sine[i], "channel %d", i)
		assert.Equal(t, want[i], r.dac.assign[i], "channel %d", i)
	}
}

func TestProcessQuadResetSideEffects(t *testing.T) {
	r := newRig(ui.FeatModeQuad)
	r.proc.Process()

	// reset 2 holds the master while high
	r.adc.reset[1] = 0
	r.proc.Process()
	r.adc.reset[1] = 30000
	r.proc.Process()
	assert.True(t, r.osc[0].hold)
	r.adc.reset[1] = 0

	// reset 3 inverts direction while high
	r.adc.reset[2] = 0
	r.proc.Process()
	assert.True(t, r.osc[0].up)
	r.adc.reset[2] = 30000
	r.proc.Process()
	assert.False(t, r.osc[0].up)
	r.adc.reset[2] = 0

	// reset 4 rotates the waveform set once per edge, even if held high
	r.adc.reset[3] = 0
	r.proc.Process()
	r.adc.reset[3] = 30000
	r.proc.Process()
	assert.Equal(t, uint8(1), r.proc.WaveformOffset())
	r.proc.Process()
	assert.Equal(t, uint8(1), r.proc.WaveformOffset(), "held trigger must not repeat")
}

func TestProcessPhaseQuadratureLayout(t *testing.T) {
	r := newRig(ui.FeatModePhase)

	for i := 1; i < NumChannels; i++ {
		r.surface.SetCoarse(i, 65535)
	}
	r.proc.Process()
	for i := 1; i < NumChannels; i++ {
		assert.Same(t, r.osc[0], r.osc[i].master)
		assert.Equal(t, uint16((NumChannels-i)*16384), r.osc[i].initialPhase, "channel %d", i)
	}

	// below the full-scale window the pots control phase again
	r.surface.SetCoarse(1, 30000)
	r.proc.Process()
	assert.Equal(t, MapPhase(30000, r.surface.Fine(1), 0), r.osc[1].initialPhase)
}

func TestProcessDividePropagatesMasterReset(t *testing.T) {
	r := newRig(ui.FeatModeDivide)

	r.adc.reset[0] = 0
	r.proc.Process()
	r.adc.reset[0] = 30000
	r.proc.Process()

	// (20000-0)*32/30000
	wantSub := int32(21)
	require.Equal(t, []int32{wantSub}, r.osc[0].resets, "master resets via the shared frequency path")
	for i := 1; i < NumChannels; i++ {
		assert.Equal(t, []int32{wantSub}, r.osc[i].resets, "slave %d resets in lock-step", i)
	}
}

func TestProcessDivideSyncModeDoesNotPropagate(t *testing.T) {
	r := newRig(ui.FeatModeDivide)
	r.surface.SetSyncMode(true)

	r.adc.reset[0] = 0
	r.proc.Process()
	r.adc.reset[0] = 30000
	r.proc.Process()

	assert.Empty(t, r.osc[0].resets, "sync mode aligns instead of resetting")
	assert.Equal(t, 1, r.osc[0].aligns)
	for i := 1; i < NumChannels; i++ {
		assert.Empty(t, r.osc[i].resets)
	}
}

func TestProcessDivideMultiplierAssignment(t *testing.T) {
	r := newRig(ui.FeatModeDivide)

	// full-scale coarse lands at the multiply end of the curve
	for i := 1; i < NumChannels; i++ {
		r.surface.SetCoarse(i, 65535)
	}
	r.proc.Process()
	for i := 1; i < NumChannels; i++ {
		assert.Equal(t, uint8(64), r.osc[i].multiplier, "channel %d", i)
		assert.Equal(t, uint8(1), r.osc[i].divider, "channel %d", i)
	}

	// zero coarse lands at the divide end
	for i := 1; i < NumChannels; i++ {
		r.surface.SetCoarse(i, 0)
	}
	r.proc.Process()
	for i := 1; i < NumChannels; i++ {
		assert.Equal(t, uint8(1), r.osc[i].multiplier, "channel %d", i)
		assert.Equal(t, uint8(64), r.osc[i].divider, "channel %d", i)
	}
}

func TestProcessSyncModeCVSelectsRatio(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	r.surface.SetSyncMode(true)
	r.proc.Process()

	// positive CV multiplies the clock
	r.adc.cv[0] = 32767
	r.proc.ch[0].filteredCV = 32767
	r.proc.Process()
	assert.Equal(t, uint8(8), r.osc[0].multiplier)
	assert.Equal(t, uint8(1), r.osc[0].divider)

	// negative CV divides it
	r.adc.cv[0] = -32768
	r.proc.ch[0].filteredCV = -32768
	r.proc.Process()
	assert.Equal(t, uint8(1), r.osc[0].multiplier)
	assert.Equal(t, uint8(9), r.osc[0].divider)
}

func TestProcessSyncLockAndPotHysteresis(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	r.surface.SetSyncMode(true)
	r.proc.Process()

	// run a while so the inter-trigger counter accumulates, then fire
	for i := 0; i < 99; i++ {
		r.proc.Process()
	}
	r.pulseReset(0)
	assert.NotZero(t, r.osc[0].period, "sync snaps the period to the measured interval")
	assert.Equal(t, 1, r.osc[0].aligns)

	// once synced, pitch is no longer re-applied every tick
	sets := r.osc[0].pitchSets
	r.proc.Process()
	assert.Equal(t, sets, r.osc[0].pitchSets)

	// a deliberate coarse move breaks the lock
	r.surface.SetCoarse(0, r.surface.Coarse(0)+5000)
	r.proc.Process()
	assert.Equal(t, sets+1, r.osc[0].pitchSets)
	r.proc.Process()
	assert.Equal(t, sets+2, r.osc[0].pitchSets, "unsynced channels track pitch every tick")
}

func TestProcessIdempotentWithoutEdges(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	r.adc.cv[0] = 16000

	for i := 0; i < 500; i++ {
		r.proc.Process()
	}

	for i := range r.osc {
		assert.Empty(t, r.osc[i].resets, "no trigger edges, no resets")
		assert.False(t, r.proc.ch[i].reset.triggered)
	}
	// the CV filter converges toward the raw input without diverging
	assert.InDelta(t, 16000, r.proc.ch[0].filteredCV, 100)
	assert.LessOrEqual(t, r.proc.ch[0].filteredCV, int32(16000))
}

func TestSelectShapes(t *testing.T) {
	r := newRig(ui.FeatModeFree)
	r.surface.SetShape(2) // base selector: saw

	shapes := r.proc.selectShapes(ui.FeatModeFree)
	for i := range shapes {
		assert.Equal(t, ShapeSaw, shapes[i])
	}

	// the rotation offset wraps within the classic family
	r.proc.waveformOffset = 2
	shapes = r.proc.selectShapes(ui.FeatModeFree)
	for i := range shapes {
		assert.Equal(t, ShapeTrapezoid, shapes[i], "(2+2)%%4 = 0 => first classic shape")
	}

	// quad substitutes square for trapezoid
	shapes = r.proc.selectShapes(ui.FeatModeQuad)
	for i := range shapes {
		assert.Equal(t, ShapeSquare, shapes[i])
	}

	// the random bank follows the per-channel random waveform index
	r.proc.waveformOffset = 0
	r.surface.SetBank(2, ui.BankRandom)
	r.surface.SetRandomWaveformIndex(2, 3)
	shapes = r.proc.selectShapes(ui.FeatModeFree)
	assert.Equal(t, ShapeRandomWalk, shapes[2])
	assert.Equal(t, ShapeSaw, shapes[0])
}
