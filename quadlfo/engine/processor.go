package engine

import "github.com/velodsp/quadlfo/quadlfo/ui"

// unsyncPotThreshold is how far the coarse pot must move to break a sync
// lock and re-apply pitch.
const unsyncPotThreshold = 32767 / 20

// channelState is the per-channel tick-to-tick state owned by the engine.
type channelState struct {
	filteredCV     int32
	reset          resetTracker
	lastResetTicks uint32
	synced         bool
	lastCoarse     uint16
}

// Processor orchestrates the four LFOs: one Process call per sample
// period reads the control surface and analog inputs, assigns oscillator
// parameters according to the feature mode, then steps and mixes all
// channels into the DAC sink. Single-threaded, allocation-free, no
// blocking calls.
type Processor struct {
	ui  ControlSurface
	adc AnalogReader
	dac SampleWriter
	osc [NumChannels]Oscillator

	ch             [NumChannels]channelState
	prevMode       int
	waveformOffset uint8
}

// NewProcessor wires the collaborators. The oscillators are reinitialized
// on the first Process call, there is no need to Init them here.
func NewProcessor(cs ControlSurface, adc AnalogReader, dac SampleWriter, osc [NumChannels]Oscillator) *Processor {
	return &Processor{
		ui:       cs,
		adc:      adc,
		dac:      dac,
		osc:      osc,
		prevMode: -1,
	}
}

// Process runs one tick. It must complete within one sample period; a
// missed deadline is an audible glitch, not a recoverable error.
func (p *Processor) Process() {
	// do not run during the splash animation
	if p.ui.UIMode() == ui.ModeSplash {
		return
	}

	mode := p.ui.FeatureMode()

	// reset the LFOs if mode changed
	if int(mode) != p.prevMode {
		for i := range p.osc {
			p.osc[i].Init()
		}
		p.prevMode = int(mode)
		p.waveformOffset = 0
	}

	for i := 0; i < NumChannels; i++ {
		if mode != ui.FeatModeQuad {
			p.osc[i].SetLevel(MapLevel(p.ui.Level(i), 0, 0))
		}
		st := &p.ch[i]
		st.filteredCV += (int32(p.adc.CV(i)) - st.filteredCV) >> 6
		st.reset.observe(p.adc.Reset(i))
	}

	switch mode {
	case ui.FeatModeFree:
		p.processFree()
	case ui.FeatModeQuad:
		p.processQuad()
	case ui.FeatModePhase:
		p.processPhase()
	case ui.FeatModeDivide:
		p.processDivide()
	}

	p.mix(mode, p.selectShapes(mode))
}

// attenuatedCV scales the channel's smoothed CV by its attenuverter pot.
func (p *Processor) attenuatedCV(i int) int16 {
	return int16((p.ch[i].filteredCV * int32(p.ui.Atten(i))) >> 16)
}

// setFrequency applies the shared frequency procedure to one channel:
// sync-mode CV reinterpretation, reset/sync handling, and pitch tracking
// with the unsync hysteresis.
func (p *Processor) setFrequency(i int) {
	st := &p.ch[i]
	cv := p.attenuatedCV(i)

	// In sync mode, CV multiplies or divides the period instead of
	// shifting pitch.
	if p.ui.SyncMode() {
		if cv > 0 {
			p.osc[i].SetMultiplier(uint8(int32(cv)*8/32767 + 1))
			p.osc[i].SetDivider(1)
		} else {
			p.osc[i].SetMultiplier(1)
			p.osc[i].SetDivider(uint8(-int32(cv)*8/32767 + 1))
		}
	}

	// sync or reset
	if st.reset.triggered {
		if p.ui.SyncMode() {
			p.osc[i].SetPeriod(st.lastResetTicks)
			p.osc[i].Align()
			st.synced = true
		} else {
			p.osc[i].Reset(st.reset.subsample)
		}
		st.reset.armed = false
		st.lastResetTicks = 0
	} else {
		st.lastResetTicks++
	}

	pitch := MapPitch(p.ui.Coarse(i), p.ui.Fine(i), cv)

	// While synced, only a deliberate coarse pot move re-applies pitch;
	// otherwise the lock would snap audibly right after syncing.
	coarse := p.ui.Coarse(i)
	if !st.synced ||
		int32(coarse) >= int32(st.lastCoarse)+unsyncPotThreshold ||
		int32(coarse) <= int32(st.lastCoarse)-unsyncPotThreshold {
		p.osc[i].SetPitch(pitch)
		st.lastCoarse = coarse
		st.synced = false
	}
}

// masterSideEffects applies the reset-input side effects shared by the
// QUAD, PHASE and DIVIDE modes: reset 2 holds, reset 3 inverts direction,
// reset 4 rotates the active waveform set (edge-triggered, so it is
// disarmed here instead of firing every tick while held high).
func (p *Processor) masterSideEffects() {
	p.osc[0].SetHold(p.ch[1].reset.triggered)
	p.osc[0].SetDirection(!p.ch[2].reset.triggered)
	if p.ch[3].reset.triggered {
		p.waveformOffset++
		p.ch[3].reset.armed = false
	}
}

func (p *Processor) processFree() {
	for i := 0; i < NumChannels; i++ {
		p.setFrequency(i)
		p.osc[i].SetInitialPhase(MapPhase(p.ui.Phase(i), 0, 0))
	}
}

func (p *Processor) processQuad() {
	// 1st channel sets frequency as usual
	p.setFrequency(0)
	p.osc[0].SetInitialPhase(p.ui.Phase(0))
	p.masterSideEffects()
	p.osc[0].SetLevel(MapLevel(p.ui.Level(0), 0, 0))

	// the others follow the master with their own level, divider and phase
	for i := 1; i < NumChannels; i++ {
		// main pot and CV set the level
		p.osc[i].SetLevel(MapLevel(p.ui.Coarse(i), p.ui.Fine(i), p.attenuatedCV(i)))

		// channel i divides by i+1, the level pot adjusts the divider
		p.osc[i].LinkTo(p.osc[0])
		div := (7 * int32(65535-uint32(p.ui.Level(i)))) >> 16
		div += int32(i) + 1
		p.osc[i].SetDivider(uint8(clamp(div, 1, 16)))

		p.osc[i].SetInitialPhase(p.ui.Phase(i))
	}
}

func (p *Processor) processPhase() {
	p.setFrequency(0)
	p.masterSideEffects()

	// if all the pots are maxed out, fixed quadrature layout
	if p.ui.Coarse(1) > 65535-256 &&
		p.ui.Coarse(2) > 65535-256 &&
		p.ui.Coarse(3) > 65535-256 {
		for i := 1; i < NumChannels; i++ {
			p.osc[i].LinkTo(p.osc[0])
			p.osc[i].SetInitialPhase(uint16((NumChannels - i) * 16384))
		}
		return
	}

	for i := 1; i < NumChannels; i++ {
		p.osc[i].LinkTo(p.osc[0])
		p.osc[i].SetInitialPhase(MapPhase(p.ui.Coarse(i), p.ui.Fine(i), p.attenuatedCV(i)))
		div := (7 * int32(65535-uint32(p.ui.Phase(i)))) >> 16
		p.osc[i].SetDivider(uint8(clamp(div, 1, 16)))
	}
}

func (p *Processor) processDivide() {
	p.setFrequency(0)
	p.osc[0].SetInitialPhase(p.ui.Phase(0))
	p.masterSideEffects()

	for i := 1; i < NumChannels; i++ {
		p.osc[i].LinkTo(p.osc[0])

		dm := MapDividerMultiplier(p.ui.Coarse(i), p.ui.Fine(i), p.attenuatedCV(i))
		switch {
		case dm > 1:
			p.osc[i].SetMultiplier(1)
			p.osc[i].SetDivider(uint8(dm))
		case dm < -1:
			p.osc[i].SetMultiplier(uint8(-dm))
			p.osc[i].SetDivider(1)
		default:
			// unreachable by construction of the mapper, identity for safety
			p.osc[i].SetMultiplier(1)
			p.osc[i].SetDivider(1)
		}
		p.osc[i].SetInitialPhase(p.ui.Phase(i))

		// when the 1st channel resets, the whole ensemble resets in
		// lock-step with its subsample estimate
		if !p.ui.SyncMode() && p.ch[0].reset.triggered {
			p.osc[i].Reset(p.ch[0].reset.subsample)
		}
	}
}

// selectShapes picks each channel's active shape: the base selector plus
// the rotating offset, within the family chosen by the channel's bank.
func (p *Processor) selectShapes(mode ui.FeatureMode) [NumChannels]Shape {
	var shapes [NumChannels]Shape
	for i := range shapes {
		sel := int(p.ui.Shape())
		base := ShapeTrapezoid
		if p.ui.Bank(i) == ui.BankRandom {
			// the random bank ignores the panel switches and follows the
			// per-channel random waveform setting
			sel = int(p.ui.RandomWaveformIndex(i))
			base = ShapeRandomStep
		}

		s := Shape((sel+int(p.waveformOffset))%shapeFamilySize) + base

		// exception: in quad mode, trapezoid becomes square
		if mode == ui.FeatModeQuad && s == ShapeTrapezoid {
			s = ShapeSquare
		}
		shapes[i] = s
	}
	return shapes
}

// mix steps every channel in descending index order and writes two
// samples per channel to the DAC. In QUAD mode the running sums span all
// four channels and each output is normalized by the accumulated gain.
func (p *Processor) mix(mode ui.FeatureMode, shapes [NumChannels]Shape) {
	var sample1, sample2, gain int32

	for i := NumChannels - 1; i >= 0; i-- {
		p.osc[i].Step()

		if mode != ui.FeatModeQuad {
			sample1, sample2, gain = 0, 0, 0
		}

		sample1 += int32(p.osc[i].ComputeSampleShape(ShapeSine))
		sample2 += int32(p.osc[i].ComputeSampleShape(shapes[i]))
		gain += int32(p.osc[i].Level())

		if mode == ui.FeatModeQuad {
			g := gain
			if g < 65535 {
				g = 65535
			}
			p.dac.SetSine(i, int16(((sample1<<13)/g)<<3))
			p.dac.SetAssign(i, int16(((sample2<<13)/g)<<3))
		} else {
			p.dac.SetSine(i, int16(sample1))
			p.dac.SetAssign(i, int16(sample2))
		}
	}
}

// WaveformOffset reports the current shape rotation, exposed for status
// display.
func (p *Processor) WaveformOffset() uint8 { return p.waveformOffset }
