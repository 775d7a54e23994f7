// Package lfo implements the per-channel low-frequency oscillator behind
// the engine's Oscillator contract: a 32-bit phase accumulator with
// pitch- or period-derived increments, integer clock division and
// multiplication, master linking, and sub-sample accurate resets.
package lfo

import "github.com/velodsp/quadlfo/quadlfo/engine"

// pitch range covered by the increment table, in 1/128-semitone units.
const (
	pitchOctaves = 8
	minPitch     = -pitchOctaves * engine.Octave
	maxPitch     = pitchOctaves*engine.Octave - 1
)

// Lfo is one oscillator channel. All state is plain integers; nothing
// here allocates after construction.
type Lfo struct {
	phase     uint32
	increment uint32
	pitch     int16

	multiplier uint8
	divider    uint8
	cycle      uint8
	prevSrc    uint32

	shapePhase   uint32
	prevFinal    uint32
	initialPhase uint16

	level uint16
	hold  bool
	up    bool

	master *Lfo

	seed      uint32
	randState uint32
	randPrev  int16
	randValue int16
	walkPrev  int16
	walkValue int16
}

// New returns an initialized oscillator. The seed only drives the random
// shape family; distinct channels should use distinct seeds.
func New(seed uint32) *Lfo {
	if seed == 0 {
		seed = 0xace1
	}
	l := &Lfo{seed: seed}
	l.Init()
	return l
}

// Init restores the default un-synced, zero-phase state.
func (l *Lfo) Init() {
	l.phase = 0
	l.pitch = 0
	l.increment = incrementForPitch(0)
	l.multiplier = 1
	l.divider = 1
	l.cycle = 0
	l.prevSrc = 0
	l.shapePhase = 0
	l.prevFinal = 0
	l.initialPhase = 0
	l.level = 65535
	l.hold = false
	l.up = true
	l.master = nil
	l.randState = l.seed
	l.randPrev = 0
	l.randValue = 0
	l.walkPrev = 0
	l.walkValue = 0
}

// Reset re-aligns the phase to a trigger edge that crossed the detection
// threshold subsample/32 of a tick after the previous sample, i.e.
// (32-subsample)/32 of a tick before the current one. A linked slave
// only realigns its division cycle; its phase follows the master.
func (l *Lfo) Reset(subsample int32) {
	if subsample < 0 {
		subsample = 0
	} else if subsample > 32 {
		subsample = 32
	}
	l.cycle = 0
	if l.master == nil {
		l.phase = uint32(uint64(l.increment) * uint64(32-subsample) / 32)
		l.prevSrc = l.phase
	} else {
		l.prevSrc = l.master.phase
	}
}

// Align snaps the phase to the start of the cycle. Used after SetPeriod
// when locking to an external clock.
func (l *Lfo) Align() {
	l.phase = 0
	l.cycle = 0
	l.prevSrc = 0
}

// SetPeriod derives the increment from a measured period in ticks.
// A zero period (two triggers on consecutive ticks) is ignored.
func (l *Lfo) SetPeriod(ticks uint32) {
	if ticks == 0 {
		return
	}
	l.increment = uint32((uint64(1) << 32) / uint64(ticks))
}

func (l *Lfo) SetPitch(pitch int16) {
	l.pitch = pitch
	l.increment = incrementForPitch(pitch)
}

func (l *Lfo) SetMultiplier(n uint8) {
	if n < 1 {
		n = 1
	}
	l.multiplier = n
}

func (l *Lfo) SetDivider(n uint8) {
	if n < 1 {
		n = 1
	}
	if l.divider != n {
		l.divider = n
		if l.cycle >= n {
			l.cycle = 0
		}
	}
}

func (l *Lfo) SetInitialPhase(phase uint16) { l.initialPhase = phase }
func (l *Lfo) SetLevel(level uint16)        { l.level = level }
func (l *Lfo) SetHold(hold bool)            { l.hold = hold }
func (l *Lfo) SetDirection(up bool)         { l.up = up }

// LinkTo makes this oscillator follow the master's phase, hold and
// direction. Only links to another Lfo take effect; a nil master unlinks.
func (l *Lfo) LinkTo(master engine.Oscillator) {
	if m, ok := master.(*Lfo); ok && m != l {
		l.master = m
		return
	}
	l.master = nil
}

func (l *Lfo) Level() uint16 { return l.level }

// Pitch reports the last applied pitch, for status display.
func (l *Lfo) Pitch() int16 { return l.pitch }

// Step advances the oscillator one tick. Slaves do not accumulate phase
// of their own: they derive it from the master, divided and multiplied by
// their own ratio, with a cycle counter spreading divided output across
// the master's cycles.
func (l *Lfo) Step() {
	hold, up := l.hold, l.up
	if l.master != nil {
		hold, up = l.master.hold, l.master.up
	}

	if l.master == nil && !hold {
		if up {
			l.phase += l.increment
		} else {
			l.phase -= l.increment
		}
	}

	src := l.phase
	if l.master != nil {
		src = l.master.phase
	}

	if l.divider > 1 {
		wrapped := src < l.prevSrc
		if !up {
			wrapped = src > l.prevSrc
		}
		if wrapped && !hold {
			l.cycle++
			if l.cycle >= l.divider {
				l.cycle = 0
			}
		}
	} else {
		l.cycle = 0
	}
	l.prevSrc = src

	out := src
	if l.divider > 1 {
		span := uint32((uint64(1) << 32) / uint64(l.divider))
		out = src/uint32(l.divider) + uint32(l.cycle)*span
	}
	if l.multiplier > 1 {
		out *= uint32(l.multiplier)
	}
	l.shapePhase = out

	// resample the random sources once per shape cycle
	final := out + uint32(l.initialPhase)<<16
	wrapped := final < l.prevFinal
	if !up {
		wrapped = final > l.prevFinal
	}
	if wrapped && !hold {
		l.advanceRandom()
	}
	l.prevFinal = final
}

var _ engine.Oscillator = (*Lfo)(nil)
