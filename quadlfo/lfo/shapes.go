package lfo

import (
	"math"

	"github.com/velodsp/quadlfo/quadlfo/engine"
)

// lutSine has 1025 entries so the interpolation can always read index+1.
var lutSine [1025]int16

// lutIncrement maps semitones across the pitch range to per-tick phase
// increments, interpolated on the low 7 bits of the pitch value.
var lutIncrement [2*pitchOctaves*12 + 2]uint32

// baseHz is the frequency at pitch zero.
const baseHz = 2.0

func init() {
	for i := 0; i <= 1024; i++ {
		lutSine[i] = int16(math.Round(32767 * math.Sin(2*math.Pi*float64(i)/1024)))
	}
	for i := range lutIncrement {
		semitones := float64(i - pitchOctaves*12)
		f := baseHz * math.Exp2(semitones/12)
		lutIncrement[i] = uint32(math.Round(f * 4294967296.0 / engine.SampleRate))
	}
}

func incrementForPitch(pitch int16) uint32 {
	p := int32(pitch)
	if p < minPitch {
		p = minPitch
	} else if p > maxPitch {
		p = maxPitch
	}
	idx := (p >> 7) + pitchOctaves*12
	frac := uint32(p & 127)
	a := lutIncrement[idx]
	b := lutIncrement[idx+1]
	return a + ((b-a)*frac)>>7
}

func sineAt(phase uint32) int16 {
	i := phase >> 22
	f := (phase >> 14) & 0xff
	a := int32(lutSine[i])
	b := int32(lutSine[i+1])
	return int16(a + ((b-a)*int32(f))>>8)
}

// ComputeSampleShape renders the current phase through the requested
// shape, scaled by the channel level. The classic shapes are plain
// piecewise functions of the phase; the random family interpolates
// between values resampled once per cycle.
func (l *Lfo) ComputeSampleShape(shape engine.Shape) int16 {
	p := l.shapePhase + uint32(l.initialPhase)<<16
	pos := int32(p >> 16) // 0..65535 position within the cycle

	var s int32
	switch shape {
	case engine.ShapeSine:
		s = int32(sineAt(p))
	case engine.ShapeTrapezoid:
		quarter := p >> 30
		within := int32((p >> 14) & 0xffff)
		switch quarter {
		case 0:
			s = -32768 + within
		case 1:
			s = 32767
		case 2:
			s = 32767 - within
		default:
			s = -32768
		}
	case engine.ShapeRamp:
		s = pos - 32768
	case engine.ShapeSaw:
		s = 32767 - pos
	case engine.ShapeSquare:
		if p < 1<<31 {
			s = 32767
		} else {
			s = -32768
		}
	case engine.ShapeRandomStep:
		s = int32(l.randValue)
	case engine.ShapeRandomRamp:
		s = lerp(l.randPrev, l.randValue, uint32(pos))
	case engine.ShapeRandomSmooth:
		// cosine easing between the random values, reusing the sine table
		eased := uint32(32768 + int32(sineAt(p/2+0xC0000000)))
		s = lerp(l.randPrev, l.randValue, eased)
	case engine.ShapeRandomWalk:
		s = lerp(l.walkPrev, l.walkValue, uint32(pos))
	}

	return int16(s * int32(l.level) >> 16)
}

func lerp(from, to int16, frac uint32) int32 {
	return int32(int64(from) + (int64(to)-int64(from))*int64(frac)>>16)
}

// advanceRandom draws the next values for the random shape family: a
// full-range sample for step/ramp/smooth and a bounded step for the walk.
func (l *Lfo) advanceRandom() {
	l.randPrev = l.randValue
	l.randValue = int16(l.nextRand())

	l.walkPrev = l.walkValue
	step := int32(int16(l.nextRand())) >> 4
	w := int32(l.walkValue) + step
	if w > 32767 {
		w = 32767
	} else if w < -32767 {
		w = -32767
	}
	l.walkValue = int16(w)
}

// xorshift32
func (l *Lfo) nextRand() uint32 {
	x := l.randState
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	l.randState = x
	return x
}
