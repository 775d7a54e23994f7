package engine

import "math"

// Control scaling tables. The 8.8 tables have 257 entries so interp88 can
// always read index+1. Generation runs once at init and may use floats;
// everything at tick time is integer math on the finished tables.
var (
	lutScalePitch          [257]uint16
	lutScalePhase          [257]uint16
	lutScaleDivide         [256]int8
	lutScaleDivideMultiply [256]int8
)

func init() {
	// Phase/level curve: linear ramp over the full 16-bit range.
	for i := 0; i <= 256; i++ {
		lutScalePhase[i] = uint16((i*65535 + 128) / 256)
	}

	// Pitch curve: cubic-eased +-5 octave span around the center so the
	// middle of the pot travel has finer resolution than the extremes.
	for i := 0; i <= 256; i++ {
		n := float64(i)/128.0 - 1.0
		shaped := 0.7*n*n*n + 0.3*n
		lutScalePitch[i] = uint16(math.Round(32768 + shaped*5*Octave))
	}

	// Divide curve: exponential from /64 (pot fully CCW) down to /1.
	for i := 0; i < 256; i++ {
		t := float64(i) / 255.0
		lutScaleDivide[i] = int8(math.Round(math.Pow(64, 1-t)))
	}

	// Divide/multiply curve: /64 .. /2, unity at center, then x2 .. x64
	// (stored negative). 0 and -1 never appear in the table.
	for i := 0; i < 256; i++ {
		s := 1.0 - float64(i)/127.5
		mag := math.Round(math.Pow(64, math.Abs(s)))
		v := int8(mag)
		if s < 0 {
			v = -v
		}
		if v == -1 {
			v = -2
		}
		lutScaleDivideMultiply[i] = v
	}
}

// interp88 linearly interpolates a 257-entry table indexed by the high
// byte, with the low byte as the interpolation fraction.
func interp88(table *[257]uint16, index uint16) uint16 {
	i := index >> 8
	f := uint32(index & 0xff)
	a := uint32(table[i])
	b := uint32(table[i+1])
	return uint16(a + ((b-a)*f)>>8)
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
