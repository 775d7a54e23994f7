package engine

// Control mappers: pure fixed-point conversions from a raw coarse/pot
// value, a centered fine offset and a CV contribution to an oscillator
// parameter. No state, no floats, deterministic for all 16-bit inputs.

// MapPitch converts pot values to pitch in 1/128-semitone units. Coarse
// runs through the pitch curve and is re-centered; fine spans one octave;
// CV spans five octaves. The sum is not clamped, the oscillator's own
// pitch range bounds it.
func MapPitch(coarse uint16, fine, cv int16) int16 {
	c := int32(interp88(&lutScalePitch, coarse)) - 32768
	f := (1 * Octave * int32(fine)) >> 16
	v := (int32(cv) * 5 * Octave) >> 15
	return int16(c + f + v)
}

// fineStep rescales a centered fine value to a small divider correction
// in [-3, 2].
func fineStep(fine int16) int32 {
	return (5 * (int32(fine) + 32767/5)) >> 16
}

// MapDivider converts pot values to a clock divider in [1, 64].
func MapDivider(pot uint16, fine, cv int16) uint8 {
	ctrl := clamp(int32(pot)+int32(cv), 0, 65535)
	div := int32(lutScaleDivide[ctrl>>8])
	div -= fineStep(fine)
	return uint8(clamp(div, 1, 64))
}

// MapDividerMultiplier converts pot values to a divider (positive) or a
// multiplier (negative magnitude) in [-64,-2] or [1,64]. The fine
// adjustment can step across the unity point; the corrections below keep
// the result off the unreachable values 0 and -1. The exact outcomes are
// part of the musical contract, do not simplify them.
func MapDividerMultiplier(pot uint16, fine, cv int16) int8 {
	ctrl := clamp(int32(pot)+int32(cv), 0, 65535)
	step := fineStep(fine)
	div := int32(lutScaleDivideMultiply[ctrl>>8])
	switch {
	case step > 1:
		div -= step
		if div == 0 {
			// 2 - 2 => 0 (2,1,-2)
			div = -2
		} else if div == -1 {
			// 1 - 2 => -1 (1,-2,-3)
			div = -3
		}
	case step == 1:
		div -= step
		if div == 0 {
			// 1 - 1 => 0 (1,-2)
			div = -2
		}
	case step < -1:
		div -= step
		if div == 0 {
			// -2 - -2 => 0 (-2,1,2)
			div = 2
		}
	case step == -1:
		div -= step
	}
	if div >= -1 {
		div = clamp(div, 1, 64)
	} else {
		div = clamp(div, -64, -2)
	}
	return int8(div)
}

// MapPhase converts pot values to an initial phase offset. The pot is
// inverted so clockwise travel advances the phase.
func MapPhase(pot uint16, fine, cv int16) uint16 {
	pot = -pot
	ctrl := clamp(int32(pot)+int32(cv)+int32(fine)/8, 0, 65535)
	return interp88(&lutScalePhase, uint16(ctrl))
}

// MapLevel converts pot values to an output level. The phase curve is
// exactly linear, so it doubles as the level curve.
func MapLevel(pot uint16, fine, cv int16) uint16 {
	ctrl := int32(pot) + int32(cv) - 256
	ctrl += int32(fine) / 4
	ctrl = clamp(ctrl, 0, 65535)
	return interp88(&lutScalePhase, uint16(ctrl))
}
