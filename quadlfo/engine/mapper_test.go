package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sweepFines = []int16{-32768, -26000, -10000, -1, 0, 1, 10000, 32767}
var sweepCVs = []int16{-32768, -5000, 0, 5000, 32767}

func TestMapDividerRange(t *testing.T) {
	for pot := 0; pot <= 65535; pot += 129 {
		for _, fine := range sweepFines {
			for _, cv := range sweepCVs {
				d := MapDivider(uint16(pot), fine, cv)
				if d < 1 || d > 64 {
					t.Fatalf("MapDivider(%d, %d, %d) = %d, out of [1,64]", pot, fine, cv, d)
				}
			}
		}
	}
}

func TestMapDividerMultiplierRange(t *testing.T) {
	for pot := 0; pot <= 65535; pot += 129 {
		for _, fine := range sweepFines {
			for _, cv := range sweepCVs {
				d := MapDividerMultiplier(uint16(pot), fine, cv)
				ok := (d >= 1 && d <= 64) || (d >= -64 && d <= -2)
				if !ok {
					t.Fatalf("MapDividerMultiplier(%d, %d, %d) = %d, out of [-64,-2]u[1,64]", pot, fine, cv, d)
				}
			}
		}
	}
}

// potForDivMult finds a pot value whose table entry is the wanted raw
// divider/multiplier, so the fine tie-break paths can be hit directly.
func potForDivMult(t *testing.T, want int8) uint16 {
	t.Helper()
	for i := 0; i < 256; i++ {
		if lutScaleDivideMultiply[i] == want {
			return uint16(i << 8)
		}
	}
	t.Fatalf("no table entry with value %d", want)
	return 0
}

func TestMapDividerMultiplierTieBreaks(t *testing.T) {
	// rescaled fine steps: 32767 => +2, 10000 => +1, -26000 => -2, -10000 => -1
	require.Equal(t, int32(2), fineStep(32767))
	require.Equal(t, int32(1), fineStep(10000))
	require.Equal(t, int32(-2), fineStep(-26000))
	require.Equal(t, int32(-1), fineStep(-10000))

	tests := []struct {
		name  string
		entry int8
		fine  int16
		want  int8
	}{
		{"2 - 2 lands on 0, forced to -2", 2, 32767, -2},
		{"1 - 2 lands on -1, forced to -3", 1, 32767, -3},
		{"1 - 1 lands on 0, forced to -2", 1, 10000, -2},
		{"-2 + 2 lands on 0, forced to 2", -2, -26000, 2},
		{"unity minus -1 step", 1, -10000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pot := potForDivMult(t, tt.entry)
			assert.Equal(t, tt.want, MapDividerMultiplier(pot, tt.fine, 0))
		})
	}
}

func TestLevelResponseIsLinear(t *testing.T) {
	// the shared curve table is a straight ramp: the level mapper must
	// track pot position (minus its fixed offset) within rounding
	for pot := 1024; pot <= 65535; pot += 513 {
		got := int32(MapLevel(uint16(pot), 0, 0))
		want := int32(pot) - 256
		assert.InDelta(t, want, got, 2, "pot=%d", pot)
	}
}

func TestPhaseResponseMonotonic(t *testing.T) {
	// pot is inverted, so phase decreases as the pot value rises
	prev := int32(MapPhase(1, 0, 0))
	for pot := 258; pot <= 65535; pot += 257 {
		cur := int32(MapPhase(uint16(pot), 0, 0))
		assert.LessOrEqual(t, cur, prev, "pot=%d", pot)
		prev = cur
	}
}

func TestPitchCurveShape(t *testing.T) {
	// monotonic over the whole sweep
	prev := MapPitch(0, 0, 0)
	for coarse := 256; coarse <= 65535; coarse += 256 {
		cur := MapPitch(uint16(coarse), 0, 0)
		assert.GreaterOrEqual(t, cur, prev, "coarse=%d", coarse)
		prev = cur
	}

	// curved, not linear: the ends move faster than the center
	endSpan := int32(lutScalePitch[256]) - int32(lutScalePitch[224])
	midSpan := int32(lutScalePitch[144]) - int32(lutScalePitch[112])
	assert.Greater(t, endSpan, midSpan)

	// centered: mid pot with no fine and no CV is pitch zero
	assert.Equal(t, int16(0), MapPitch(32768, 0, 0))
}

func TestMapPitchContributions(t *testing.T) {
	// fine spans one octave across its full travel
	assert.Equal(t, int16(Octave/2-1), MapPitch(32768, 32767, 0))
	assert.Equal(t, int16(-Octave/2), MapPitch(32768, -32768, 0))

	// CV spans five octaves of upward travel
	assert.Equal(t, int16(5*Octave-1), MapPitch(32768, 0, 32767))
}
