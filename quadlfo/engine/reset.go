package engine

// Reset input trigger detection. The two thresholds form a schmitt
// trigger: the input must fall below the low threshold to arm before a
// crossing of the high threshold fires, so noise riding on an edge
// cannot re-trigger.
const (
	ResetThresholdLow  = 10000
	ResetThresholdHigh = 20000
)

// subsampleSteps is the resolution of the trigger timing estimate, in
// fractions of one tick.
const subsampleSteps = 32

// resetTracker is the per-channel trigger edge detector. On a confirmed
// edge it estimates, by linear interpolation between the previous and
// current samples, how far into the previous inter-tick interval the
// signal crossed the high threshold.
type resetTracker struct {
	armed     bool
	triggered bool
	subsample int32
	prev      int16
}

// observe processes one raw reset sample. triggered holds for exactly the
// tick on which the edge is confirmed; armed stays down until the signal
// falls below the low threshold again.
func (r *resetTracker) observe(sample int16) {
	if sample < ResetThresholdLow {
		r.armed = true
	}

	if sample > ResetThresholdHigh && r.armed {
		r.triggered = true
		distToTrig := int32(ResetThresholdHigh) - int32(r.prev)
		distToNext := int32(sample) - int32(r.prev)
		if distToNext <= 0 {
			// Equal or inverted samples at the fire instant make the
			// interpolation degenerate; treat the crossing as aligned
			// with the previous sample.
			r.subsample = 0
		} else {
			r.subsample = clamp(distToTrig*subsampleSteps/distToNext, 0, subsampleSteps)
		}
	} else {
		r.triggered = false
	}

	r.prev = sample
}
