// Package timing paces the host loop that drives the engine: ticks are
// processed in fixed-size blocks, and a Limiter spaces the blocks so the
// simulation advances at the nominal sample rate.
package timing

import (
	"time"

	"github.com/velodsp/quadlfo/quadlfo/engine"
)

// TicksPerBlock is how many engine ticks the host runs per wakeup.
const TicksPerBlock = 128

// BlockDuration returns the wall-clock duration of one block.
func BlockDuration() time.Duration {
	return time.Duration(TicksPerBlock) * time.Second / engine.SampleRate
}

// Limiter controls block pacing.
type Limiter interface {
	// WaitForNextBlock blocks until it's time for the next block.
	// Returns immediately if timing is behind schedule.
	WaitForNextBlock()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless runs).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextBlock() {}
func (n *noOpLimiter) Reset()            {}

// TickerLimiter uses time.Ticker for simple, consistent block timing.
type TickerLimiter struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

func NewTickerLimiter() *TickerLimiter {
	ticker := time.NewTicker(BlockDuration())
	return &TickerLimiter{
		ticker: ticker,
		ch:     ticker.C,
	}
}

func (t *TickerLimiter) WaitForNextBlock() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(BlockDuration())
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
