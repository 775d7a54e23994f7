package sim

import (
	"sync"

	"github.com/velodsp/quadlfo/quadlfo/engine"
)

// Frame is the eight DAC values of one tick: a sine output and an
// assignable-shape output per channel.
type Frame struct {
	Sine   [engine.NumChannels]int16
	Assign [engine.NumChannels]int16
}

const (
	// history retained for the scope view
	maxFrames = 4096
	// monitor ring bounds, in samples
	maxMonitor    = 65536
	monitorRetain = 32768
)

// Capture implements the engine's SampleWriter. It keeps the last frame,
// a bounded frame history for the scope, and a mono monitor ring for
// audio playback. Latch must be called once per tick, after Process.
type Capture struct {
	frame Frame

	mu      sync.Mutex
	history []Frame
	monitor []int16
}

func NewCapture() *Capture {
	return &Capture{
		history: make([]Frame, 0, maxFrames),
		monitor: make([]int16, 0, maxMonitor),
	}
}

func (c *Capture) SetSine(ch int, sample int16)   { c.frame.Sine[ch] = sample }
func (c *Capture) SetAssign(ch int, sample int16) { c.frame.Assign[ch] = sample }

// Latch records the completed frame into the history and monitor buffers.
func (c *Capture) Latch() {
	var mix int32
	for i := 0; i < engine.NumChannels; i++ {
		mix += int32(c.frame.Assign[i])
	}

	c.mu.Lock()
	c.history = append(c.history, c.frame)
	if len(c.history) > maxFrames {
		c.history = c.history[len(c.history)-maxFrames/2:]
	}
	c.monitor = append(c.monitor, int16(mix/engine.NumChannels))
	if len(c.monitor) > maxMonitor {
		c.monitor = c.monitor[len(c.monitor)-monitorRetain:]
	}
	c.mu.Unlock()
}

// Last returns the most recently written frame.
func (c *Capture) Last() Frame { return c.frame }

// History copies up to n recent frames into dst and reports how many
// were copied, most recent last.
func (c *Capture) History(dst []Frame) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(dst)
	if n > len(c.history) {
		n = len(c.history)
	}
	copy(dst[:n], c.history[len(c.history)-n:])
	return n
}

// Samples drains up to count samples from the monitor ring.
func (c *Capture) Samples(count int) []int16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count > len(c.monitor) {
		count = len(c.monitor)
	}
	out := make([]int16, count)
	copy(out, c.monitor[:count])
	c.monitor = c.monitor[count:]
	return out
}

var _ engine.SampleWriter = (*Capture)(nil)
