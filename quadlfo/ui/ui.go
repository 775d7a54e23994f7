// Package ui holds the control-surface state the engine reads every tick:
// pot positions, switch states, the feature mode and per-channel wavebank
// selection. It is a snapshot store, not an input driver — debouncing,
// long-press handling and LED feedback belong to the hardware frontend.
package ui

// FeatureMode selects how the four channels relate to each other.
type FeatureMode uint8

const (
	FeatModeFree FeatureMode = iota
	FeatModeQuad
	FeatModePhase
	FeatModeDivide

	featModeCount
)

func (m FeatureMode) String() string {
	switch m {
	case FeatModeFree:
		return "free"
	case FeatModeQuad:
		return "quad"
	case FeatModePhase:
		return "phase"
	case FeatModeDivide:
		return "divide"
	}
	return "unknown"
}

// Mode is the state of the user interface itself. The engine only cares
// whether we are past the splash animation.
type Mode uint8

const (
	ModeSplash Mode = iota
	ModeNormal
	ModeZoom
	ModeWavebankSelect
)

// WaveBank selects which shape family a channel draws from.
type WaveBank uint8

const (
	BankClassic WaveBank = iota
	BankRandom
)

// NumChannels is the channel count of the control surface and the engine.
const NumChannels = 4

const (
	switchSync = iota
	switchShapeLow
	switchShapeHigh
	numSwitches
)

// Surface is the control snapshot consumed by the engine. Raw pot values
// are stored as sampled (0-65535); the accessors apply the same
// conversions the hardware frontend applies (fine pots are re-centered,
// the shape selector is derived from two switch bits).
type Surface struct {
	coarse [NumChannels]uint16
	fine   [NumChannels]uint16
	phase  [NumChannels]uint16
	level  [NumChannels]uint16
	atten  [NumChannels]uint16

	switches [numSwitches]bool

	mode     Mode
	featMode FeatureMode

	bank       [NumChannels]WaveBank
	randomWave [NumChannels]uint8
}

// NewSurface returns a surface in its power-on state: normal UI mode,
// free-running feature mode, all pots centered, full levels and
// attenuation so the engine produces output without further setup.
func NewSurface() *Surface {
	s := &Surface{
		mode:     ModeNormal,
		featMode: FeatModeFree,
	}
	for i := 0; i < NumChannels; i++ {
		s.coarse[i] = 32768
		s.fine[i] = 32768
		s.phase[i] = 0
		s.level[i] = 65535
		s.atten[i] = 65535
	}
	return s
}

func (s *Surface) Coarse(ch int) uint16 { return s.coarse[ch] }

// Fine re-centers the raw pot value around zero.
func (s *Surface) Fine(ch int) int16 { return int16(int32(s.fine[ch]) - 32768) }

func (s *Surface) Phase(ch int) uint16 { return s.phase[ch] }
func (s *Surface) Level(ch int) uint16 { return s.level[ch] }
func (s *Surface) Atten(ch int) uint16 { return s.atten[ch] }

func (s *Surface) FeatureMode() FeatureMode { return s.featMode }
func (s *Surface) UIMode() Mode             { return s.mode }
func (s *Surface) Bank(ch int) WaveBank     { return s.bank[ch] }

// Shape is the base shape selector encoded by the two shape switches.
func (s *Surface) Shape() uint8 {
	var v uint8
	if s.switches[switchShapeHigh] {
		v |= 2
	}
	if s.switches[switchShapeLow] {
		v |= 1
	}
	return v
}

func (s *Surface) RandomWaveformIndex(ch int) uint8 { return s.randomWave[ch] }
func (s *Surface) SyncMode() bool                   { return s.switches[switchSync] }

func (s *Surface) SetCoarse(ch int, v uint16) { s.coarse[ch] = v }
func (s *Surface) SetFineRaw(ch int, v uint16) { s.fine[ch] = v }
func (s *Surface) SetPhase(ch int, v uint16)  { s.phase[ch] = v }
func (s *Surface) SetLevel(ch int, v uint16)  { s.level[ch] = v }
func (s *Surface) SetAtten(ch int, v uint16)  { s.atten[ch] = v }

func (s *Surface) SetUIMode(m Mode)                 { s.mode = m }
func (s *Surface) SetFeatureMode(m FeatureMode)     { s.featMode = m }
func (s *Surface) SetBank(ch int, b WaveBank)       { s.bank[ch] = b }
func (s *Surface) SetRandomWaveformIndex(ch int, v uint8) { s.randomWave[ch] = v }

func (s *Surface) SetSyncMode(on bool) { s.switches[switchSync] = on }

// SetShapeSwitches sets the two shape selector switches directly.
func (s *Surface) SetShapeSwitches(high, low bool) {
	s.switches[switchShapeHigh] = high
	s.switches[switchShapeLow] = low
}

// SetShape encodes a base shape selector (0-3) back into switch states.
func (s *Surface) SetShape(v uint8) {
	s.SetShapeSwitches(v&2 != 0, v&1 != 0)
}

// CycleFeatureMode advances to the next feature mode, wrapping around.
func (s *Surface) CycleFeatureMode() FeatureMode {
	s.featMode = (s.featMode + 1) % featModeCount
	return s.featMode
}
