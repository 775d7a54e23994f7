// Package playback streams the module's captured output to the host
// audio device so the LFOs can be monitored by ear.
package playback

import (
	"github.com/ebitengine/oto/v3"

	"github.com/velodsp/quadlfo/quadlfo/engine"
	"github.com/velodsp/quadlfo/quadlfo/sim"
)

// Player pulls mono samples from a Capture and feeds them to the audio
// device. Underruns are padded with silence so the stream never stalls.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	capture *sim.Capture
}

func NewPlayer(capture *sim.Capture) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   engine.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &Player{
		ctx:     ctx,
		capture: capture,
	}, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.player = p.ctx.NewPlayer(p)
	p.player.Play()
}

// Read implements io.Reader for the oto player: little-endian signed
// 16-bit mono.
func (p *Player) Read(buf []byte) (int, error) {
	want := len(buf) / 2
	samples := p.capture.Samples(want)

	for i := 0; i < want; i++ {
		var s int16
		if i < len(samples) {
			s = samples[i]
		}
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(uint16(s) >> 8)
	}
	return want * 2, nil
}

// Close stops playback.
func (p *Player) Close() error {
	if p.player != nil {
		return p.player.Close()
	}
	return nil
}
