package main

import (
	"github.com/hajimehoshi/oto"

	"github.com/jameskmurphy/nes/console"
)

// defaultSampleRate matches the teacher's SpeakerOto.Init default.
const defaultSampleRate = 44100

// otoPlayer pulls mono 16-bit PCM out of a Console and pushes it to the
// system's audio device, grounded in the teacher's SpeakerOto: a fixed-size
// scratch buffer converted to interleaved little-endian stereo bytes and
// written to an oto.Player once per frame.
type otoPlayer struct {
	context *oto.Context
	player  *oto.Player

	samples []int16
	buf     []byte
}

func newOtoPlayer(sampleRate int) (*otoPlayer, error) {
	const channelCount = 2
	const bitDepthBytes = 2
	chunkSamples := sampleRate / 60 // roughly one frame's worth of mono samples

	ctx, err := oto.NewContext(sampleRate, channelCount, bitDepthBytes, chunkSamples*channelCount*bitDepthBytes)
	if err != nil {
		return nil, err
	}
	return &otoPlayer{
		context: ctx,
		player:  ctx.NewPlayer(),
		samples: make([]int16, chunkSamples),
		buf:     make([]byte, chunkSamples*channelCount*bitDepthBytes),
	}, nil
}

// drain pulls whatever the console has queued this frame and writes it out
// as interleaved stereo, duplicating the APU's mono mix to both channels.
func (p *otoPlayer) drain(nes *console.Console) {
	n := nes.GetAudio(p.samples)
	if n == 0 {
		return
	}
	buf := p.buf[:n*4]
	for i := 0; i < n; i++ {
		v := p.samples[i]
		low := byte(v)
		high := byte(v >> 8)
		buf[i*4+0] = low
		buf[i*4+1] = high
		buf[i*4+2] = low
		buf[i*4+3] = high
	}
	p.player.Write(buf)
}

func (p *otoPlayer) close() {
	p.player.Close()
	p.context.Close()
}
