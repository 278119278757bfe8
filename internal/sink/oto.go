//go:build !headless

// oto.go - Cross-platform, no-cgo sink backed by ebitengine/oto/v3, the
// teacher's own default audio backend (audio_backend_oto.go). oto's native
// API is pull-based (an io.Reader the player drains); this wraps it behind
// the engine's blocking-Write contract with an io.Pipe, whose Write blocks
// until the player's Read drains it — that blocking is exactly the
// backpressure spec.md §5 wants the audio thread to suspend on.

package sink

import (
	"encoding/binary"
	"io"

	"github.com/ebitengine/oto/v3"
)

type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	pr     *io.PipeReader
	byteBuf []byte
}

// NewOtoSink opens an oto context at sampleRate, stereo 16-bit.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	return &OtoSink{ctx: ctx, player: player, pw: pw, pr: pr}, nil
}

func (s *OtoSink) Start() error {
	s.player.Play()
	return nil
}

// Write blocks until oto's playback goroutine has drained pcm via the pipe.
func (s *OtoSink) Write(pcm []int16) error {
	need := len(pcm) * 2
	if cap(s.byteBuf) < need {
		s.byteBuf = make([]byte, need)
	}
	s.byteBuf = s.byteBuf[:need]
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(s.byteBuf[i*2:], uint16(v))
	}
	_, err := s.pw.Write(s.byteBuf)
	return err
}

func (s *OtoSink) Stop() error {
	s.player.Pause()
	return nil
}

func (s *OtoSink) Close() error {
	_ = s.player.Close()
	_ = s.pw.Close()
	return s.pr.Close()
}
