//go:build !headless

// portaudio.go - Alternate blocking-write sink via gordonklaus/portaudio,
// grounded on that library's direct-blocking-Write model (doismellburning-
// samoyed pulls in the same dependency for its own audio bridge work).

package sink

import (
	"errors"

	"github.com/gordonklaus/portaudio"
)

var errShortPortAudioBuffer = errors.New("sink: portaudio buffer smaller than period")

// PortAudioSink writes stereo 16-bit PCM through a blocking portaudio
// stream. out is the bound output buffer portaudio's non-callback blocking
// mode writes from on every Write call.
type PortAudioSink struct {
	stream *portaudio.Stream
	out    []int16
}

// NewPortAudioSink opens the default output device at sampleRate with the
// given period size in frames.
func NewPortAudioSink(sampleRate, periodFrames int) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, err
	}
	params := portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
	params.Output.Channels = 2
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = periodFrames

	out := make([]int16, periodFrames*2)
	stream, err := portaudio.OpenStream(params, &out)
	if err != nil {
		return nil, err
	}
	return &PortAudioSink{stream: stream, out: out}, nil
}

func (s *PortAudioSink) Start() error { return s.stream.Start() }

// Write blocks inside the stream's internal buffer until portaudio has
// room, the same backpressure contract as the ALSA and oto backends.
func (s *PortAudioSink) Write(pcm []int16) error {
	n := copy(s.out, pcm)
	if n < len(pcm) {
		return errShortPortAudioBuffer
	}
	return s.stream.Write()
}

func (s *PortAudioSink) Stop() error  { return s.stream.Stop() }
func (s *PortAudioSink) Close() error {
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}
