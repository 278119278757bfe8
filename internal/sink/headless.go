//go:build headless

// headless.go - No-op sink for headless builds and tests, grounded on the
// teacher's audio_backend_headless.go stub.

package sink

type HeadlessSink struct{}

func NewHeadlessSink(sampleRate int) (*HeadlessSink, error) {
	return &HeadlessSink{}, nil
}

func (s *HeadlessSink) Start() error          { return nil }
func (s *HeadlessSink) Write(pcm []int16) error { return nil }
func (s *HeadlessSink) Stop() error           { return nil }
func (s *HeadlessSink) Close() error          { return nil }
