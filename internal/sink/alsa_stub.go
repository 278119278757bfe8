//go:build !headless && !linux

// alsa_stub.go - ALSA is Linux-only; everywhere else -backend=alsa fails
// fast with a clear error instead of the build breaking.

package sink

import "errors"

var errAlsaUnsupported = errors.New("sink: alsa backend is only available on linux")

func NewAlsaSink(sampleRate, periodFrames int) (*AlsaSink, error) {
	return nil, errAlsaUnsupported
}

// AlsaSink is an opaque placeholder on non-Linux platforms so callers can
// still reference the type name.
type AlsaSink struct{}

func (s *AlsaSink) Start() error            { return nil }
func (s *AlsaSink) Write(pcm []int16) error { return errAlsaUnsupported }
func (s *AlsaSink) Stop() error             { return nil }
func (s *AlsaSink) Close() error            { return nil }
