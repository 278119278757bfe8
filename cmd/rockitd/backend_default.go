//go:build !headless

package main

import (
	"fmt"

	"github.com/1hedu/Respeaker-Core-Rockit/internal/sink"
)

func openSink(cfg *Config) (sink.Sink, error) {
	switch cfg.Backend {
	case "oto":
		return sink.NewOtoSink(cfg.SampleRate)
	case "alsa":
		return sink.NewAlsaSink(cfg.SampleRate, cfg.PeriodFrames)
	case "portaudio":
		return sink.NewPortAudioSink(cfg.SampleRate, cfg.PeriodFrames)
	default:
		return nil, fmt.Errorf("%w: %q", sink.ErrUnknownBackend, cfg.Backend)
	}
}
