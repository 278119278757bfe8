//go:build headless

package main

import "github.com/1hedu/Respeaker-Core-Rockit/internal/sink"

func openSink(cfg *Config) (sink.Sink, error) {
	return sink.NewHeadlessSink(cfg.SampleRate)
}
