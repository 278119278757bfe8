// config.go - Process configuration resolved once at startup from CLI
// flags, grounded on doismellburning-samoyed's spf13/pflag usage. Nothing
// in internal/synth reads flags directly.

package main

import (
	"github.com/spf13/pflag"
)

// Config is the fully-resolved process configuration.
type Config struct {
	SampleRate   int
	PeriodFrames int
	Backend      string // oto | alsa | portaudio; ignored by headless builds

	TCPAddr  string
	HTTPAddr string
	UARTDev  string
	UARTBaud int

	Discover bool

	PatchFile string
	CLI       bool
}

// ParseConfig resolves flags into a Config.
func ParseConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("rockitd", pflag.ContinueOnError)

	cfg := &Config{}
	fs.IntVar(&cfg.SampleRate, "sample-rate", 48000, "audio sample rate in Hz")
	fs.IntVar(&cfg.PeriodFrames, "period", 256, "audio period size in frames")
	fs.StringVar(&cfg.Backend, "backend", "oto", "audio backend: oto|alsa|portaudio (a headless build ignores this and uses its no-op sink)")

	fs.StringVar(&cfg.TCPAddr, "tcp-addr", "", "raw TCP MIDI bridge listen address (empty disables)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "HTTP MIDI bridge listen address (empty disables)")
	fs.StringVar(&cfg.UARTDev, "uart-dev", "", "UART MIDI bridge device path (empty disables)")
	fs.IntVar(&cfg.UARTBaud, "uart-baud", 31250, "UART baud rate")
	fs.BoolVar(&cfg.Discover, "discover", false, "advertise the TCP bridge over mDNS")

	fs.StringVar(&cfg.PatchFile, "patch", "", "initial patch file to load (empty skips)")
	fs.BoolVar(&cfg.CLI, "cli", false, "enable the cooperative stdin command reader")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
