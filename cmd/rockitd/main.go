// main.go - Process entry point. Wires Config -> synth.Engine -> the
// chosen Sink (audio thread) -> the configured transport(s) (control/
// transport threads) -> an optional cooperative stdin CLI (main thread),
// per spec.md §5's three-thread-plus-main concurrency model.

package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/1hedu/Respeaker-Core-Rockit/internal/patchfile"
	"github.com/1hedu/Respeaker-Core-Rockit/internal/synth"
	"github.com/1hedu/Respeaker-Core-Rockit/internal/transport"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		logger.Fatal("rockitd: config", "err", err)
	}

	engine := synth.NewEngine(cfg.SampleRate)

	if cfg.PatchFile != "" {
		loadPatchFile(engine, cfg.PatchFile, logger)
	}

	snk, err := openSink(cfg)
	if err != nil {
		logger.Fatal("rockitd: sink", "err", err)
	}
	if err := snk.Start(); err != nil {
		logger.Fatal("rockitd: sink start", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startTransports(ctx, cfg, engine, logger)

	var shuttingDown atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("rockitd: shutdown requested")
		shuttingDown.Store(true)
	}()

	var cliLines <-chan string
	if cfg.CLI {
		cliLines = startCLIReader()
	}

	runAudioLoop(engine, snk, cfg, &shuttingDown, cliLines, logger)

	cancel()
	if err := snk.Stop(); err != nil {
		logger.Warn("rockitd: sink stop", "err", err)
	}
	if err := snk.Close(); err != nil {
		logger.Warn("rockitd: sink close", "err", err)
	}
}

func runAudioLoop(engine *synth.Engine, snk interface {
	Write(pcm []int16) error
}, cfg *Config, shuttingDown *atomic.Bool, cliLines <-chan string, logger *log.Logger) {
	buf := make([]int16, cfg.PeriodFrames*2)
	for !shuttingDown.Load() {
		engine.Render(buf, cfg.PeriodFrames)
		// The audio thread's only permitted suspension point, per spec.md
		// §5: the blocking sink write.
		if err := snk.Write(buf); err != nil {
			logger.Warn("rockitd: sink write", "err", err)
		}
		if cliLines != nil {
			pollCLI(cliLines, engine, logger)
		}
	}
}

func loadPatchFile(engine *synth.Engine, path string, logger *log.Logger) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("rockitd: patch file open", "err", err)
		return
	}
	defer f.Close()

	values, err := patchfile.Load(f, logger)
	if err != nil {
		logger.Warn("rockitd: patch file load", "err", err)
		return
	}
	if err := engine.ApplyPatch(values); err != nil {
		logger.Warn("rockitd: patch file apply", "err", err)
	}
}

func startTransports(ctx context.Context, cfg *Config, engine *synth.Engine, logger *log.Logger) {
	var tcpPort int

	if cfg.TCPAddr != "" {
		bridge, err := transport.ListenTCP(cfg.TCPAddr, engine, logger)
		if err != nil {
			logger.Warn("rockitd: tcp bridge", "err", err)
		} else {
			if addr, ok := bridge.Addr().(*net.TCPAddr); ok {
				tcpPort = addr.Port
			}
			go func() {
				if err := bridge.Serve(); err != nil {
					logger.Warn("rockitd: tcp bridge serve", "err", err)
				}
			}()
			go func() {
				<-ctx.Done()
				bridge.Close()
			}()
		}
	}

	if cfg.HTTPAddr != "" {
		bridge := transport.NewHTTPBridge(cfg.HTTPAddr, engine, logger)
		go func() {
			if err := bridge.Serve(); err != nil {
				logger.Warn("rockitd: http bridge serve", "err", err)
			}
		}()
	}

	if cfg.UARTDev != "" {
		bridge, err := transport.OpenUART(cfg.UARTDev, cfg.UARTBaud, engine, logger)
		if err != nil {
			logger.Warn("rockitd: uart bridge", "err", err)
		} else {
			go func() {
				if err := bridge.Serve(); err != nil {
					logger.Warn("rockitd: uart bridge serve", "err", err)
				}
			}()
			go func() {
				<-ctx.Done()
				bridge.Close()
			}()
		}
	}

	if cfg.Discover && cfg.TCPAddr != "" && tcpPort != 0 {
		go func() {
			if err := transport.AdvertiseTCPBridge(ctx, "rockitd", tcpPort); err != nil {
				logger.Warn("rockitd: mdns discovery", "err", err)
			}
		}()
	}
}
