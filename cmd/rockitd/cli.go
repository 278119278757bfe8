// cli.go - The cooperative stdin command reader of spec.md §5: stdin is
// read on the main thread "cooperatively (non-blocking) between PCM
// writes". A background goroutine does the actual blocking line read and
// hands lines to the main loop over a channel the render loop polls
// without blocking.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/1hedu/Respeaker-Core-Rockit/internal/synth"
)

func startCLIReader() <-chan string {
	lines := make(chan string, 32)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	return lines
}

// pollCLI drains any command lines currently waiting, without blocking.
func pollCLI(lines <-chan string, engine *synth.Engine, logger *log.Logger) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			runCLICommand(engine, logger, line)
		default:
			return
		}
	}
}

func runCLICommand(engine *synth.Engine, logger *log.Logger, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "noteon":
		note, vel := atoiOr(fields, 1, 60), atoiOr(fields, 2, 100)
		engine.NoteOn(note, vel)
	case "noteoff":
		engine.NoteOff(atoiOr(fields, 1, 60))
	case "cc":
		engine.HandleCC(atoiOr(fields, 1, 0), atoiOr(fields, 2, 0))
	case "save":
		if err := engine.SavePatch(atoiOr(fields, 1, 0)); err != nil {
			logger.Warn("cli: save failed", "err", err)
		}
	case "recall":
		if err := engine.RecallPatch(atoiOr(fields, 1, 0)); err != nil {
			logger.Warn("cli: recall failed", "err", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "rockitd: unknown command %q\n", fields[0])
	}
}

func atoiOr(fields []string, idx, deflt int) int {
	if idx >= len(fields) {
		return deflt
	}
	v, err := strconv.Atoi(fields[idx])
	if err != nil {
		return deflt
	}
	return v
}
