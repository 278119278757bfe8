// patchfile.go - The text patch format of spec.md §6: one `name=value` pair
// per line, `#` begins a comment, unknown names are left for the core to
// skip. This package only parses and serializes text; it has no opinion on
// which names are valid — that boundary is synth.Engine.ApplyPatch.

package patchfile

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Load parses name=value lines from r into a map. Blank lines and lines
// whose first non-whitespace character is '#' are skipped. A line missing
// '=' or whose value doesn't parse as an integer is logged and skipped
// rather than failing the whole load.
func Load(r io.Reader, logger *log.Logger) (map[string]int, error) {
	values := make(map[string]int)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			logger.Warn("patchfile: skipping malformed line", "line", lineNo)
			continue
		}
		name := strings.TrimSpace(line[:eq])
		v, err := strconv.Atoi(strings.TrimSpace(line[eq+1:]))
		if err != nil {
			logger.Warn("patchfile: skipping non-integer value", "line", lineNo, "name", name)
			continue
		}
		values[name] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("patchfile: read: %w", err)
	}
	return values, nil
}

// Save writes values as sorted name=value lines for deterministic output.
func Save(w io.Writer, values map[string]int) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "%s=%d\n", name, values[name]); err != nil {
			return fmt.Errorf("patchfile: write: %w", err)
		}
	}
	return bw.Flush()
}
