// Package format implements a pluggable post-processing step that collapses
// runs of blank lines a fully-removed construct leaves behind down to at
// most MaxBlankLines in a row. dekarrin/rosed, used elsewhere in this engine
// for the rewrite planner's block re-indentation (see rewrite.go), has an
// API built for paragraph wrapping and definition tables in prose output,
// with no blank-run primitive suited to source code, so this narrower
// cleanup pass is plain string splitting instead.
package format

import (
	"strings"

	"github.com/flagprune/flagprune"
)

// Blank collapses runs of blank lines down to at most MaxBlankLines.
type Blank struct {
	MaxBlankLines int
}

var _ flagprune.Formatter = Blank{}

func (b Blank) Format(src string) (string, error) {
	return collapseBlankRuns(src, b.maxBlankLines()), nil
}

func (b Blank) maxBlankLines() int {
	if b.MaxBlankLines <= 0 {
		return 1
	}
	return b.MaxBlankLines
}

func collapseBlankRuns(src string, max int) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	run := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			run++
			if run > max {
				continue
			}
		} else {
			run = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
