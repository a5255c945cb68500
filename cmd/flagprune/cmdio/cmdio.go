// Package cmdio holds the small IO-stream helper shared by commands.
package cmdio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// IO holds the input and output streams for a command. If Out or Err are not
// set, the std streams are used.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Quiet suppresses PrintLoud* output; Print* without "Loud" still print.
	Quiet bool
}

// From builds an IO from a cobra command's configured streams.
func From(cmd *cobra.Command) IO {
	return IO{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	}
}

func (io IO) Println(args ...interface{}) {
	if io.Out == nil {
		fmt.Println(args...)
	} else {
		fmt.Fprintln(io.Out, args...)
	}
}

func (io IO) PrintErrln(args ...interface{}) {
	if io.Err == nil {
		fmt.Fprintln(os.Stderr, args...)
	} else {
		fmt.Fprintln(io.Err, args...)
	}
}

func (io IO) Printf(format string, args ...interface{}) {
	if io.Out == nil {
		fmt.Printf(format, args...)
	} else {
		fmt.Fprintf(io.Out, format, args...)
	}
}

func (io IO) PrintErrf(format string, args ...interface{}) {
	if io.Err == nil {
		fmt.Fprintf(os.Stderr, format, args...)
	} else {
		fmt.Fprintf(io.Err, format, args...)
	}
}

func (io IO) PrintLoudln(args ...interface{}) {
	if !io.Quiet {
		io.Println(args...)
	}
}

func (io IO) PrintLoudf(format string, args ...interface{}) {
	if !io.Quiet {
		io.Printf(format, args...)
	}
}

// OxfordCommaJoin joins items with a serial comma before the final "and".
func (io IO) OxfordCommaJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}

	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i+1 == len(items) {
			sb.WriteString("and ")
		}
		sb.WriteString(item)
	}
	return sb.String()
}

// CountOf pluralizes word based on count, in the form "N word(s)".
func (io IO) CountOf(count int, word string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}
