// Package printer writes operator-facing console messages. Colour is
// disabled automatically when the output is not a terminal or NO_COLOR is
// set.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Printer writes to a single destination, usually stdout.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w. A nil w means os.Stdout.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

// Success prints a message in green with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprintln(p.w, msg)
}

// Info prints a message in the default colour.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

// Highlight prints a message in cyan, used for arrangement dumps.
func (p *Printer) Highlight(format string, a ...any) {
	cyan.Fprintf(p.w, format+"\n", a...)
}

// Warning prints a message in yellow.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.w, format+"\n", a...)
}

// Error prints a title in red followed by the error.
func (p *Printer) Error(title string, err error) {
	red.Fprintf(p.w, "%s\n", title)
	if err != nil {
		fmt.Fprintf(p.w, "  %v\n", err)
	}
}

// Prompt prints the input prompt without a trailing newline.
func (p *Printer) Prompt() {
	fmt.Fprint(p.w, "> ")
}
