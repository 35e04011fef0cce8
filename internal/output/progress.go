package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar displays a progress bar with percentage and description.
// Example: [=========>          ] 45% Looking up versions
//
// On a terminal the bar is redrawn in place; elsewhere a single line is
// written when the bar completes.
type ProgressBar struct {
	total       int
	current     int
	description string
	width       int
	writer      io.Writer
}

// NewProgress creates a progress bar writing to w.
func NewProgress(w io.Writer, total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       30,
		writer:      w,
	}
}

// Increment advances the bar by one and redraws it.
func (p *ProgressBar) Increment() {
	if p.current < p.total {
		p.current++
	}
	p.render()
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.current == p.total && !writerIsTTY(p.writer) {
		return
	}
	p.current = p.total
	p.render()
	if writerIsTTY(p.writer) {
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressBar) render() {
	percentage, filled := 100, p.width
	if p.total > 0 {
		percentage = p.current * 100 / p.total
		filled = p.current * p.width / p.total
	}
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", p.width-filled) + "]"

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s %3d%% %s", bar, percentage, p.description)
	} else if p.current == p.total {
		fmt.Fprintf(p.writer, "%s %3d%% %s\n", bar, percentage, p.description)
	}
}
