package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ProgressBar shows how many rig documents of a batch have been processed
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	label   string
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Total   int
	Width   int // Default: 30
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 30
	}
	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		width:   width,
		noColor: opts.NoColor,
	}
}

// Step advances the bar by one and labels it with the item just finished
func (p *ProgressBar) Step(label string) {
	if p.current < p.total {
		p.current++
	}
	p.label = label
	p.render()
}

// Current returns the number of finished items
func (p *ProgressBar) Current() int {
	return p.current
}

// Finish ends the bar's line and prints a summary
func (p *ProgressBar) Finish(message string) {
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
	WriteSuccess(p.writer, message, p.noColor)
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	filled := p.width * p.current / p.total

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	fmt.Fprintf(p.writer, "\r\033[K%s %d/%d %s", bar.String(), p.current, p.total, p.label)
}
