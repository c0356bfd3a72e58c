// Package printer handles console output for a crawl run
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Printer writes the banner, per-match lines and the final summary.
type Printer struct {
	output    io.Writer
	useColors bool
	quiet     bool
	width     int
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output: os.Stdout,
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored output
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithQuiet suppresses the banner and per-match lines. The summary is
// always printed.
func (p *Printer) WithQuiet(quiet bool) *Printer {
	p.quiet = quiet
	return p
}

// WithWidth truncates match lines to width display cells (0 = never).
func (p *Printer) WithWidth(width int) *Printer {
	p.width = width
	return p
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Banner announces the query and the directory about to be scanned.
func (p *Printer) Banner(query, root string) {
	if p.quiet {
		return
	}
	label := p.paint(color.FgCyan)
	shown := query
	if shown == "" {
		shown = "*"
	}
	fmt.Fprintf(p.output, "%s %s\n", label.Sprint("Searching for:"), shown)
	fmt.Fprintf(p.output, "%s %s\n\n", label.Sprint("In:"), root)
}

// Match prints "[index] Found: name".
func (p *Printer) Match(index int, name string) {
	if p.quiet {
		return
	}
	tag := fmt.Sprintf("[%d]", index)
	prefix := tag + " Found: "
	if p.width > 0 && runewidth.StringWidth(prefix+name) > p.width {
		if room := p.width - runewidth.StringWidth(prefix); room > 1 {
			name = runewidth.Truncate(name, room, "…")
		}
	}
	fmt.Fprintf(p.output, "%s Found: %s\n", p.paint(color.FgGreen).Sprint(tag), name)
}

// Summary prints the total and where the results were saved.
func (p *Printer) Summary(count int, outputPath string) {
	label := p.paint(color.Bold)
	fmt.Fprintf(p.output, "\n%s %d\n", label.Sprint("Found:"), count)
	fmt.Fprintf(p.output, "%s %s\n", label.Sprint("Results saved to:"), outputPath)
}

// Interrupted notes that the scan stopped early.
func (p *Printer) Interrupted(reason error) {
	fmt.Fprintf(p.output, "\n%s %v\n", p.paint(color.FgYellow).Sprint("Scan stopped:"), reason)
}
