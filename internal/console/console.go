// Package console renders operator-facing notices: elevation warnings, retry
// notices, filtered error lines and step descriptions. It is meant for a human
// reading the terminal, not for durable records (see package logging).
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Icons prefixed to notices.
const (
	IconInfo    = "ℹ"
	IconSuccess = "✔"
	IconWarning = "⚠"
	IconError   = "✖"
	IconArrow   = "→"
)

// Console writes styled, line-oriented notices to a writer.
// It is safe for concurrent use; each call emits whole lines.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool

	infoStyle     lipgloss.Style
	successStyle  lipgloss.Style
	warnStyle     lipgloss.Style
	errorStyle    lipgloss.Style
	boldStyle     lipgloss.Style
	dimStyle      lipgloss.Style
	dimErrorStyle lipgloss.Style
}

// New creates a Console writing to out. Colors are disabled when noColor is set
// or the NO_COLOR environment variable is non-empty.
func New(out io.Writer, noColor bool) *Console {
	if out == nil {
		panic("out is required")
	}
	renderer := lipgloss.NewRenderer(out)
	return &Console{
		out:     out,
		noColor: noColor || os.Getenv("NO_COLOR") != "",

		infoStyle:     renderer.NewStyle().Foreground(lipgloss.Color("12")),
		successStyle:  renderer.NewStyle().Foreground(lipgloss.Color("10")),
		warnStyle:     renderer.NewStyle().Foreground(lipgloss.Color("11")),
		errorStyle:    renderer.NewStyle().Foreground(lipgloss.Color("9")),
		boldStyle:     renderer.NewStyle().Bold(true),
		dimStyle:      renderer.NewStyle().Faint(true),
		dimErrorStyle: renderer.NewStyle().Faint(true).Foreground(lipgloss.Color("1")),
	}
}

// Info prints an informational notice.
func (c *Console) Info(msg string) {
	c.println(c.render(c.infoStyle, IconInfo) + " " + msg)
}

// Success prints a completion notice.
func (c *Console) Success(msg string) {
	c.println(c.render(c.successStyle, IconSuccess) + " " + msg)
}

// Warn prints a warning with a bold headline and an optional plain detail.
func (c *Console) Warn(headline, detail string) {
	line := c.render(c.warnStyle, IconWarning) + " " + c.render(c.boldStyle, headline)
	if detail != "" {
		line += " - " + detail
	}
	c.println(line)
}

// Error prints a failure notice.
func (c *Console) Error(msg string) {
	c.println(c.render(c.errorStyle, IconError) + " " + msg)
}

// Dim prints de-emphasized text.
func (c *Console) Dim(msg string) {
	c.println(c.render(c.dimStyle, msg))
}

// DimError prints a de-emphasized error line, used for lines filtered out of
// package-manager output.
func (c *Console) DimError(line string) {
	c.println(c.render(c.dimErrorStyle, line))
}

// Step announces a command about to run.
func (c *Console) Step(description string) {
	c.Dim(IconArrow + " " + description)
}

// Printf prints unstyled formatted text as one line.
func (c *Console) Printf(format string, args ...any) {
	c.println(fmt.Sprintf(format, args...))
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if c.noColor {
		return text
	}
	return style.Render(text)
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, strings.TrimRight(line, "\n")+"\n")
}
