// Package output provides styled terminal output for the CLI. Styles
// degrade to plain text when color is disabled or the terminal does not
// support it.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode controls when styling is applied.
type Mode string

// Color modes.
const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// IsValid reports whether m is a recognized mode.
func (m Mode) IsValid() bool {
	return m == ModeAuto || m == ModeAlways || m == ModeNever
}

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Accent  lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds the style set for the given mode, consulting the
// terminal's color profile in auto mode.
func NewStyles(mode Mode) *Styles {
	enabled := false
	switch mode {
	case ModeAlways:
		enabled = true
	case ModeNever:
		enabled = false
	default:
		enabled = termenv.ColorProfile() != termenv.Ascii
	}

	if !enabled {
		plain := lipgloss.NewStyle()
		return &Styles{Error: plain, Warning: plain, Success: plain, Accent: plain, Muted: plain}
	}

	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Renderer writes styled messages to the command's output streams.
type Renderer struct {
	Out    io.Writer
	ErrOut io.Writer
	Styles *Styles
}

// NewRenderer creates a renderer over the given streams.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return &Renderer{Out: out, ErrOut: errOut, Styles: NewStyles(mode)}
}

// Errorf writes a styled error line to the error stream.
func (r *Renderer) Errorf(format string, args ...any) {
	fmt.Fprintln(r.ErrOut, r.Styles.Error.Render("error:")+" "+fmt.Sprintf(format, args...))
}

// Warnf writes a styled warning line to the error stream.
func (r *Renderer) Warnf(format string, args ...any) {
	fmt.Fprintln(r.ErrOut, r.Styles.Warning.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// Successf writes a styled success line to the output stream.
func (r *Renderer) Successf(format string, args ...any) {
	fmt.Fprintln(r.Out, r.Styles.Success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Infof writes a plain informational line to the error stream so it
// never mixes with program output.
func (r *Renderer) Infof(format string, args ...any) {
	fmt.Fprintln(r.ErrOut, fmt.Sprintf(format, args...))
}
