// Package output provides termenv styling for analyzer output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI colors used across the CLI.
const (
	colorRed     = "1"
	colorGreen   = "2"
	colorYellow  = "3"
	colorBlue    = "4"
	colorMagenta = "5"
	colorCyan    = "6"
)

// Styles renders styled strings for a single writer. Colors are dropped automatically when the
// writer is not a terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles for w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) fg(text, color string, bold bool) string {
	styled := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		styled = styled.Bold()
	}
	return styled.String()
}

// Success is green and bold.
func (s *Styles) Success(text string) string { return s.fg(text, colorGreen, true) }

// Error is red and bold.
func (s *Styles) Error(text string) string { return s.fg(text, colorRed, true) }

// Warning is yellow and bold.
func (s *Styles) Warning(text string) string { return s.fg(text, colorYellow, true) }

// Info is blue.
func (s *Styles) Info(text string) string { return s.fg(text, colorBlue, false) }

// FilePath is cyan.
func (s *Styles) FilePath(text string) string { return s.fg(text, colorCyan, false) }

// Account is yellow.
func (s *Styles) Account(text string) string { return s.fg(text, colorYellow, false) }

// Amount is magenta.
func (s *Styles) Amount(text string) string { return s.fg(text, colorMagenta, false) }

// Keyword is bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim is faint, for secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Level styles a diagnostic level name (INFO, WARNING, ERROR). Unknown levels are returned
// unchanged.
func (s *Styles) Level(level string) string {
	switch level {
	case "ERROR":
		return s.Error(level)
	case "WARNING":
		return s.Warning(level)
	case "INFO":
		return s.Info(level)
	default:
		return level
	}
}

// Output returns the underlying termenv output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
