package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/robinvdvleuten/beanledger/errors"
	"github.com/robinvdvleuten/beanledger/ledger"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders diagnostics and errors with terminal styling and source context.
type ErrorRenderer struct {
	readFile func(string) ([]byte, error)
	sources  map[string][]string
}

// NewErrorRenderer creates a renderer that reads source files from disk for context.
func NewErrorRenderer() *ErrorRenderer {
	return &ErrorRenderer{
		readFile: os.ReadFile,
		sources:  make(map[string][]string),
	}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	if d, ok := err.(ledger.Diagnostic); ok {
		return r.renderDiagnostic(d)
	}

	if e, ok := err.(interface {
		GetPosition() ast.Position
		Error() string
	}); ok {
		if lines := r.source(e.GetPosition().Filename); lines != nil {
			return r.renderWithSourceContext(e.GetPosition(), e.Error(), lines)
		}
	}

	return errorStyle.Render(err.Error())
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// RenderDiagnostics renders every diagnostic of a run.
func (r *ErrorRenderer) RenderDiagnostics(diags ledger.Diagnostics) string {
	return r.RenderAll(diagnosticErrors(diags))
}

func (r *ErrorRenderer) renderDiagnostic(d ledger.Diagnostic) string {
	symbol, style := levelStyle(d.Level)

	var buf strings.Builder
	buf.WriteString(style.Render(symbol + " " + d.Error()))

	lines := errors.RenderStatement(d.Statement)
	if len(lines) == 0 {
		return buf.String()
	}

	buf.WriteString("\n\n")
	for _, line := range lines {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(line))
		buf.WriteByte('\n')
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (r *ErrorRenderer) renderWithSourceContext(pos ast.Position, message string, sourceLines []string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	startLine := max(pos.Line-3, 0)
	endLine := min(pos.Line+1, len(sourceLines)-1)

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// source returns the lines of a file, or nil when it cannot be read.
func (r *ErrorRenderer) source(filename string) []string {
	if filename == "" {
		return nil
	}
	if lines, ok := r.sources[filename]; ok {
		return lines
	}

	var lines []string
	if data, err := r.readFile(filename); err == nil {
		lines = strings.Split(string(data), "\n")
	}
	r.sources[filename] = lines
	return lines
}
