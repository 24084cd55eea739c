package ledger

import (
	"fmt"

	"github.com/robinvdvleuten/beanledger/ast"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Diagnostic is a problem found while analyzing a ledger. Entry-level failures and advisory
// findings are reported as diagnostics instead of aborting the run.
type Diagnostic struct {
	Level      Level  `json:"level" yaml:"level"`
	Message    string `json:"message" yaml:"message"`
	SourceFile string `json:"source_file" yaml:"source_file"`
	SourceLine int    `json:"source_line" yaml:"source_line"`

	// Statement is the node the diagnostic was raised for, when there is one.
	Statement ast.Statement `json:"-" yaml:"-"`
}

// Error returns the diagnostic in bean-check style: "file:line: message".
func (d Diagnostic) Error() string {
	if d.SourceFile == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d: %s", d.SourceFile, d.SourceLine, d.Message)
}

func (d Diagnostic) GetPosition() ast.Position {
	return ast.Position{Filename: d.SourceFile, Line: d.SourceLine}
}

func (d Diagnostic) GetLevel() string {
	return string(d.Level)
}

func (d Diagnostic) GetStatement() ast.Statement {
	return d.Statement
}

// Diagnostics is the ordered list of diagnostics of a run. Pipeline diagnostics come first,
// followed by booking and reconciliation diagnostics in replay order.
type Diagnostics []Diagnostic

// Errors returns the ERROR-level diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(LevelError)
}

// Warnings returns the WARNING-level diagnostics.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(LevelWarning)
}

// HasErrors reports whether any diagnostic is an ERROR.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// AsError wraps the ERROR-level diagnostics in a *ValidationErrors, or returns nil if there
// are none.
func (ds Diagnostics) AsError() error {
	errs := ds.Errors()
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, d := range errs {
		out[i] = d
	}
	return &ValidationErrors{Errors: out}
}

func (ds Diagnostics) filter(level Level) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

// ValidationErrors wraps multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// FatalError aborts an analysis run, for example when the root file cannot be read.
type FatalError struct {
	Pos     ast.Position
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	return locate(e.Pos, e.Message)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) GetPosition() ast.Position {
	return e.Pos
}

// IncludeCycleError is returned when a file includes itself, directly or through other files.
type IncludeCycleError struct {
	Pos  ast.Position // the include statement that closed the cycle
	Path string
}

func (e *IncludeCycleError) Error() string {
	return locate(e.Pos, "Recursive include detected: "+e.Path)
}

func (e *IncludeCycleError) GetPosition() ast.Position {
	return e.Pos
}

// IncludeDepthError is returned when includes nest deeper than the configured bound.
type IncludeDepthError struct {
	Pos   ast.Position
	Path  string
	Limit int
}

func (e *IncludeDepthError) Error() string {
	return locate(e.Pos, fmt.Sprintf("Include depth limit of %d exceeded at %s", e.Limit, e.Path))
}

func (e *IncludeDepthError) GetPosition() ast.Position {
	return e.Pos
}

func locate(pos ast.Position, message string) string {
	if pos.Filename == "" {
		return message
	}
	return fmt.Sprintf("%s:%d: %s", pos.Filename, pos.Line, message)
}
