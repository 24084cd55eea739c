package ast

import "fmt"

// Position represents a location in a ledger source file.
type Position struct {
	Filename string
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed, 0 when unknown)
}

// IsZero returns true if this position was never set.
func (p Position) IsZero() bool {
	return p.Filename == "" && p.Line == 0 && p.Column == 0
}

// WithFilename returns a copy of the position attributed to filename.
func (p Position) WithFilename(filename string) Position {
	p.Filename = filename
	return p
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		if p.Column > 0 {
			return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
		}
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}
