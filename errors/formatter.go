// Package errors provides error formatting infrastructure for ledger diagnostics.
// It separates error formatting from domain logic, allowing errors to be rendered in
// multiple formats (text, JSON) for different consumers (CLI, exports, tooling).
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: Formats errors for command-line output in bean-check style
//   - JSONFormatter: Formats errors as structured JSON
//
// Domain-specific error types remain in their respective packages (e.g., ledger),
// while this package handles the presentation layer.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for command-line output in bean-check style.
type TextFormatter struct {
	sourceContent []byte // Optional source content for decode error context
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source content for decode error context.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error in bean-check style.
func (tf *TextFormatter) Format(err error) string {
	// Errors raised for a statement get the statement rendered below the message
	if e, ok := err.(interface {
		GetStatement() ast.Statement
		Error() string
	}); ok {
		return tf.formatWithContext(e.Error(), e.GetStatement())
	}

	if e, ok := err.(*ast.DecodeError); ok && tf.sourceContent != nil {
		return tf.formatWithSourceContext(e.Pos, e.Error(), tf.sourceContent)
	}

	// Check if this is an error with position only
	if e, ok := err.(interface {
		GetPosition() ast.Position
		Error() string
	}); ok {
		// If we have source content, show source context instead of just position
		if tf.sourceContent != nil {
			return tf.formatWithSourceContext(e.GetPosition(), e.Error(), tf.sourceContent)
		}
		return e.Error()
	}

	// Fallback to standard error formatting
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		// Add blank line between errors (but not after the last one)
		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSourceContext formats an error with original source context.
// Shows the error message followed by the original source lines around the error position.
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer

	buf.WriteString(message)
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	// Two lines before the error line, one after
	startLine := max(pos.Line-3, 0)
	endLine := min(pos.Line+1, len(sourceLines)-1)

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(sourceLines[i])
		buf.WriteByte('\n')

		// Caret under the error column (pos.Line is 1-based, i is 0-based)
		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}

	return buf.String()
}

// formatWithContext formats an error with statement context (bean-check style).
func (tf *TextFormatter) formatWithContext(message string, stmt ast.Statement) string {
	lines := RenderStatement(stmt)
	if len(lines) == 0 {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")
	for _, line := range lines {
		buf.WriteString("   ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// RenderStatement renders a statement in ledger syntax, one string per line. Postings are
// indented and their amounts aligned on a common column.
func RenderStatement(stmt ast.Statement) []string {
	switch d := stmt.(type) {
	case *ast.Transaction:
		return renderTransaction(d)

	case *ast.Balance:
		line := fmt.Sprintf("%s balance %s  %s", d.Date, d.Account, amount(d.Number, d.Currency))
		if d.ToleranceNumber != nil {
			line = fmt.Sprintf("%s balance %s  %s ~ %s %s", d.Date, d.Account, number(d.Number), number(d.ToleranceNumber), d.Currency)
		}
		return []string{line}

	case *ast.Pad:
		return []string{fmt.Sprintf("%s pad %s %s", d.Date, d.Account, d.SourceAccount)}

	case *ast.Note:
		return []string{fmt.Sprintf("%s note %s %q", d.Date, d.Account, d.Comment)}

	case *ast.Document:
		return []string{fmt.Sprintf("%s document %s %q", d.Date, d.Account, d.Filename)}

	case *ast.Open:
		line := fmt.Sprintf("%s open %s", d.Date, d.Account)
		if len(d.Currencies) > 0 {
			line += " " + strings.Join(d.Currencies, ",")
		}
		if d.BookingMethod != "" {
			line += fmt.Sprintf(" %q", d.BookingMethod)
		}
		return []string{line}

	case *ast.Close:
		return []string{fmt.Sprintf("%s close %s", d.Date, d.Account)}

	case *ast.Event:
		return []string{fmt.Sprintf("%s event %q %q", d.Date, d.Type, d.Description)}

	case *ast.Query:
		return []string{fmt.Sprintf("%s query %q %q", d.Date, d.Name, d.QueryString)}

	case *ast.Price:
		return []string{fmt.Sprintf("%s price %s  %s", d.Date, d.Currency, amount(d.Number, d.AmountCurrency))}

	case *ast.Include:
		if d.Once {
			return []string{fmt.Sprintf("include-once %q", d.Path)}
		}
		return []string{fmt.Sprintf("include %q", d.Path)}

	case *ast.GlobalDirective:
		quoted := make([]string, 0, len(d.Args)+1)
		quoted = append(quoted, d.Type)
		for _, arg := range d.Args {
			quoted = append(quoted, fmt.Sprintf("%q", arg))
		}
		return []string{strings.Join(quoted, " ")}

	case *ast.Unsupported:
		return []string{fmt.Sprintf("%s %s", d.Date, d.Type)}
	}
	return nil
}

func renderTransaction(txn *ast.Transaction) []string {
	var header strings.Builder
	header.WriteString(txn.Date)
	header.WriteByte(' ')
	header.WriteString(txn.Flag)
	if txn.Payee != "" {
		fmt.Fprintf(&header, " %q", txn.Payee)
	}
	fmt.Fprintf(&header, " %q", txn.Narration)
	for _, tag := range txn.Tags {
		header.WriteString(" #" + strings.TrimPrefix(tag, "#"))
	}
	for _, link := range txn.Links {
		header.WriteString(" ^" + link)
	}
	lines := []string{header.String()}

	width := 0
	for _, p := range txn.Postings {
		width = max(width, runewidth.StringWidth(postingAccount(p)))
	}
	for _, p := range txn.Postings {
		account := postingAccount(p)
		line := "  " + account
		if rest := postingAmount(p); rest != "" {
			line += strings.Repeat(" ", width-runewidth.StringWidth(account)+2) + rest
		}
		lines = append(lines, line)
	}
	return lines
}

func postingAccount(p *ast.Posting) string {
	if p.Flag != "" {
		return p.Flag + " " + p.Account
	}
	return p.Account
}

func postingAmount(p *ast.Posting) string {
	var parts []string
	if p.Number != nil || p.Currency != "" {
		parts = append(parts, amount(p.Number, p.Currency))
	}
	if p.HasCost() {
		var cost []string
		if p.CostNumber != nil || p.CostCurrency != "" {
			cost = append(cost, amount(p.CostNumber, p.CostCurrency))
		}
		if p.CostDate != nil {
			cost = append(cost, p.CostDate.String())
		}
		if p.CostLabel != "" {
			cost = append(cost, fmt.Sprintf("%q", p.CostLabel))
		}
		parts = append(parts, "{"+strings.Join(cost, ", ")+"}")
	}
	if p.PriceNumber != nil || p.PriceCurrency != "" {
		parts = append(parts, "@ "+amount(p.PriceNumber, p.PriceCurrency))
	}
	return strings.Join(parts, " ")
}

func amount(n *decimal.Decimal, currency string) string {
	return strings.TrimSpace(number(n) + " " + currency)
}

// number renders n with the digits it was written with.
func number(n *decimal.Decimal) string {
	if n == nil {
		return ""
	}
	if exp := n.Exponent(); exp < 0 {
		return n.StringFixed(-exp)
	}
	return n.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string                 `json:"type"`
	Message  string                 `json:"message"`
	Position *PositionJSON          `json:"position,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	errJSON := jf.toJSON(err)
	data, _ := json.Marshal(errJSON)
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	jsonErrors := jf.FormatAllToSlice(errs)
	data, _ := json.MarshalIndent(jsonErrors, "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

// toJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]interface{}),
	}

	if e, ok := err.(interface{ GetPosition() ast.Position }); ok {
		pos := e.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}

	if e, ok := err.(interface{ GetLevel() string }); ok {
		errJSON.Details["level"] = e.GetLevel()
	}
	if e, ok := err.(interface{ GetAccount() string }); ok {
		errJSON.Details["account"] = e.GetAccount()
	}
	if e, ok := err.(interface{ GetStatement() ast.Statement }); ok {
		if d, ok := e.GetStatement().(ast.Directive); ok {
			errJSON.Details["directive"] = d.Kind()
			errJSON.Details["date"] = d.RawDate()
		} else if _, ok := e.GetStatement().(*ast.Transaction); ok {
			errJSON.Details["directive"] = "transaction"
		}
	}

	return errJSON
}
