package ast

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NewNumber parses a decimal string and returns a pointer to it, suitable for the optional
// number fields of postings, balances and prices. It panics on malformed input and is meant
// for building trees in code.
//
// Example:
//
//	p := ast.NewPosting("Assets:Cash", ast.WithAmount("-37.45", "USD"))
func NewNumber(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// NewMetadata creates a metadata pair.
func NewMetadata(key, value string) Metadata {
	return Metadata{Key: key, Value: value}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a transaction dated date with the given narration. The flag
// defaults to "*".
//
// Example:
//
//	txn := ast.NewTransaction("2024-01-15", "Coffee",
//	    ast.WithPayee("Blue Bottle"),
//	    ast.WithTags("food"),
//	    ast.WithPostings(
//	        ast.NewPosting("Expenses:Food", ast.WithAmount("4.50", "USD")),
//	        ast.NewPosting("Assets:Cash"),
//	    ),
//	)
func NewTransaction(date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:      date,
		Flag:      "*",
		Narration: narration,
	}
	for _, opt := range opts {
		opt(txn)
	}
	return txn
}

// WithFlag sets the transaction flag.
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) {
		t.Flag = flag
	}
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithTags adds tags to the transaction. A leading "#" is kept as given; the analyzer
// strips it.
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		t.Tags = append(t.Tags, tags...)
	}
}

// WithLinks adds links to the transaction.
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		t.Links = append(t.Links, links...)
	}
}

// WithTransactionMetadata adds metadata entries to the transaction.
func WithTransactionMetadata(metadata ...Metadata) TransactionOption {
	return func(t *Transaction) {
		t.Metadata = append(t.Metadata, metadata...)
	}
}

// WithComments attaches free-form comment lines to the transaction.
func WithComments(comments ...string) TransactionOption {
	return func(t *Transaction) {
		t.Comments = append(t.Comments, comments...)
	}
}

// WithPostings sets the postings for the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = postings
	}
}

// WithTransactionPos sets the source position of the transaction.
func WithTransactionPos(pos Position) TransactionOption {
	return func(t *Transaction) {
		t.Pos = pos
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a posting to account. Without options the posting is fully elided.
func NewPosting(account string, opts ...PostingOption) *Posting {
	p := &Posting{Account: account}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithAmount sets the units of a posting. An empty value leaves the number elided but
// keeps the currency.
func WithAmount(value, currency string) PostingOption {
	return func(p *Posting) {
		if value != "" {
			p.Number = NewNumber(value)
		}
		p.Currency = currency
	}
}

// WithCost sets the per-unit cost of a posting.
//
//	10 HOOL {518.73 USD}
func WithCost(value, currency string) PostingOption {
	return func(p *Posting) {
		if value != "" {
			p.CostNumber = NewNumber(value)
		}
		p.CostCurrency = currency
	}
}

// WithCostDate sets the acquisition date of the lot.
func WithCostDate(date string) PostingOption {
	return func(p *Posting) {
		p.CostDate = MustParseDate(date)
	}
}

// WithCostLabel sets the lot label.
func WithCostLabel(label string) PostingOption {
	return func(p *Posting) {
		p.CostLabel = label
	}
}

// WithPrice sets the per-unit price of a posting (using @ syntax).
func WithPrice(value, currency string) PostingOption {
	return func(p *Posting) {
		p.PriceNumber = NewNumber(value)
		p.PriceCurrency = currency
	}
}

// WithPostingFlag sets the flag for a posting.
func WithPostingFlag(flag string) PostingOption {
	return func(p *Posting) {
		p.Flag = flag
	}
}

// WithPostingMetadata adds metadata entries to the posting.
func WithPostingMetadata(metadata ...Metadata) PostingOption {
	return func(p *Posting) {
		p.Metadata = append(p.Metadata, metadata...)
	}
}

// NewOpen creates an Open directive. The booking method may be empty.
//
// Example:
//
//	open := ast.NewOpen("2024-01-01", "Assets:Brokerage", []string{"HOOL"}, "FIFO")
func NewOpen(date, account string, currencies []string, bookingMethod string) *Open {
	return &Open{
		Date:          date,
		Account:       account,
		Currencies:    currencies,
		BookingMethod: strings.ToUpper(bookingMethod),
	}
}

// NewClose creates a Close directive.
func NewClose(date, account string) *Close {
	return &Close{Date: date, Account: account}
}

// NewPad creates a Pad directive filling account from source.
func NewPad(date, account, source string) *Pad {
	return &Pad{Date: date, Account: account, SourceAccount: source}
}

// NewBalance creates a Balance directive without explicit tolerance.
//
// Example:
//
//	bal := ast.NewBalance("2024-01-31", "Assets:Checking", "1250.00", "USD")
func NewBalance(date, account, value, currency string) *Balance {
	return &Balance{
		Date:     date,
		Account:  account,
		Number:   NewNumber(value),
		Currency: currency,
	}
}

// NewBalanceWithTolerance creates a Balance directive with an explicit "~" tolerance.
func NewBalanceWithTolerance(date, account, value, tolerance, currency string) *Balance {
	b := NewBalance(date, account, value, currency)
	b.ToleranceNumber = NewNumber(tolerance)
	b.ToleranceCurrency = currency
	return b
}

// NewNote creates a Note directive.
func NewNote(date, account, comment string) *Note {
	return &Note{Date: date, Account: account, Comment: comment}
}

// NewDocument creates a Document directive.
func NewDocument(date, account, filename string) *Document {
	return &Document{Date: date, Account: account, Filename: filename}
}

// NewEvent creates an Event directive.
func NewEvent(date, typ, description string) *Event {
	return &Event{Date: date, Type: typ, Description: description}
}

// NewQuery creates a Query directive.
func NewQuery(date, name, query string) *Query {
	return &Query{Date: date, Name: name, QueryString: query}
}

// NewPrice creates a Price directive.
func NewPrice(date, currency, value, amountCurrency string) *Price {
	return &Price{Date: date, Currency: currency, Number: NewNumber(value), AmountCurrency: amountCurrency}
}

// NewInclude creates an Include statement.
func NewInclude(path string, once bool) *Include {
	return &Include{Path: path, Once: once}
}

// NewGlobal creates a global directive such as option, pushtag or popmeta.
//
// Example:
//
//	ast.NewGlobal("option", "operating_currency", "USD")
func NewGlobal(typ string, args ...string) *GlobalDirective {
	return &GlobalDirective{Type: typ, Args: args}
}

// At attaches a source position to a statement and returns it. Builders leave positions
// unset; tests that care about lines use At.
//
//	ast.At(ast.NewClose("2024-12-31", "Assets:Cash"), "main.yaml", 12)
func At[S Statement](stmt S, filename string, line int) S {
	pos := Position{Filename: filename, Line: line}
	switch n := any(stmt).(type) {
	case *Include:
		n.Pos = pos
	case *GlobalDirective:
		n.Pos = pos
	case *Transaction:
		n.Pos = pos
	case *Open:
		n.Pos = pos
	case *Close:
		n.Pos = pos
	case *Pad:
		n.Pos = pos
	case *Balance:
		n.Pos = pos
	case *Note:
		n.Pos = pos
	case *Document:
		n.Pos = pos
	case *Event:
		n.Pos = pos
	case *Query:
		n.Pos = pos
	case *Price:
		n.Pos = pos
	case *Unsupported:
		n.Pos = pos
	}
	return stmt
}
