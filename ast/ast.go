// Package ast declares the already-parsed statement tree the semantic analyzer consumes.
//
// A ledger file is an ordered list of statements. Every statement is one of a closed set of
// node types: an Include, a Transaction, a dated Directive (open, close, pad, balance, note,
// document, event, query, price and the unsupported kinds) or a GlobalDirective (option,
// plugin, pushtag, poptag, pushmeta, popmeta, ...). Each node carries the Position it was
// read from.
//
// The tree is produced outside this module by a ledger parser, or decoded from a YAML
// statement document (see Decode). It can also be assembled in code with the builders.
package ast

import "github.com/shopspring/decimal"

// File is the ordered statement list of a single ledger file.
type File struct {
	Filename   string
	Statements []Statement
}

// Statement is implemented by every top-level node. The set of implementations is closed;
// consumers type-switch over it.
type Statement interface {
	Position() Position
	statement()
}

// Directive is a dated statement other than a transaction.
type Directive interface {
	Statement

	// Kind returns the lower-case directive keyword ("open", "balance", ...).
	Kind() string
	// RawDate returns the date exactly as it was written.
	RawDate() string
}

// Include pulls the statements of one or more other files into the ledger at this point.
// Path may be absolute, relative to the including file, or a shell glob.
//
//	include "accounts/*.beancount"
type Include struct {
	Pos  Position
	Path string
	Once bool // include-once: skip if the resolved file was already included anywhere
}

// GlobalDirective is an undated statement that mutates interpreter state.
//
//	option "operating_currency" "USD"
//	pushtag #trip
//	popmeta location:
type GlobalDirective struct {
	Pos  Position
	Type string
	Args []string
}

// Metadata is a single key/value pair attached to a transaction or posting.
type Metadata struct {
	Key   string
	Value string
}

// Transaction records a balanced movement between accounts.
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine" #food ^trip
//	  Liabilities:CreditCard  -37.45 USD
//	  Expenses:Restaurant
type Transaction struct {
	Pos           Position
	Date          string
	Flag          string
	Payee         string
	Narration     string
	Tags          []string
	Links         []string
	Metadata      []Metadata
	Postings      []*Posting
	Comments      []string
	PipeSeparator bool // payee and narration were separated by the deprecated "|"
}

// Posting is a single account leg of a transaction. Any of the amount, cost and price
// fields may be absent, in which case the analyzer infers them where it can.
type Posting struct {
	Pos           Position
	Flag          string
	Account       string
	Number        *decimal.Decimal
	Currency      string
	CostNumber    *decimal.Decimal
	CostCurrency  string
	CostDate      *Date
	CostLabel     string
	PriceNumber   *decimal.Decimal
	PriceCurrency string
	Metadata      []Metadata
	Comments      []string
}

// HasCost reports whether any cost component is present.
func (p *Posting) HasCost() bool {
	return p.CostNumber != nil || p.CostCurrency != "" || p.CostDate != nil || p.CostLabel != ""
}

// Open declares the opening of an account, with optional currency constraints and a
// per-account booking method.
type Open struct {
	Pos           Position
	Date          string
	Account       string
	Currencies    []string
	BookingMethod string
}

// Close declares the end of an account's lifetime.
type Close struct {
	Pos     Position
	Date    string
	Account string
}

// Pad fills Account from SourceAccount so that the next balance assertion holds.
type Pad struct {
	Pos           Position
	Date          string
	Account       string
	SourceAccount string
}

// Balance asserts the balance of an account in one currency at the start of a date. An
// explicit tolerance may be given with the "~" syntax.
//
//	2014-08-09 balance Assets:Checking 562.00 ~ 0.01 USD
type Balance struct {
	Pos               Position
	Date              string
	Account           string
	Number            *decimal.Decimal
	Currency          string
	ToleranceNumber   *decimal.Decimal
	ToleranceCurrency string
}

// Note attaches a dated comment to an account.
type Note struct {
	Pos     Position
	Date    string
	Account string
	Comment string
}

// Document links an external file to an account.
type Document struct {
	Pos      Position
	Date     string
	Account  string
	Filename string
}

// Event records the value of a named variable from a date onward.
type Event struct {
	Pos         Position
	Date        string
	Type        string
	Description string
}

// Query stores a named query string.
type Query struct {
	Pos         Position
	Date        string
	Name        string
	QueryString string
}

// Price records the price of a commodity on a date.
//
//	2014-07-09 price HOOL 579.18 USD
type Price struct {
	Pos            Position
	Date           string
	Currency       string
	Number         *decimal.Decimal
	AmountCurrency string
}

// Unsupported is a dated directive the analyzer does not evaluate (commodity, custom, ...).
// It is kept so that consumers see the complete statement list.
type Unsupported struct {
	Pos  Position
	Date string
	Type string
}

func (n *Include) Position() Position         { return n.Pos }
func (n *GlobalDirective) Position() Position { return n.Pos }
func (n *Transaction) Position() Position     { return n.Pos }
func (n *Open) Position() Position            { return n.Pos }
func (n *Close) Position() Position           { return n.Pos }
func (n *Pad) Position() Position             { return n.Pos }
func (n *Balance) Position() Position         { return n.Pos }
func (n *Note) Position() Position            { return n.Pos }
func (n *Document) Position() Position        { return n.Pos }
func (n *Event) Position() Position           { return n.Pos }
func (n *Query) Position() Position           { return n.Pos }
func (n *Price) Position() Position           { return n.Pos }
func (n *Unsupported) Position() Position     { return n.Pos }

func (*Include) statement()         {}
func (*GlobalDirective) statement() {}
func (*Transaction) statement()     {}
func (*Open) statement()            {}
func (*Close) statement()           {}
func (*Pad) statement()             {}
func (*Balance) statement()         {}
func (*Note) statement()            {}
func (*Document) statement()        {}
func (*Event) statement()           {}
func (*Query) statement()           {}
func (*Price) statement()           {}
func (*Unsupported) statement()     {}

func (*Open) Kind() string          { return "open" }
func (*Close) Kind() string         { return "close" }
func (*Pad) Kind() string           { return "pad" }
func (*Balance) Kind() string       { return "balance" }
func (*Note) Kind() string          { return "note" }
func (*Document) Kind() string      { return "document" }
func (*Event) Kind() string         { return "event" }
func (*Query) Kind() string         { return "query" }
func (*Price) Kind() string         { return "price" }
func (n *Unsupported) Kind() string { return n.Type }

func (n *Open) RawDate() string        { return n.Date }
func (n *Close) RawDate() string       { return n.Date }
func (n *Pad) RawDate() string         { return n.Date }
func (n *Balance) RawDate() string     { return n.Date }
func (n *Note) RawDate() string        { return n.Date }
func (n *Document) RawDate() string    { return n.Date }
func (n *Event) RawDate() string       { return n.Date }
func (n *Query) RawDate() string       { return n.Date }
func (n *Price) RawDate() string       { return n.Date }
func (n *Unsupported) RawDate() string { return n.Date }

var (
	_ Statement = &Include{}
	_ Statement = &GlobalDirective{}
	_ Statement = &Transaction{}
	_ Directive = &Open{}
	_ Directive = &Close{}
	_ Directive = &Pad{}
	_ Directive = &Balance{}
	_ Directive = &Note{}
	_ Directive = &Document{}
	_ Directive = &Event{}
	_ Directive = &Query{}
	_ Directive = &Price{}
	_ Directive = &Unsupported{}
)
