package ledger

import (
	"github.com/google/uuid"
	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

// EntryType is the kind of a ledger entry.
type EntryType string

const (
	EntryOpen     EntryType = "open"
	EntryClose    EntryType = "close"
	EntryPad      EntryType = "pad"
	EntryBalance  EntryType = "balance"
	EntryNote     EntryType = "note"
	EntryDocument EntryType = "document"
	EntryEvent    EntryType = "event"
	EntryQuery    EntryType = "query"
	EntryPrice    EntryType = "price"
	EntryTxn      EntryType = "txn"
)

// Entry is one directive or transaction of the analyzed ledger. IDs are dense and follow the
// canonical entry order.
type Entry struct {
	ID         int                 `json:"id" yaml:"id"`
	Date       ast.Date            `json:"date" yaml:"date"`
	Type       EntryType           `json:"type" yaml:"type"`
	SourceFile string              `json:"source_file" yaml:"source_file"`
	SourceLine int                 `json:"source_line" yaml:"source_line"`
	Txn        *TransactionPayload `json:"txn,omitempty" yaml:"txn,omitempty"`
}

// TransactionPayload holds the transaction-only columns of a txn entry.
type TransactionPayload struct {
	Flag      string   `json:"flag" yaml:"flag"`
	Payee     string   `json:"payee,omitempty" yaml:"payee,omitempty"`
	Narration string   `json:"narration" yaml:"narration"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Links     []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Posting is one leg of a txn entry. Empty strings and nil pointers mark absent values.
type Posting struct {
	ID            int              `json:"id" yaml:"id"`
	EntryID       int              `json:"entry_id" yaml:"entry_id"`
	Flag          string           `json:"flag,omitempty" yaml:"flag,omitempty"`
	Account       string           `json:"account" yaml:"account"`
	Number        *decimal.Decimal `json:"number,omitempty" yaml:"number,omitempty"`
	Currency      string           `json:"currency,omitempty" yaml:"currency,omitempty"`
	CostNumber    *decimal.Decimal `json:"cost_number,omitempty" yaml:"cost_number,omitempty"`
	CostCurrency  string           `json:"cost_currency,omitempty" yaml:"cost_currency,omitempty"`
	CostDate      *ast.Date        `json:"cost_date,omitempty" yaml:"cost_date,omitempty"`
	CostLabel     string           `json:"cost_label,omitempty" yaml:"cost_label,omitempty"`
	PriceNumber   *decimal.Decimal `json:"price_number,omitempty" yaml:"price_number,omitempty"`
	PriceCurrency string           `json:"price_currency,omitempty" yaml:"price_currency,omitempty"`
}

// hasCost reports whether any cost component is present.
func (p *Posting) hasCost() bool {
	return p.CostNumber != nil || p.CostCurrency != "" || p.CostDate != nil || p.CostLabel != ""
}

// bucket is the currency the posting is grouped under: its cost currency, else its price
// currency, else its units currency.
func (p *Posting) bucket() string {
	switch {
	case p.CostCurrency != "":
		return p.CostCurrency
	case p.PriceCurrency != "":
		return p.PriceCurrency
	}
	return p.Currency
}

type OpenRecord struct {
	EntryID       int           `json:"entry_id" yaml:"entry_id"`
	Account       string        `json:"account" yaml:"account"`
	Currencies    []string      `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	BookingMethod BookingMethod `json:"booking_method,omitempty" yaml:"booking_method,omitempty"`
}

type CloseRecord struct {
	EntryID int    `json:"entry_id" yaml:"entry_id"`
	Account string `json:"account" yaml:"account"`
}

type PadRecord struct {
	EntryID       int    `json:"entry_id" yaml:"entry_id"`
	Account       string `json:"account" yaml:"account"`
	SourceAccount string `json:"source_account" yaml:"source_account"`
}

// BalanceRecord is a balance assertion. DiffNumber and DiffCurrency are set only when the
// assertion failed and no padding applied.
type BalanceRecord struct {
	EntryID           int              `json:"entry_id" yaml:"entry_id"`
	Account           string           `json:"account" yaml:"account"`
	Number            *decimal.Decimal `json:"number,omitempty" yaml:"number,omitempty"`
	Currency          string           `json:"currency" yaml:"currency"`
	DiffNumber        *decimal.Decimal `json:"diff_number,omitempty" yaml:"diff_number,omitempty"`
	DiffCurrency      string           `json:"diff_currency,omitempty" yaml:"diff_currency,omitempty"`
	ToleranceNumber   *decimal.Decimal `json:"tolerance_number,omitempty" yaml:"tolerance_number,omitempty"`
	ToleranceCurrency string           `json:"tolerance_currency,omitempty" yaml:"tolerance_currency,omitempty"`
}

type NoteRecord struct {
	EntryID int    `json:"entry_id" yaml:"entry_id"`
	Account string `json:"account" yaml:"account"`
	Comment string `json:"comment" yaml:"comment"`
}

type DocumentRecord struct {
	EntryID  int    `json:"entry_id" yaml:"entry_id"`
	Account  string `json:"account" yaml:"account"`
	Filename string `json:"filename" yaml:"filename"`
}

type EventRecord struct {
	EntryID     int    `json:"entry_id" yaml:"entry_id"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

type QueryRecord struct {
	EntryID     int    `json:"entry_id" yaml:"entry_id"`
	Name        string `json:"name" yaml:"name"`
	QueryString string `json:"query_string" yaml:"query_string"`
}

type PriceRecord struct {
	EntryID        int              `json:"entry_id" yaml:"entry_id"`
	Currency       string           `json:"currency" yaml:"currency"`
	Number         *decimal.Decimal `json:"number,omitempty" yaml:"number,omitempty"`
	AmountCurrency string           `json:"amount_currency" yaml:"amount_currency"`
}

// Data is the flat record set of an analysis, one ordered list per table.
type Data struct {
	Entries     []Entry          `json:"entries" yaml:"entries"`
	Postings    []Posting        `json:"postings" yaml:"postings"`
	RawPostings []Posting        `json:"raw_postings" yaml:"raw_postings"`
	Opens       []OpenRecord     `json:"opens" yaml:"opens"`
	Closes      []CloseRecord    `json:"closes" yaml:"closes"`
	Pads        []PadRecord      `json:"pads" yaml:"pads"`
	Balances    []BalanceRecord  `json:"balances" yaml:"balances"`
	Notes       []NoteRecord     `json:"notes" yaml:"notes"`
	Documents   []DocumentRecord `json:"documents" yaml:"documents"`
	Events      []EventRecord    `json:"events" yaml:"events"`
	Queries     []QueryRecord    `json:"queries" yaml:"queries"`
	Prices      []PriceRecord    `json:"prices" yaml:"prices"`
}

// Entry returns the entry with the given ID.
func (d *Data) Entry(id int) (Entry, bool) {
	if id < 0 || id >= len(d.Entries) || d.Entries[id].ID != id {
		return Entry{}, false
	}
	return d.Entries[id], true
}

// PostingsFor returns the booked postings of an entry.
func (d *Data) PostingsFor(entryID int) []Posting {
	var out []Posting
	for _, p := range d.Postings {
		if p.EntryID == entryID {
			out = append(out, p)
		}
	}
	return out
}

// SemanticPosting is a posting as written, with its metadata and comments.
type SemanticPosting struct {
	Flag          string           `json:"flag,omitempty" yaml:"flag,omitempty"`
	Account       string           `json:"account" yaml:"account"`
	Number        *decimal.Decimal `json:"number,omitempty" yaml:"number,omitempty"`
	Currency      string           `json:"currency,omitempty" yaml:"currency,omitempty"`
	CostNumber    *decimal.Decimal `json:"cost_number,omitempty" yaml:"cost_number,omitempty"`
	CostCurrency  string           `json:"cost_currency,omitempty" yaml:"cost_currency,omitempty"`
	PriceNumber   *decimal.Decimal `json:"price_number,omitempty" yaml:"price_number,omitempty"`
	PriceCurrency string           `json:"price_currency,omitempty" yaml:"price_currency,omitempty"`
	Metadata      []ast.Metadata   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Comments      []string         `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// SemanticTransaction is the transaction-level view of a txn entry, including metadata the
// flat tables do not carry.
type SemanticTransaction struct {
	Date      ast.Date          `json:"date" yaml:"date"`
	Flag      string            `json:"flag" yaml:"flag"`
	Payee     string            `json:"payee,omitempty" yaml:"payee,omitempty"`
	Narration string            `json:"narration" yaml:"narration"`
	Tags      []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Links     []string          `json:"links,omitempty" yaml:"links,omitempty"`
	Metadata  []ast.Metadata    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Postings  []SemanticPosting `json:"postings" yaml:"postings"`
	Comments  []string          `json:"comments,omitempty" yaml:"comments,omitempty"`
	Location  ast.Position      `json:"location" yaml:"location"`
}

// SemanticLedger is the ledger-level view of an analysis.
type SemanticLedger struct {
	Transactions        []SemanticTransaction `json:"transactions" yaml:"transactions"`
	OpenedAccounts      []string              `json:"opened_accounts" yaml:"opened_accounts"`
	OperatingCurrencies []string              `json:"operating_currencies" yaml:"operating_currencies"`
	Display             *DisplayContext       `json:"display" yaml:"display"`
}

// Result is the outcome of one analysis run.
type Result struct {
	RunID       uuid.UUID      `json:"run_id" yaml:"run_id"`
	Root        string         `json:"root" yaml:"root"`
	Data        Data           `json:"data" yaml:"data"`
	Ledger      SemanticLedger `json:"ledger" yaml:"ledger"`
	Diagnostics Diagnostics    `json:"diagnostics" yaml:"diagnostics"`

	// Balances holds the final running balance of every account and account prefix.
	Balances map[string]*Balance `json:"-" yaml:"-"`
}
