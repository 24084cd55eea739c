package ledger

import (
	"fmt"
	"sort"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

// PriceGraph is a dated index of the price directives of a ledger. Lookups forward-fill: the
// most recent price on or before the requested date applies.
//
// Prices are stored in both directions. Adding HOOL→USD also answers USD→HOOL with the
// inverse rate.
type PriceGraph struct {
	// rates maps a date (YYYY-MM-DD) to from currency -> to currency -> rate
	rates map[string]map[string]map[string]decimal.Decimal
	// dates in chronological order
	dates []ast.Date
}

// NewPriceGraph creates a new empty price graph
func NewPriceGraph() *PriceGraph {
	return &PriceGraph{
		rates: make(map[string]map[string]map[string]decimal.Decimal),
	}
}

// BuildPriceGraph indexes the price records of an analysis. Records missing a currency or a
// number, and zero prices, are skipped.
func BuildPriceGraph(data *Data) *PriceGraph {
	pg := NewPriceGraph()
	for _, p := range data.Prices {
		if p.Currency == "" || p.AmountCurrency == "" || p.Number == nil {
			continue
		}
		entry, ok := data.Entry(p.EntryID)
		if !ok {
			continue
		}
		_ = pg.AddPrice(entry.Date, p.Currency, p.AmountCurrency, *p.Number)
	}
	return pg
}

// AddPrice records the price of one unit of from in to on a date. A later price for the same
// pair on the same date replaces the earlier one.
//
//	AddPrice(2024-01-15, "HOOL", "USD", 579.18)  // HOOL→USD 579.18, USD→HOOL 1/579.18
func (pg *PriceGraph) AddPrice(date ast.Date, from, to string, rate decimal.Decimal) error {
	if rate.IsZero() {
		return fmt.Errorf("price rate must be non-zero: %s %s %s on %s", from, to, rate, date)
	}

	byCurrency, ok := pg.rates[date.String()]
	if !ok {
		byCurrency = make(map[string]map[string]decimal.Decimal)
		pg.rates[date.String()] = byCurrency
		i := sort.Search(len(pg.dates), func(i int) bool { return pg.dates[i].Compare(date) > 0 })
		pg.dates = append(pg.dates, ast.Date{})
		copy(pg.dates[i+1:], pg.dates[i:])
		pg.dates[i] = date
	}
	set := func(a, b string, r decimal.Decimal) {
		if byCurrency[a] == nil {
			byCurrency[a] = make(map[string]decimal.Decimal)
		}
		byCurrency[a][b] = r
	}
	set(from, to, rate)
	set(to, from, decimal.NewFromInt(1).Div(rate))
	return nil
}

// LookupPrice returns the rate from one currency to another on date. Same-currency
// conversions are always 1.
func (pg *PriceGraph) LookupPrice(date ast.Date, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	for i := len(pg.dates) - 1; i >= 0; i-- {
		if pg.dates[i].Compare(date) > 0 {
			continue
		}
		if rate, ok := pg.rates[pg.dates[i].String()][from][to]; ok {
			return rate, true
		}
	}
	return decimal.Zero, false
}

// Latest returns the date of the most recent price, if there is one.
func (pg *PriceGraph) Latest() (ast.Date, bool) {
	if len(pg.dates) == 0 {
		return ast.Date{}, false
	}
	return pg.dates[len(pg.dates)-1], true
}
