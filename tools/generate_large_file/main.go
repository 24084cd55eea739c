// Large Ledger File Generator
//
// This tool generates a large statement document for performance testing and profiling.
// It creates realistic transactions with various features to stress-test the analyzer:
// elided amounts, lots at cost, prices, balance assertions with padding, tags and links.
//
// Usage:
//
//	go run main.go > large.yaml
//	go run main.go 20000000 > large.yaml  # Specify target size in bytes
//	beanledger analyze --telemetry large.yaml
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	accounts = []string{
		"Assets:Bank:Checking",
		"Assets:Bank:Savings",
		"Assets:Brokerage:Cash",
		"Assets:Crypto:BTC",
		"Liabilities:CreditCard:Visa",
		"Liabilities:CreditCard:Amex",
		"Income:Salary",
		"Income:Bonus",
		"Income:Investments:Dividends",
		"Expenses:Food:Groceries",
		"Expenses:Food:Restaurant",
		"Expenses:Housing:Rent",
		"Expenses:Housing:Utilities",
		"Expenses:Transport:Gas",
		"Expenses:Transport:Transit",
		"Expenses:Shopping:Clothing",
		"Expenses:Shopping:Electronics",
		"Expenses:Entertainment:Movies",
		"Expenses:Healthcare:Medical",
		"Expenses:Taxes:Federal",
		"Expenses:Commissions",
		"Equity:Opening-Balances",
	}

	payees = []string{
		"Whole Foods", "Safeway", "Trader Joe's", "Costco",
		"Shell Gas", "Chevron", "BART", "Uber",
		"Landlord", "PG&E", "Comcast", "AT&T",
		"Amazon", "Target", "Best Buy", "Apple Store",
		"Netflix", "Spotify", "AMC Theaters",
		"Employer Inc", "Fidelity", "Vanguard",
	}

	narrations = []string{
		"Grocery shopping", "Fuel purchase", "Rent payment",
		"Salary deposit", "Stock purchase", "Utility bill",
		"Online purchase", "Restaurant dinner", "Coffee",
		"Monthly subscription", "Medical appointment",
		"Investment contribution", "Dividend payment",
		"Tax payment", "Insurance premium", "Gift",
	}

	tags = []string{
		"personal", "business", "vacation", "tax-deductible",
		"reimbursable", "investment", "savings",
	}

	links = []string{
		"invoice-2023-001", "receipt-march", "annual-review",
		"rebalance-q1", "tax-2023", "bonus-cycle",
	}

	currencies = []string{"USD", "EUR", "GBP", "CAD"}
	stocks     = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "AMZN", "VTI", "VXUS"}
)

// Statement document shapes, as read by the ast decoder.
type statement struct {
	Option    []string   `yaml:"option,omitempty"`
	Directive *directive `yaml:"directive,omitempty"`
	Txn       *txn       `yaml:"txn,omitempty"`
}

type directive struct {
	Type           string   `yaml:"type"`
	Date           string   `yaml:"date"`
	Account        string   `yaml:"account,omitempty"`
	Currencies     []string `yaml:"currencies,omitempty"`
	Booking        string   `yaml:"booking,omitempty"`
	Source         string   `yaml:"source,omitempty"`
	Number         string   `yaml:"number,omitempty"`
	Currency       string   `yaml:"currency,omitempty"`
	AmountCurrency string   `yaml:"amount_currency,omitempty"`
}

type txn struct {
	Date      string            `yaml:"date"`
	Payee     string            `yaml:"payee,omitempty"`
	Narration string            `yaml:"narration"`
	Tags      []string          `yaml:"tags,omitempty"`
	Links     []string          `yaml:"links,omitempty"`
	Meta      map[string]string `yaml:"meta,omitempty"`
	Postings  []posting         `yaml:"postings"`
}

type posting struct {
	Account  string            `yaml:"account"`
	Number   string            `yaml:"number,omitempty"`
	Currency string            `yaml:"currency,omitempty"`
	Cost     *amount           `yaml:"cost,omitempty"`
	Price    *amount           `yaml:"price,omitempty"`
	Meta     map[string]string `yaml:"meta,omitempty"`
}

type amount struct {
	Number   string `yaml:"number"`
	Currency string `yaml:"currency"`
}

type generator struct {
	rng *rand.Rand
	out *bufio.Writer

	bytesWritten     int
	transactionCount int
}

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	// A fixed seed keeps generated files comparable between profiling runs
	g := &generator{
		rng: rand.New(rand.NewSource(42)),
		out: bufio.NewWriter(os.Stdout),
	}

	g.writeHeader()

	currentDate := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	for g.bytesWritten < targetSize {
		// Mix different types of directives
		switch g.rng.Intn(10) {
		case 0, 1: // 20% - Simple transaction with an elided amount
			g.emit(statement{Txn: g.simpleTransaction(currentDate)})
		case 2, 3: // 20% - Transaction with metadata
			g.emit(statement{Txn: g.transactionWithMetadata(currentDate)})
		case 4, 5: // 20% - Investment transaction with cost
			g.emit(statement{Txn: g.investmentTransaction(currentDate)})
		case 6: // 10% - Multi-currency transaction
			g.emit(statement{Txn: g.multiCurrencyTransaction(currentDate)})
		case 7: // 10% - Complex transaction with tags and links
			g.emit(statement{Txn: g.complexTransaction(currentDate)})
		case 8: // 10% - Padded balance assertion
			g.emit(g.padding(currentDate)...)
		case 9: // 10% - Price directive
			g.emit(statement{Directive: g.priceDirective(currentDate)})
		}

		// Advance date by 1-5 days
		currentDate = currentDate.AddDate(0, 0, g.rng.Intn(5)+1)
	}

	if err := g.out.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d transactions\n", g.bytesWritten, g.transactionCount)
}

func (g *generator) writeHeader() {
	g.write("# Large ledger file for performance testing\n")
	g.write("statements:\n")

	g.emit(
		statement{Option: []string{"title", "Performance Test Ledger"}},
		statement{Option: []string{"operating_currency", "USD"}},
	)

	// Open all accounts
	for _, account := range accounts {
		g.emit(statement{Directive: &directive{Type: "open", Date: "2020-01-01", Account: account}})
	}
	for _, stock := range stocks {
		g.emit(statement{Directive: &directive{
			Type:       "open",
			Date:       "2020-01-01",
			Account:    "Assets:Brokerage:" + stock,
			Currencies: []string{stock},
			Booking:    "FIFO",
		}})
	}
}

// emit writes statements as items of the top-level statements sequence.
func (g *generator) emit(stmts ...statement) {
	data, err := yaml.Marshal(stmts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode statement: %v\n", err)
		os.Exit(1)
	}
	g.write(string(data))
	for _, s := range stmts {
		if s.Txn != nil {
			g.transactionCount++
		}
	}
}

func (g *generator) write(s string) {
	n, _ := g.out.WriteString(s)
	g.bytesWritten += n
}

func (g *generator) simpleTransaction(date time.Time) *txn {
	return &txn{
		Date:      date.Format(time.DateOnly),
		Payee:     pick(g.rng, payees),
		Narration: pick(g.rng, narrations),
		Postings: []posting{
			{Account: pick(g.rng, accounts), Number: g.randAmount(10, 500).StringFixed(2), Currency: "USD"},
			{Account: pick(g.rng, accounts)},
		},
	}
}

func (g *generator) transactionWithMetadata(date time.Time) *txn {
	value := g.randAmount(50, 1000)

	return &txn{
		Date:      date.Format(time.DateOnly),
		Payee:     pick(g.rng, payees),
		Narration: pick(g.rng, narrations),
		Meta: map[string]string{
			"invoice":  fmt.Sprintf("INV-%d", g.rng.Intn(10000)),
			"category": "shopping",
		},
		Postings: []posting{
			{
				Account:  pick(g.rng, accounts),
				Number:   value.StringFixed(2),
				Currency: "USD",
				Meta:     map[string]string{"note": "Purchase from vendor"},
			},
			{Account: pick(g.rng, accounts), Number: value.Neg().StringFixed(2), Currency: "USD"},
		},
	}
}

func (g *generator) investmentTransaction(date time.Time) *txn {
	stock := pick(g.rng, stocks)
	shares := decimal.NewFromInt(int64(g.rng.Intn(50) + 1))
	pricePerShare := g.randAmount(50, 500)
	commission := decimal.RequireFromString("9.99")

	// Sell now and then so lots get reduced
	if g.rng.Intn(4) == 0 {
		return &txn{
			Date:      date.Format(time.DateOnly),
			Narration: "Sell " + stock,
			Postings: []posting{
				{Account: "Assets:Brokerage:" + stock, Number: "-1", Currency: stock, Cost: &amount{}},
				{Account: "Assets:Brokerage:Cash", Number: pricePerShare.StringFixed(2), Currency: "USD"},
				{Account: "Income:Investments:Dividends"},
			},
		}
	}

	return &txn{
		Date:      date.Format(time.DateOnly),
		Narration: "Buy " + stock,
		Postings: []posting{
			{Account: "Assets:Brokerage:Cash", Number: shares.Mul(pricePerShare).Add(commission).Neg().StringFixed(2), Currency: "USD"},
			{Account: "Assets:Brokerage:" + stock, Number: shares.String(), Currency: stock, Cost: &amount{Number: pricePerShare.StringFixed(2), Currency: "USD"}},
			{Account: "Expenses:Commissions", Number: commission.StringFixed(2), Currency: "USD"},
		},
	}
}

func (g *generator) multiCurrencyTransaction(date time.Time) *txn {
	value := g.randAmount(100, 2000)
	currency := pick(g.rng, currencies)
	exchangeRate := g.randAmount(1, 2)

	return &txn{
		Date:      date.Format(time.DateOnly),
		Narration: "Currency exchange",
		Postings: []posting{
			{
				Account:  "Assets:Bank:Checking",
				Number:   value.Neg().StringFixed(2),
				Currency: "USD",
				Price:    &amount{Number: exchangeRate.StringFixed(2), Currency: currency},
			},
			{Account: "Assets:Bank:Savings", Number: value.Mul(exchangeRate).StringFixed(2), Currency: currency},
		},
	}
}

func (g *generator) complexTransaction(date time.Time) *txn {
	amounts := []decimal.Decimal{
		g.randAmount(100, 500),
		g.randAmount(50, 200),
		g.randAmount(20, 100),
	}
	total := amounts[0].Add(amounts[1]).Add(amounts[2])

	return &txn{
		Date:      date.Format(time.DateOnly),
		Payee:     pick(g.rng, payees),
		Narration: pick(g.rng, narrations),
		Tags:      []string{pick(g.rng, tags), pick(g.rng, tags)},
		Links:     []string{pick(g.rng, links)},
		Meta:      map[string]string{"receipt": fmt.Sprintf("RCP-%d", g.rng.Intn(100000))},
		Postings: []posting{
			{Account: "Expenses:Food:Restaurant", Number: amounts[0].StringFixed(2), Currency: "USD"},
			{Account: "Expenses:Food:Groceries", Number: amounts[1].StringFixed(2), Currency: "USD"},
			{Account: "Expenses:Transport:Gas", Number: amounts[2].StringFixed(2), Currency: "USD"},
			{Account: "Assets:Bank:Checking", Number: total.Neg().StringFixed(2), Currency: "USD"},
		},
	}
}

// padding pads a cash account up to a random balance on the next day.
func (g *generator) padding(date time.Time) []statement {
	account := pick(g.rng, accounts[:3])

	return []statement{
		{Directive: &directive{Type: "pad", Date: date.Format(time.DateOnly), Account: account, Source: "Equity:Opening-Balances"}},
		{Directive: &directive{
			Type:     "balance",
			Date:     date.AddDate(0, 0, 1).Format(time.DateOnly),
			Account:  account,
			Number:   g.randAmount(1000, 50000).StringFixed(2),
			Currency: "USD",
		}},
	}
}

func (g *generator) priceDirective(date time.Time) *directive {
	return &directive{
		Type:           "price",
		Date:           date.Format(time.DateOnly),
		Currency:       pick(g.rng, stocks),
		Number:         g.randAmount(50, 500).StringFixed(2),
		AmountCurrency: "USD",
	}
}

// Helper functions

func (g *generator) randAmount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + g.rng.Float64()*(max-min)).Round(2)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
