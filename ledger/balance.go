package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Balance represents the balance of an account across one or more currencies.
// It stores amounts in a sorted slice for deterministic iteration and display.
type Balance struct {
	entries []*CurrencyAmount
}

// CurrencyAmount represents an amount in a specific currency.
type CurrencyAmount struct {
	Currency string
	Amount   decimal.Decimal
}

// NewBalance creates an empty balance.
func NewBalance() *Balance {
	return &Balance{entries: []*CurrencyAmount{}}
}

// Get returns the amount for a specific currency, or zero if not found.
func (b *Balance) Get(currency string) decimal.Decimal {
	for _, e := range b.entries {
		if e.Currency == currency {
			return e.Amount
		}
	}
	return decimal.Zero
}

// Add adds an amount to a currency, inserting it in currency order when new.
func (b *Balance) Add(currency string, amount decimal.Decimal) {
	i := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Currency >= currency
	})
	if i < len(b.entries) && b.entries[i].Currency == currency {
		b.entries[i].Amount = b.entries[i].Amount.Add(amount)
		return
	}
	b.entries = append(b.entries, nil)
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = &CurrencyAmount{Currency: currency, Amount: amount}
}

// IsZero returns true if all amounts are zero or balance is empty.
func (b *Balance) IsZero() bool {
	for _, e := range b.entries {
		if !e.Amount.IsZero() {
			return false
		}
	}
	return true
}

// Currencies returns a sorted list of all currencies in this balance.
func (b *Balance) Currencies() []string {
	currencies := make([]string, len(b.entries))
	for i, e := range b.entries {
		currencies[i] = e.Currency
	}
	return currencies
}

// Entries returns the underlying sorted list of currency amounts.
func (b *Balance) Entries() []*CurrencyAmount {
	return b.entries
}

// String returns a human-readable representation of the balance.
func (b *Balance) String() string {
	if len(b.entries) == 0 {
		return "(empty)"
	}

	var parts []string
	for _, e := range b.entries {
		parts = append(parts, e.Amount.String()+" "+e.Currency)
	}
	return strings.Join(parts, ", ")
}

// runningBalances tracks a Balance for every account and account prefix.
type runningBalances map[string]*Balance

// post adds amount to account and each of its parents.
func (rb runningBalances) post(account, currency string, amount decimal.Decimal) {
	if currency == "" {
		return
	}
	for _, prefix := range AccountHierarchy(account) {
		bal, ok := rb[prefix]
		if !ok {
			bal = NewBalance()
			rb[prefix] = bal
		}
		bal.Add(currency, amount)
	}
}

func (rb runningBalances) get(account, currency string) decimal.Decimal {
	if bal, ok := rb[account]; ok {
		return bal.Get(currency)
	}
	return decimal.Zero
}
