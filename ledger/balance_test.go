package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestBalance_Add(t *testing.T) {
	b := NewBalance()
	assert.True(t, b.IsZero())
	assert.Equal(t, "(empty)", b.String())

	b.Add("USD", dec("10.50"))
	b.Add("EUR", dec("3"))
	b.Add("USD", dec("-0.50"))

	assert.Equal(t, []string{"EUR", "USD"}, b.Currencies())
	assert.True(t, b.Get("USD").Equal(decimal.NewFromInt(10)))
	assert.True(t, b.Get("JPY").IsZero())
	assert.Equal(t, "3 EUR, 10 USD", b.String())
	assert.False(t, b.IsZero())

	b.Add("EUR", dec("-3"))
	b.Add("USD", dec("-10"))
	assert.True(t, b.IsZero())
	assert.Equal(t, 2, len(b.Entries()))
}

func TestRunningBalances_Post(t *testing.T) {
	rb := make(runningBalances)
	rb.post("Assets:Bank:Checking", "USD", dec("100"))
	rb.post("Assets:Bank:Savings", "USD", dec("50"))
	rb.post("Assets:Cash", "EUR", dec("20"))
	rb.post("Assets:Cash", "", dec("1"))

	tests := []struct {
		account  string
		currency string
		want     string
	}{
		{"Assets", "USD", "150"},
		{"Assets", "EUR", "20"},
		{"Assets:Bank", "USD", "150"},
		{"Assets:Bank:Checking", "USD", "100"},
		{"Assets:Bank:Savings", "EUR", "0"},
		{"Liabilities", "USD", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.account+" "+tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, rb.get(tt.account, tt.currency).String())
		})
	}

	assert.Equal(t, []string{"EUR"}, rb["Assets:Cash"].Currencies())
}
