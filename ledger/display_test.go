package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDisplayContext_Format(t *testing.T) {
	dc := NewDisplayContext()
	dc.SetPrecision("USD", 2)
	dc.SetPrecision("JPY", 0)
	dc.SetPrecision("", 4)

	tests := []struct {
		number   string
		currency string
		commas   bool
		want     string
	}{
		{"1234.5", "USD", false, "1234.50 USD"},
		{"1234.5", "USD", true, "1,234.50 USD"},
		{"-1234567.125", "USD", true, "-1,234,567.12 USD"},
		{"1234.5", "JPY", false, "1234 JPY"},
		{"999", "USD", true, "999.00 USD"},
		{"1234.5678", "EUR", false, "1234.5678 EUR"},
		{"12", "", true, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dc.RenderCommas = tt.commas
			assert.Equal(t, tt.want, dc.Format(dec(tt.number), tt.currency))
		})
	}
}

func TestDisplayContext_Key(t *testing.T) {
	dc := NewDisplayContext()
	assert.Equal(t, "commas=false,precisions={}", dc.Key())

	dc.SetPrecision("USD", 2)
	dc.SetPrecision("EUR", 2)
	dc.RenderCommas = true
	assert.Equal(t, "commas=true,precisions={EUR=2, USD=2}", dc.Key())

	_, ok := dc.Precision("JPY")
	assert.False(t, ok)
}
