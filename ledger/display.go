package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayContext carries the number rendering settings of a ledger: a fixed number of
// fractional digits per currency and whether to group thousands with commas.
type DisplayContext struct {
	Precisions   map[string]int32 `json:"precisions" yaml:"precisions"`
	RenderCommas bool             `json:"render_commas" yaml:"render_commas"`
}

// NewDisplayContext creates an empty display context.
func NewDisplayContext() *DisplayContext {
	return &DisplayContext{Precisions: make(map[string]int32)}
}

// SetPrecision fixes the number of fractional digits rendered for currency.
func (dc *DisplayContext) SetPrecision(currency string, digits int32) {
	if currency == "" {
		return
	}
	dc.Precisions[currency] = digits
}

// Precision returns the fixed precision of currency, if one was set.
func (dc *DisplayContext) Precision(currency string) (int32, bool) {
	digits, ok := dc.Precisions[currency]
	return digits, ok
}

// Key identifies the settings, so that equal contexts can share cached renderings.
//
//	commas=false,precisions={EUR=2, USD=2}
func (dc *DisplayContext) Key() string {
	currencies := make([]string, 0, len(dc.Precisions))
	for currency := range dc.Precisions {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	parts := make([]string, len(currencies))
	for i, currency := range currencies {
		parts[i] = fmt.Sprintf("%s=%d", currency, dc.Precisions[currency])
	}
	return fmt.Sprintf("commas=%t,precisions={%s}", dc.RenderCommas, strings.Join(parts, ", "))
}

// Format renders number in currency using the context settings. Currencies without a fixed
// precision keep the number's own scale.
func (dc *DisplayContext) Format(number decimal.Decimal, currency string) string {
	var text string
	if digits, ok := dc.Precision(currency); ok {
		text = number.StringFixedBank(digits)
	} else {
		text = number.String()
	}
	if dc.RenderCommas {
		text = groupThousands(text)
	}
	if currency == "" {
		return text
	}
	return text + " " + currency
}

func groupThousands(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	integer, fraction, hasFraction := strings.Cut(text, ".")

	var buf strings.Builder
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			buf.WriteByte(',')
		}
		buf.WriteRune(r)
	}
	if hasFraction {
		buf.WriteByte('.')
		buf.WriteString(fraction)
	}
	return sign + buf.String()
}
