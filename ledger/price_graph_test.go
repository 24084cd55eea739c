package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

func TestPriceGraph_Lookup(t *testing.T) {
	pg := NewPriceGraph()
	assert.NoError(t, pg.AddPrice(*ast.MustParseDate("2024-01-15"), "HOOL", "USD", dec("500")))
	assert.NoError(t, pg.AddPrice(*ast.MustParseDate("2024-01-01"), "HOOL", "USD", dec("400")))
	assert.NoError(t, pg.AddPrice(*ast.MustParseDate("2024-02-01"), "EUR", "USD", dec("1.25")))

	tests := []struct {
		name   string
		date   string
		from   string
		to     string
		want   string
		wantOK bool
	}{
		{name: "exact date", date: "2024-01-15", from: "HOOL", to: "USD", want: "500", wantOK: true},
		{name: "forward fill", date: "2024-01-20", from: "HOOL", to: "USD", want: "500", wantOK: true},
		{name: "older price", date: "2024-01-10", from: "HOOL", to: "USD", want: "400", wantOK: true},
		{name: "inverse", date: "2024-03-01", from: "USD", to: "EUR", want: "0.8", wantOK: true},
		{name: "before first price", date: "2023-12-31", from: "HOOL", to: "USD", want: "0"},
		{name: "unknown pair", date: "2024-03-01", from: "HOOL", to: "EUR", want: "0"},
		{name: "same currency", date: "2000-01-01", from: "CAD", to: "CAD", want: "1", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := pg.LookupPrice(*ast.MustParseDate(tt.date), tt.from, tt.to)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, rate.Equal(dec(tt.want)), "expected %s, got %s", tt.want, rate)
		})
	}

	latest, ok := pg.Latest()
	assert.True(t, ok)
	assert.Equal(t, "2024-02-01", latest.String())
}

func TestPriceGraph_RejectsZero(t *testing.T) {
	pg := NewPriceGraph()
	err := pg.AddPrice(*ast.MustParseDate("2024-01-01"), "HOOL", "USD", decimal.Zero)
	assert.Error(t, err)

	_, ok := pg.Latest()
	assert.False(t, ok)
}

func TestBuildPriceGraph(t *testing.T) {
	result := analyze(t,
		ast.NewPrice("2024-01-01", "HOOL", "510", "USD"),
		ast.NewPrice("2024-01-02", "HOOL", "0", "USD"),
		&ast.Price{Date: "2024-01-03", Currency: "HOOL", AmountCurrency: "USD"},
		ast.NewPrice("2024-01-04", "", "1.1", "USD"),
	)

	pg := BuildPriceGraph(&result.Data)
	rate, ok := pg.LookupPrice(*ast.MustParseDate("2024-06-01"), "HOOL", "USD")
	assert.True(t, ok)
	assert.Equal(t, "510", rate.String())

	latest, _ := pg.Latest()
	assert.Equal(t, "2024-01-01", latest.String())
}
