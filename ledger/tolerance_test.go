package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestStrippedScale(t *testing.T) {
	tests := []struct {
		input string
		want  int32
	}{
		{"0", 0},
		{"0.00", 0},
		{"1", 0},
		{"1.50", 1},
		{"-0.125", 3},
		{"1200", -2},
		{"100.00", -2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, strippedScale(dec(tt.input)))
		})
	}
}

func TestToleranceConfig_BalanceTolerance(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*ToleranceConfig)
		number   string
		explicit string
		costs    map[string]decimal.Decimal
		want     string
	}{
		{name: "integer target", number: "100", want: "0"},
		{name: "two digits", number: "100.25", want: "0.01"},
		{name: "trailing zeros do not count", number: "100.50", want: "0.1"},
		{name: "explicit tolerance wins", number: "100.25", explicit: "-0.5", want: "0.5"},
		{
			name:   "multiplier",
			setup:  func(c *ToleranceConfig) { c.multiplier = dec("1.5") },
			number: "1.25",
			want:   "0.03",
		},
		{
			name:   "currency override raises the inferred value",
			setup:  func(c *ToleranceConfig) { c.overrides["USD"] = dec("0.05") },
			number: "1.25",
			want:   "0.05",
		},
		{
			name:   "inferred value above the override",
			setup:  func(c *ToleranceConfig) { c.overrides["USD"] = dec("0.001") },
			number: "1.25",
			want:   "0.01",
		},
		{
			name: "default override",
			setup: func(c *ToleranceConfig) {
				d := dec("0.2")
				c.defaultOverride = &d
			},
			number: "3",
			want:   "0.2",
		},
		{
			name:   "cost tolerance",
			number: "1.25",
			costs:  map[string]decimal.Decimal{"USD": dec("0.5")},
			want:   "0.5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewToleranceConfig()
			if tt.setup != nil {
				tt.setup(c)
			}
			var explicit *decimal.Decimal
			if tt.explicit != "" {
				explicit = decPtr(tt.explicit)
			}
			got := c.BalanceTolerance(decPtr(tt.number), "USD", explicit, tt.costs)
			assert.True(t, got.Equal(dec(tt.want)), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestToleranceConfig_CostTolerances(t *testing.T) {
	postings := []Posting{
		atCost("Assets:Broker", "1.5", "HOOL", "100", "USD", ""),
		atCost("Assets:Broker", "2.25", "HOOL", "10", "USD", ""),
		atCost("Assets:Broker", "3", "HOOL", "1000", "USD", ""),
		{Account: "Assets:Cash", Number: decPtr("10.1"), Currency: "CAD", PriceNumber: decPtr("0.8"), PriceCurrency: "EUR"},
	}

	c := NewToleranceConfig()
	assert.Zero(t, c.CostTolerances(postings))

	c.inferFromCost = true
	got := c.CostTolerances(postings)
	assert.Equal(t, 2, len(got))
	// 0.1 × 0.5 × 100 beats 0.01 × 0.5 × 10; integer units contribute nothing.
	assert.Equal(t, "5", got["USD"].String())
	assert.Equal(t, "0.04", got["EUR"].String())
}

func TestToleranceConfig_Multiplier(t *testing.T) {
	assert.Equal(t, "0.5", NewToleranceConfig().Multiplier().String())
}
