package ledger

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	defaultMultiplier = decimal.RequireFromString("0.5")
	two               = decimal.NewFromInt(2)
)

// ToleranceConfig holds configuration for tolerance inference
type ToleranceConfig struct {
	// multiplier scales the unit of the last significant digit (default 0.5)
	multiplier decimal.Decimal
	// defaultOverride applies to every currency without its own override ("*:value")
	defaultOverride *decimal.Decimal
	// overrides maps currency to tolerance override
	overrides map[string]decimal.Decimal
	// inferFromCost widens tolerances with the precision implied by costs and prices
	inferFromCost bool
}

// NewToleranceConfig creates a default tolerance configuration: no overrides and a 0.5
// multiplier.
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		multiplier: defaultMultiplier,
		overrides:  make(map[string]decimal.Decimal),
	}
}

// Multiplier returns the configured tolerance multiplier.
func (c *ToleranceConfig) Multiplier() decimal.Decimal {
	return c.multiplier
}

// override returns the tolerance override for currency, falling back to the default override.
func (c *ToleranceConfig) override(currency string) (decimal.Decimal, bool) {
	if tol, ok := c.overrides[currency]; ok {
		return tol, true
	}
	if c.defaultOverride != nil {
		return *c.defaultOverride, true
	}
	return decimal.Zero, false
}

// BalanceTolerance returns the allowed absolute deviation for a balance assertion of number
// in currency. An explicit "~" tolerance wins outright. Otherwise the tolerance is inferred
// from the number of digits of the target:
//
//	2 × multiplier × 10^-scale
//
// raised to the configured override when that is larger, and to the cost-derived tolerance
// of the currency when inference from costs is enabled.
func (c *ToleranceConfig) BalanceTolerance(number *decimal.Decimal, currency string, explicit *decimal.Decimal, costTolerances map[string]decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return explicit.Abs()
	}

	candidate := decimal.Zero
	if tol, ok := c.override(currency); ok {
		candidate = tol.Abs()
	}

	if number != nil {
		if scale := strippedScale(*number); scale > 0 {
			inferred := decimal.New(1, -scale).Mul(c.multiplier).Mul(two).Abs()
			candidate = decimal.Max(inferred, candidate)
		}
	}

	if tol, ok := costTolerances[currency]; ok {
		candidate = decimal.Max(candidate, tol.Abs())
	}
	return candidate
}

// CostTolerances derives a tolerance per cost and price currency from the postings of the
// ledger. Each posting whose units have fractional digits contributes
//
//	10^-scale × multiplier × |cost|
//
// to its cost currency (and likewise for its price). The largest contribution wins. Nil is
// returned when inference from costs is disabled.
func (c *ToleranceConfig) CostTolerances(postings []Posting) map[string]decimal.Decimal {
	if !c.inferFromCost {
		return nil
	}

	out := make(map[string]decimal.Decimal)
	merge := func(currency string, tol decimal.Decimal) {
		if currency == "" {
			return
		}
		if existing, ok := out[currency]; !ok || tol.GreaterThan(existing) {
			out[currency] = tol
		}
	}

	for _, p := range postings {
		if p.Number == nil || p.Currency == "" {
			continue
		}
		scale := strippedScale(*p.Number)
		if scale <= 0 {
			continue
		}
		base := decimal.New(1, -scale).Mul(c.multiplier).Abs()
		if p.CostNumber != nil {
			merge(p.CostCurrency, base.Mul(p.CostNumber.Abs()))
		}
		if p.PriceNumber != nil {
			merge(p.PriceCurrency, base.Mul(p.PriceNumber.Abs()))
		}
	}
	return out
}

// strippedScale returns the number of fractional digits of d once trailing zeros are
// removed. Integers with trailing zeros yield a negative scale.
func strippedScale(d decimal.Decimal) int32 {
	if d.IsZero() {
		return 0
	}
	coef := d.Coefficient()
	exp := d.Exponent()
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}
	return -exp
}
