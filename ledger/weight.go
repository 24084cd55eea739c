package ledger

import (
	"github.com/shopspring/decimal"
)

// weight is the contribution of a posting to the balance of one currency.
type weight struct {
	Amount   decimal.Decimal
	Currency string
}

// weightSet is a collection of weights from a single posting
type weightSet []weight

// calculateWeights returns the weights a posting contributes when its currency resolves to
// currency. The units count in currency. A posting held at cost in another currency also
// contributes its total cost (number × cost) to the cost currency.
//
// A posting without a number contributes nothing.
func calculateWeights(p *Posting, currency string) weightSet {
	if p.Number == nil {
		return nil
	}

	var weights weightSet
	if currency != "" {
		weights = append(weights, weight{Amount: *p.Number, Currency: currency})
	}
	if p.CostCurrency != "" && p.CostNumber != nil && p.CostCurrency != p.Currency {
		if total := p.Number.Mul(*p.CostNumber); !total.IsZero() {
			weights = append(weights, weight{Amount: total, Currency: p.CostCurrency})
		}
	}
	return weights
}
