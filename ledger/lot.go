package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

// Lot is a quantity of a commodity held at one cost basis. Units are never negative.
type Lot struct {
	Units        decimal.Decimal
	CostNumber   *decimal.Decimal
	CostCurrency string
	CostDate     *ast.Date
	CostLabel    string
}

// HasCost reports whether the lot carries any cost information.
func (l *Lot) HasCost() bool {
	return l.CostNumber != nil || l.CostCurrency != "" || l.CostDate != nil || l.CostLabel != ""
}

// String returns a string representation of the lot
func (l *Lot) String() string {
	spec := specFromLot(l)
	if spec.IsEmpty() {
		return l.Units.String()
	}
	return l.Units.String() + " " + spec.String()
}

// lotSpec is the cost annotation of a reducing posting. Every field that is set narrows the
// lots the posting may consume.
type lotSpec struct {
	Cost         *decimal.Decimal // Cost per unit (nil if not given)
	CostCurrency string           // Currency of the cost
	Date         *ast.Date        // Optional acquisition date
	Label        string           // Optional label
}

func specFromPosting(p *Posting) lotSpec {
	return lotSpec{
		Cost:         p.CostNumber,
		CostCurrency: p.CostCurrency,
		Date:         p.CostDate,
		Label:        p.CostLabel,
	}
}

// IsEmpty returns true if this is an empty cost specification {}
func (ls lotSpec) IsEmpty() bool {
	return ls.Cost == nil && ls.CostCurrency == "" && ls.Date == nil && ls.Label == ""
}

// Matches reports whether lot satisfies every field set on the spec. A field set on the spec
// does not match a lot that leaves it unset.
func (ls lotSpec) Matches(lot *Lot) bool {
	if ls.Cost != nil && (lot.CostNumber == nil || !ls.Cost.Equal(*lot.CostNumber)) {
		return false
	}
	if ls.CostCurrency != "" && ls.CostCurrency != lot.CostCurrency {
		return false
	}
	if ls.Date != nil && !ls.Date.Equal(lot.CostDate) {
		return false
	}
	if ls.Label != "" && ls.Label != lot.CostLabel {
		return false
	}
	return true
}

// String returns a string representation of the lot spec
func (ls lotSpec) String() string {
	if ls.IsEmpty() {
		return "{}"
	}

	parts := make([]string, 0, 3)

	switch {
	case ls.Cost != nil:
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s", ls.Cost.String(), ls.CostCurrency)))
	case ls.CostCurrency != "":
		parts = append(parts, ls.CostCurrency)
	}

	if ls.Date != nil {
		parts = append(parts, ls.Date.String())
	}

	if ls.Label != "" {
		parts = append(parts, fmt.Sprintf("\"%s\"", ls.Label))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
