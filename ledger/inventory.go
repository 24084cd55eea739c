package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Inventory tracks lots with cost basis per (account, currency) position. Lots are kept in
// insertion order regardless of booking method.
type Inventory struct {
	// Map: "account|currency" -> lots in insertion order
	positions map[string][]*Lot
}

// NewInventory creates a new inventory
func NewInventory() *Inventory {
	return &Inventory{
		positions: make(map[string][]*Lot),
	}
}

func positionKey(account, currency string) string {
	return account + "|" + currency
}

// Lots returns copies of the lots held for account in currency, oldest first.
func (inv *Inventory) Lots(account, currency string) []Lot {
	lots := inv.positions[positionKey(account, currency)]
	out := make([]Lot, len(lots))
	for i, l := range lots {
		out[i] = *l
	}
	return out
}

// Units returns the total units held for account in currency (summing all lots)
func (inv *Inventory) Units(account, currency string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.positions[positionKey(account, currency)] {
		total = total.Add(l.Units)
	}
	return total
}

// HasCostedHoldings reports whether any lot held for account in currency carries cost info.
func (inv *Inventory) HasCostedHoldings(account, currency string) bool {
	for _, l := range inv.positions[positionKey(account, currency)] {
		if l.HasCost() {
			return true
		}
	}
	return false
}

// HasCostedAccount reports whether account holds a costed lot in any currency.
func (inv *Inventory) HasCostedAccount(account string) bool {
	prefix := account + "|"
	for key, lots := range inv.positions {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, l := range lots {
			if l.HasCost() {
				return true
			}
		}
	}
	return false
}

// augment appends a lot to a position.
func (inv *Inventory) augment(key string, l *Lot) {
	inv.positions[key] = append(inv.positions[key], l)
}

// candidates returns the lots of a position matching spec, in insertion order.
func (inv *Inventory) candidates(key string, spec lotSpec) []*Lot {
	var out []*Lot
	for _, l := range inv.positions[key] {
		if spec.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// removeEmpty drops the fully consumed lots of a position.
func (inv *Inventory) removeEmpty(key string) {
	lots := inv.positions[key]
	kept := lots[:0]
	for _, l := range lots {
		if !l.Units.IsZero() {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(inv.positions, key)
		return
	}
	inv.positions[key] = kept
}

// IsEmpty returns true if the inventory has no lots
func (inv *Inventory) IsEmpty() bool {
	return len(inv.positions) == 0
}

// inventorySnapshot holds copies of some positions so that a failed booking can be undone.
type inventorySnapshot map[string][]Lot

func (inv *Inventory) snapshot(keys []string) inventorySnapshot {
	snap := make(inventorySnapshot, len(keys))
	for _, key := range keys {
		lots := inv.positions[key]
		copies := make([]Lot, len(lots))
		for i, l := range lots {
			copies[i] = *l
		}
		snap[key] = copies
	}
	return snap
}

func (inv *Inventory) restore(snap inventorySnapshot) {
	for key, lots := range snap {
		if len(lots) == 0 {
			delete(inv.positions, key)
			continue
		}
		restored := make([]*Lot, len(lots))
		for i := range lots {
			l := lots[i]
			restored[i] = &l
		}
		inv.positions[key] = restored
	}
}

// String returns a string representation of the inventory
func (inv *Inventory) String() string {
	if inv.IsEmpty() {
		return "{}"
	}

	keys := make([]string, 0, len(inv.positions))
	for key := range inv.positions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf strings.Builder
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		account, currency, _ := strings.Cut(key, "|")
		buf.WriteString(account)
		buf.WriteString(": [")
		for j, l := range inv.positions[key] {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(l.Units.String())
			buf.WriteByte(' ')
			buf.WriteString(currency)
			if l.HasCost() {
				buf.WriteByte(' ')
				buf.WriteString(specFromLot(l).String())
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.String()
}

func specFromLot(l *Lot) lotSpec {
	return lotSpec{Cost: l.CostNumber, CostCurrency: l.CostCurrency, Date: l.CostDate, Label: l.CostLabel}
}
