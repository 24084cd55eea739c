package ledger

import (
	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

// minAverageScale is the smallest number of fractional digits an AVERAGE cost is rounded to.
const minAverageScale = 8

// BookingError is returned when a STRICT reduction cannot identify exactly one lot.
type BookingError struct {
	Account string
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) GetAccount() string {
	return e.Account
}

// Book applies posting to the inventory and returns the postings it books to.
//
// A non-negative posting with cost info adds a lot; its cost date defaults to entryDate. A
// negative posting against a position holding lots consumes lots according to method and is
// split into one posting per consumed lot (AVERAGE books a single blended posting). When the
// matching lots cannot cover the reduction the posting is returned unchanged. Postings
// without account, currency or number pass through untouched.
func (inv *Inventory) Book(posting Posting, entryDate ast.Date, method BookingMethod) ([]Posting, error) {
	if posting.Account == "" || posting.Currency == "" || posting.Number == nil {
		return []Posting{posting}, nil
	}
	key := positionKey(posting.Account, posting.Currency)

	if !posting.Number.IsNegative() {
		if posting.Number.IsPositive() && posting.hasCost() {
			if posting.CostDate == nil {
				date := entryDate
				posting.CostDate = &date
			}
			inv.augment(key, &Lot{
				Units:        *posting.Number,
				CostNumber:   posting.CostNumber,
				CostCurrency: posting.CostCurrency,
				CostDate:     posting.CostDate,
				CostLabel:    posting.CostLabel,
			})
		}
		return []Posting{posting}, nil
	}

	if len(inv.positions[key]) == 0 {
		return []Posting{posting}, nil
	}

	spec := specFromPosting(&posting)
	switch method {
	case BookingStrict:
		return inv.reduceStrict(key, posting, spec, entryDate)
	case BookingAverage:
		return inv.reduceAverage(key, posting, spec), nil
	case BookingLIFO:
		return inv.reduceInOrder(key, posting, spec, entryDate, true), nil
	default:
		return inv.reduceInOrder(key, posting, spec, entryDate, false), nil
	}
}

// reduceInOrder consumes matching lots oldest-first (FIFO) or newest-first (LIFO).
func (inv *Inventory) reduceInOrder(key string, posting Posting, spec lotSpec, entryDate ast.Date, newestFirst bool) []Posting {
	lots := inv.candidates(key, spec)
	need := posting.Number.Neg()
	if total(lots).LessThan(need) {
		return []Posting{posting}
	}
	if newestFirst {
		for i, j := 0, len(lots)-1; i < j; i, j = i+1, j-1 {
			lots[i], lots[j] = lots[j], lots[i]
		}
	}

	var out []Posting
	for _, l := range lots {
		if need.IsZero() {
			break
		}
		take := decimal.Min(l.Units, need)
		l.Units = l.Units.Sub(take)
		need = need.Sub(take)
		out = append(out, chunk(posting, l, take.Neg(), entryDate))
	}
	inv.removeEmpty(key)
	return out
}

// reduceStrict requires the posting to name its cost and to match exactly one lot holding
// enough units.
func (inv *Inventory) reduceStrict(key string, posting Posting, spec lotSpec, entryDate ast.Date) ([]Posting, error) {
	fail := func(reason string) ([]Posting, error) {
		return nil, &BookingError{
			Account: posting.Account,
			Message: "booking_method STRICT " + reason + " for account " + posting.Account,
		}
	}

	if posting.CostNumber == nil || posting.CostCurrency == "" {
		return fail("requires explicit cost on posting")
	}
	lots := inv.candidates(key, spec)
	switch {
	case len(lots) == 0:
		return fail("could not find lot")
	case len(lots) > 1:
		return fail("found ambiguous lots")
	}

	l := lots[0]
	need := posting.Number.Neg()
	if l.Units.LessThan(need) {
		return fail("has insufficient units")
	}
	l.Units = l.Units.Sub(need)
	out := []Posting{chunk(posting, l, *posting.Number, entryDate)}
	inv.removeEmpty(key)
	return out, nil
}

// reduceAverage treats the matching lots as one blended lot. Each lot gives up units in
// proportion to its share and a single posting at the weighted mean cost is booked. Only lots
// in one cost currency blend: the posting's, or else the first matching lot's.
func (inv *Inventory) reduceAverage(key string, posting Posting, spec lotSpec) []Posting {
	lots := sameCostCurrency(inv.candidates(key, spec))
	need := posting.Number.Neg()
	held := total(lots)
	if held.LessThan(need) {
		return []Posting{posting}
	}

	var (
		weighted    = decimal.Zero
		costedUnits = decimal.Zero
		costScale   = int32(minAverageScale)
		unitScale   = scaleOf(need)
	)
	for _, l := range lots {
		unitScale = max(unitScale, scaleOf(l.Units))
		if l.CostNumber == nil {
			continue
		}
		weighted = weighted.Add(l.Units.Mul(*l.CostNumber))
		costedUnits = costedUnits.Add(l.Units)
		costScale = max(costScale, scaleOf(*l.CostNumber))
	}

	takes := make([]decimal.Decimal, len(lots))
	taken := decimal.Zero
	for i, l := range lots {
		takes[i] = need.Mul(l.Units).Div(held).Truncate(unitScale)
		taken = taken.Add(takes[i])
	}
	// The truncated shares fall short by at most a few units of the last digit; the latest
	// lots absorb the remainder.
	rest := need.Sub(taken)
	for i := len(lots) - 1; i >= 0 && rest.IsPositive(); i-- {
		add := decimal.Min(lots[i].Units.Sub(takes[i]), rest)
		takes[i] = takes[i].Add(add)
		rest = rest.Sub(add)
	}
	for i, l := range lots {
		l.Units = l.Units.Sub(takes[i])
	}
	inv.removeEmpty(key)

	booked := posting
	if booked.CostNumber == nil && costedUnits.IsPositive() {
		mean := weighted.Div(costedUnits).RoundBank(costScale)
		booked.CostNumber = &mean
	}
	if booked.CostCurrency == "" {
		booked.CostCurrency = shared(lots, func(l *Lot) string { return l.CostCurrency })
	}
	if booked.CostLabel == "" {
		booked.CostLabel = shared(lots, func(l *Lot) string { return l.CostLabel })
	}
	if booked.CostDate == nil && len(lots) > 0 {
		date := lots[0].CostDate
		for _, l := range lots[1:] {
			if !l.CostDate.Equal(date) {
				date = nil
				break
			}
		}
		booked.CostDate = date
	}
	return []Posting{booked}
}

// chunk is the part of a reducing posting booked against one lot. Cost fields set on the
// posting win over the lot's.
func chunk(posting Posting, l *Lot, units decimal.Decimal, entryDate ast.Date) Posting {
	out := posting
	out.Number = &units
	if out.CostNumber == nil {
		out.CostNumber = l.CostNumber
	}
	if out.CostCurrency == "" {
		out.CostCurrency = l.CostCurrency
	}
	if out.CostDate == nil {
		out.CostDate = l.CostDate
	}
	if out.CostDate == nil {
		date := entryDate
		out.CostDate = &date
	}
	if out.CostLabel == "" {
		out.CostLabel = l.CostLabel
	}
	return out
}

// sameCostCurrency keeps the lots sharing the cost currency of the first lot.
func sameCostCurrency(lots []*Lot) []*Lot {
	if len(lots) == 0 {
		return lots
	}
	currency := lots[0].CostCurrency
	out := lots[:0:0]
	for _, l := range lots {
		if l.CostCurrency == currency {
			out = append(out, l)
		}
	}
	return out
}

func total(lots []*Lot) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lots {
		sum = sum.Add(l.Units)
	}
	return sum
}

// shared returns the value every lot agrees on, or "" when they differ.
func shared(lots []*Lot, field func(*Lot) string) string {
	if len(lots) == 0 {
		return ""
	}
	value := field(lots[0])
	for _, l := range lots[1:] {
		if field(l) != value {
			return ""
		}
	}
	return value
}

// scaleOf returns the number of fractional digits d is written with.
func scaleOf(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}
