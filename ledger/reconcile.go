package ledger

import (
	"github.com/shopspring/decimal"
)

// reconcile replays the entries in canonical order. Transactions are booked against the
// inventory and added to the running balances; pads open a pad context for their account;
// balance assertions are checked and, where a pad context allows it, satisfied by inserting
// a padding transaction.
func (in *interpreter) reconcile() {
	var raw []Posting
	for _, it := range in.items {
		raw = append(raw, it.raw...)
	}
	costTolerances := in.opts.tolerance.CostTolerances(raw)

	pads := make(map[string]*padContext)
	for _, it := range in.sorted() {
		switch it.entry.Type {
		case EntryTxn:
			in.book(it)
		case EntryPad:
			record := in.pads[it.record]
			if in.inventory.HasCostedAccount(record.Account) {
				in.report(LevelError, it.pos, it.stmt, "Attempt to pad an entry with cost for balance: "+record.Account)
			}
			pads[record.Account] = newPadContext(it, record)
		case EntryBalance:
			in.checkBalance(&in.balances[it.record], pads, costTolerances)
		}
	}
}

// book books the postings of a transaction and posts the result to the running balances.
// A booking error rolls the inventory back; the postings are then kept as written and do
// not move any balance.
func (in *interpreter) book(it *item) {
	keys := make([]string, 0, len(it.raw))
	for _, p := range it.raw {
		keys = append(keys, positionKey(p.Account, p.Currency))
	}
	snap := in.inventory.snapshot(keys)

	var booked []Posting
	for _, p := range it.raw {
		out, err := in.inventory.Book(p, it.entry.Date, in.bookingMethod(p.Account))
		if err != nil {
			in.inventory.restore(snap)
			in.report(LevelError, it.pos, it.stmt, err.Error())
			it.booked = append([]Posting(nil), it.raw...)
			return
		}
		booked = append(booked, out...)
	}
	it.booked = booked

	for _, p := range booked {
		if p.Number != nil {
			in.running.post(p.Account, p.Currency, *p.Number)
		}
	}
}

// checkBalance compares the running balance against a balance assertion and records the
// difference, unless it is within tolerance or can be padded.
func (in *interpreter) checkBalance(record *BalanceRecord, pads map[string]*padContext, costTolerances map[string]decimal.Decimal) {
	if record.Number == nil || record.Currency == "" {
		return
	}
	currency := record.Currency
	diff := in.running.get(record.Account, currency).Sub(*record.Number)
	tolerance := in.opts.tolerance.BalanceTolerance(record.Number, currency, record.ToleranceNumber, costTolerances)

	pc := pads[record.Account]
	padded := false
	switch {
	case diff.Abs().LessThanOrEqual(tolerance):
		// Holds.
	case pc != nil && in.inventory.HasCostedHoldings(record.Account, currency):
		if !pc.costReported {
			in.report(LevelError, pc.item.pos, pc.item.stmt, "Attempt to pad an entry with cost for balance: "+record.Account)
			pc.costReported = true
		}
		in.setDiff(record, diff)
	case pc != nil && pc.canPad(currency):
		in.insertPadding(pc, *record, diff.Neg())
		pc.markDone(currency)
		padded = true
	default:
		in.setDiff(record, diff)
	}

	if pc != nil && !padded {
		pc.markDone(currency)
	}
}

func (in *interpreter) setDiff(record *BalanceRecord, diff decimal.Decimal) {
	stripped := stripTrailingZeros(diff)
	record.DiffNumber = &stripped
	record.DiffCurrency = record.Currency
}
