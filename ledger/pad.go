package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// padFlag marks the transactions inserted for pad directives.
const padFlag = "P"

// padContext is the pad directive currently active for an account. It remembers the
// currencies it already padded or saw balanced, which it will not pad again.
type padContext struct {
	item   *item
	record PadRecord
	done   map[string]bool

	// costReported is set once the costed-holdings error was raised for this pad.
	costReported bool
}

func newPadContext(it *item, record PadRecord) *padContext {
	return &padContext{item: it, record: record, done: make(map[string]bool)}
}

func (pc *padContext) canPad(currency string) bool {
	return currency != "" && !pc.done[currency]
}

func (pc *padContext) markDone(currency string) {
	if currency != "" {
		pc.done[currency] = true
	}
}

// insertPadding books adjustment to the padded account against the pad's source account and
// records the transaction that does so. The transaction takes the date and source location
// of the pad directive.
func (in *interpreter) insertPadding(pc *padContext, target BalanceRecord, adjustment decimal.Decimal) {
	currency := target.Currency
	in.applyAdjustment(pc.record.Account, currency, adjustment)
	in.applyAdjustment(pc.record.SourceAccount, currency, adjustment.Neg())

	pad := pc.item
	id := in.allocate()
	narration := fmt.Sprintf("(Padding inserted for Balance of %s for difference %s)",
		formatAmount(*target.Number, currency), formatAmount(adjustment, currency))

	contra := adjustment.Neg()
	postings := []Posting{
		{EntryID: id, Account: pc.record.Account, Number: &adjustment, Currency: currency},
		{EntryID: id, Account: pc.record.SourceAccount, Number: &contra, Currency: currency},
	}

	in.add(&item{
		entry: Entry{
			ID:         id,
			Date:       pad.entry.Date,
			Type:       EntryTxn,
			SourceFile: pad.entry.SourceFile,
			SourceLine: pad.entry.SourceLine,
			Txn:        &TransactionPayload{Flag: padFlag, Narration: narration},
		},
		pos:    pad.pos,
		record: -1,
		raw:    postings,
		booked: postings,
		semantic: &SemanticTransaction{
			Date:      pad.entry.Date,
			Flag:      padFlag,
			Narration: narration,
			Postings: []SemanticPosting{
				semanticPosting(postings[0], postingExtras{}),
				semanticPosting(postings[1], postingExtras{}),
			},
			Location: pad.pos,
		},
	})
}

func (in *interpreter) applyAdjustment(account, currency string, adjustment decimal.Decimal) {
	if account == "" || adjustment.IsZero() {
		return
	}
	in.running.post(account, currency, adjustment)
}

// formatAmount renders an amount with the scale it was computed at.
//
//	formatAmount(decimal.RequireFromString("10.50"), "USD") // "10.50 USD"
func formatAmount(number decimal.Decimal, currency string) string {
	text := number.StringFixed(scaleOf(number))
	if currency == "" {
		return text
	}
	return text + " " + currency
}

// stripTrailingZeros drops insignificant fractional zeros: 1.500 becomes 1.5.
func stripTrailingZeros(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(max(0, strippedScale(d)))
}
