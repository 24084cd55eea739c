package ledger

import (
	"golang.org/x/exp/slices"
)

// entryPriority orders entries of the same date: opens first, then balance assertions (which
// hold at the start of the day), then everything else, then documents and closes.
var entryPriority = map[EntryType]int{
	EntryOpen:     -2,
	EntryBalance:  -1,
	EntryDocument: 1,
	EntryClose:    2,
}

// compareItems is the canonical entry order: date, type priority, source line and finally
// the order entries were created in.
func compareItems(a, b *item) int {
	if c := a.entry.Date.Compare(b.entry.Date); c != 0 {
		return c
	}
	if pa, pb := entryPriority[a.entry.Type], entryPriority[b.entry.Type]; pa != pb {
		return pa - pb
	}
	if a.entry.SourceLine != b.entry.SourceLine {
		return a.entry.SourceLine - b.entry.SourceLine
	}
	return a.entry.ID - b.entry.ID
}

// sorted returns the items in canonical order.
func (in *interpreter) sorted() []*item {
	items := slices.Clone(in.items)
	slices.SortFunc(items, compareItems)
	return items
}

// order assigns dense entry IDs in canonical order and remaps every record to them.
func (in *interpreter) order() {
	in.items = in.sorted()

	ids := make(map[int]int, len(in.items))
	in.entries = make([]Entry, len(in.items))
	in.transactions = nil
	for i, it := range in.items {
		ids[it.entry.ID] = i
		it.entry.ID = i
		in.entries[i] = it.entry
		if it.semantic != nil {
			in.transactions = append(in.transactions, *it.semantic)
		}
	}

	for i := range in.opens {
		in.opens[i].EntryID = ids[in.opens[i].EntryID]
	}
	for i := range in.closes {
		in.closes[i].EntryID = ids[in.closes[i].EntryID]
	}
	for i := range in.pads {
		in.pads[i].EntryID = ids[in.pads[i].EntryID]
	}
	for i := range in.balances {
		in.balances[i].EntryID = ids[in.balances[i].EntryID]
	}
	for i := range in.notes {
		in.notes[i].EntryID = ids[in.notes[i].EntryID]
	}
	for i := range in.documents {
		in.documents[i].EntryID = ids[in.documents[i].EntryID]
	}
	for i := range in.events {
		in.events[i].EntryID = ids[in.events[i].EntryID]
	}
	for i := range in.queries {
		in.queries[i].EntryID = ids[in.queries[i].EntryID]
	}
	for i := range in.prices {
		in.prices[i].EntryID = ids[in.prices[i].EntryID]
	}
}

// assignPostingIDs flattens the postings of every entry in final entry order, grouped by
// currency bucket, and numbers them densely. Raw and booked postings are numbered
// independently.
func (in *interpreter) assignPostingIDs() {
	in.rawPostings = in.rawPostings[:0]
	in.postings = in.postings[:0]
	for _, it := range in.items {
		if it.entry.Type != EntryTxn {
			continue
		}
		in.rawPostings = appendNumbered(in.rawPostings, it.raw, it.entry.ID)
		in.postings = appendNumbered(in.postings, it.booked, it.entry.ID)
	}
}

func appendNumbered(dst, postings []Posting, entryID int) []Posting {
	for _, p := range byBucket(postings) {
		p.ID = len(dst)
		p.EntryID = entryID
		dst = append(dst, p)
	}
	return dst
}

// byBucket groups postings by currency bucket in first-seen order, keeping the order within
// a bucket. Postings without a bucket come last.
func byBucket(postings []Posting) []Posting {
	var (
		order  []string
		groups = make(map[string][]Posting)
	)
	for _, p := range postings {
		bucket := p.bucket()
		if _, ok := groups[bucket]; !ok && bucket != "" {
			order = append(order, bucket)
		}
		groups[bucket] = append(groups[bucket], p)
	}
	order = append(order, "")

	out := make([]Posting, 0, len(postings))
	for _, bucket := range order {
		out = append(out, groups[bucket]...)
	}
	return out
}
