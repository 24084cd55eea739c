package ledger

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// isAuto reports whether a posting leaves everything to be inferred: no number, currency,
// cost or price.
func isAuto(p *Posting) bool {
	return p.Number == nil && p.Currency == "" && p.CostNumber == nil && p.CostCurrency == "" &&
		p.PriceNumber == nil && p.PriceCurrency == ""
}

type indexedPosting struct {
	index   int
	posting Posting
}

// expandAutoPostings splits every auto posting into one posting per currency bucket when the
// other postings of the transaction span more than one bucket. Each clone takes the bucket
// currency and balances that bucket on its own.
//
// Postings are returned grouped by bucket (first-seen bucket order, original order within a
// bucket), followed by postings that fall in no bucket. With a single bucket, or without an
// auto posting, postings are returned unchanged.
func expandAutoPostings(postings []Posting) []Posting {
	var (
		autos         []indexedPosting
		uncategorized []indexedPosting
		order         []string
		groups        = make(map[string][]indexedPosting)
	)
	for i, p := range postings {
		if isAuto(&p) {
			autos = append(autos, indexedPosting{i, p})
			continue
		}
		bucket := p.bucket()
		if bucket == "" {
			uncategorized = append(uncategorized, indexedPosting{i, p})
			continue
		}
		if _, ok := groups[bucket]; !ok {
			order = append(order, bucket)
		}
		groups[bucket] = append(groups[bucket], indexedPosting{i, p})
	}
	if len(autos) == 0 || len(order) <= 1 {
		return postings
	}

	for _, auto := range autos {
		for _, bucket := range order {
			clone := auto.posting
			clone.Currency = bucket
			groups[bucket] = append(groups[bucket], indexedPosting{auto.index, clone})
		}
	}

	byIndex := func(a, b indexedPosting) int { return a.index - b.index }
	expanded := make([]Posting, 0, len(postings)+len(autos)*len(order))
	for _, bucket := range order {
		group := groups[bucket]
		slices.SortStableFunc(group, byIndex)
		for _, ip := range group {
			expanded = append(expanded, ip.posting)
		}
	}
	slices.SortStableFunc(uncategorized, byIndex)
	for _, ip := range uncategorized {
		expanded = append(expanded, ip.posting)
	}
	return expanded
}

// elisionDefault picks the currency assumed for postings that name none.
//
// A primary currency is a units currency held without cost in another currency. The single
// primary currency wins. Without one, the single cost currency of the costed postings is
// used, so that the cash leg of a purchase at cost balances in the cost currency. Failing
// that, a single observed currency is used.
func elisionDefault(postings []Posting) string {
	var observed, primary, costs []string
	for _, p := range postings {
		if p.Currency != "" {
			if !slices.Contains(observed, p.Currency) {
				observed = append(observed, p.Currency)
			}
			if (p.CostCurrency == "" || p.CostCurrency == p.Currency) && !slices.Contains(primary, p.Currency) {
				primary = append(primary, p.Currency)
			}
		}
		if p.CostCurrency != "" && p.CostCurrency != p.Currency && !slices.Contains(costs, p.CostCurrency) {
			costs = append(costs, p.CostCurrency)
		}
	}

	switch {
	case len(primary) == 1:
		return primary[0]
	case len(primary) > 0:
		return ""
	case len(costs) == 1:
		return costs[0]
	case len(observed) == 1:
		return observed[0]
	}
	return ""
}

// inferMissing fills in the numbers and currencies elided from postings. Each currency with
// exactly one posting lacking a number receives the negated sum of the other weights in that
// currency. A currency with several such postings is left unresolved and returned as an
// ambiguity warning.
func inferMissing(postings []Posting) ([]Posting, []string) {
	if len(postings) == 0 {
		return nil, nil
	}
	fallback := elisionDefault(postings)

	sums := getBalanceMap()
	defer putBalanceMap(sums)

	currencies := make([]string, len(postings))
	missing := make(map[string][]int)
	var missingOrder []string

	for i := range postings {
		p := &postings[i]
		currency := p.Currency
		if currency == "" {
			currency = p.CostCurrency
		}
		if currency == "" {
			currency = fallback
		}
		currencies[i] = currency

		if currency != "" && p.Number == nil {
			if _, ok := missing[currency]; !ok {
				missingOrder = append(missingOrder, currency)
			}
			missing[currency] = append(missing[currency], i)
		}
		for _, w := range calculateWeights(p, currency) {
			sums[w.Currency] = sums[w.Currency].Add(w.Amount)
		}
	}

	out := make([]Posting, len(postings))
	copy(out, postings)
	for i := range out {
		if out[i].Currency == "" {
			out[i].Currency = currencies[i]
		}
	}

	var warnings []string
	for _, currency := range missingOrder {
		indices := missing[currency]
		if len(indices) > 1 {
			warnings = append(warnings, fmt.Sprintf("Ambiguous elision for currency %s: %d postings without amount", currency, len(indices)))
			continue
		}
		number := sums[currency].Neg()
		out[indices[0]].Number = &number
	}
	return out, warnings
}
