package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func auto(account string) Posting {
	return Posting{Account: account}
}

func describe(postings []Posting) []string {
	out := make([]string, len(postings))
	for i, p := range postings {
		number := "_"
		if p.Number != nil {
			number = p.Number.String()
		}
		out[i] = p.Account + " " + number + " " + p.Currency
	}
	return out
}

func TestExpandAutoPostings(t *testing.T) {
	tests := []struct {
		name     string
		postings []Posting
		want     []string
	}{
		{
			name:     "single bucket is left alone",
			postings: []Posting{units("Assets:A", "1", "USD"), auto("Assets:X")},
			want:     []string{"Assets:A 1 USD", "Assets:X _ "},
		},
		{
			name:     "no auto posting",
			postings: []Posting{units("Assets:A", "1", "USD"), units("Assets:B", "2", "EUR")},
			want:     []string{"Assets:A 1 USD", "Assets:B 2 EUR"},
		},
		{
			name: "one clone per bucket",
			postings: []Posting{
				auto("Assets:X"),
				units("Assets:A", "1", "USD"),
				units("Assets:B", "2", "EUR"),
				units("Assets:C", "3", "USD"),
			},
			want: []string{
				"Assets:X _ USD",
				"Assets:A 1 USD",
				"Assets:C 3 USD",
				"Assets:X _ EUR",
				"Assets:B 2 EUR",
			},
		},
		{
			name: "cost currency is the bucket",
			postings: []Posting{
				atCost("Assets:Broker", "1", "HOOL", "10", "USD", ""),
				units("Assets:B", "2", "EUR"),
				auto("Assets:X"),
			},
			want: []string{
				"Assets:Broker 1 HOOL",
				"Assets:X _ USD",
				"Assets:B 2 EUR",
				"Assets:X _ EUR",
			},
		},
		{
			name: "postings without a bucket come last",
			postings: []Posting{
				{Account: "Assets:Z", Number: decPtr("5")},
				units("Assets:A", "1", "USD"),
				units("Assets:B", "2", "EUR"),
				auto("Assets:X"),
			},
			want: []string{
				"Assets:A 1 USD",
				"Assets:X _ USD",
				"Assets:B 2 EUR",
				"Assets:X _ EUR",
				"Assets:Z 5 ",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(expandAutoPostings(tt.postings)))
		})
	}
}

func TestElisionDefault(t *testing.T) {
	tests := []struct {
		name     string
		postings []Posting
		want     string
	}{
		{
			name:     "single primary currency",
			postings: []Posting{units("Assets:A", "1", "USD"), auto("Assets:X")},
			want:     "USD",
		},
		{
			name:     "several primary currencies",
			postings: []Posting{units("Assets:A", "1", "USD"), units("Assets:B", "1", "EUR"), auto("Assets:X")},
			want:     "",
		},
		{
			name:     "cost currency of a purchase",
			postings: []Posting{atCost("Assets:Broker", "1", "HOOL", "10", "USD", ""), auto("Assets:Cash")},
			want:     "USD",
		},
		{
			name: "primary currency beats the cost currency",
			postings: []Posting{
				atCost("Assets:Broker", "1", "HOOL", "10", "USD", ""),
				units("Assets:Fees", "1", "EUR"),
				auto("Assets:Cash"),
			},
			want: "EUR",
		},
		{
			name:     "nothing observed",
			postings: []Posting{auto("Assets:X")},
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elisionDefault(tt.postings))
		})
	}
}

func TestInferMissing(t *testing.T) {
	t.Run("fills the elided amount", func(t *testing.T) {
		out, warnings := inferMissing([]Posting{
			units("Expenses:Food", "4.50", "USD"),
			units("Expenses:Tip", "0.75", "USD"),
			auto("Assets:Cash"),
		})
		assert.Equal(t, 0, len(warnings))
		assert.Equal(t, []string{"Expenses:Food 4.5 USD", "Expenses:Tip 0.75 USD", "Assets:Cash -5.25 USD"}, describe(out))
	})

	t.Run("currency without number", func(t *testing.T) {
		out, _ := inferMissing([]Posting{
			units("Assets:A", "10", "EUR"),
			{Account: "Assets:B", Currency: "EUR"},
		})
		assert.Equal(t, "-10", out[1].Number.String())
	})

	t.Run("purchase at cost", func(t *testing.T) {
		out, _ := inferMissing([]Posting{
			atCost("Assets:Broker", "10", "HOOL", "25.50", "USD", ""),
			units("Expenses:Fees", "5", "USD"),
			auto("Assets:Cash"),
		})
		assert.Equal(t, "Assets:Cash -260 USD", describe(out)[2])
	})

	t.Run("per-bucket clones", func(t *testing.T) {
		out, warnings := inferMissing(expandAutoPostings([]Posting{
			units("Assets:A", "10", "USD"),
			units("Assets:B", "5", "EUR"),
			auto("Equity:Opening"),
		}))
		assert.Equal(t, 0, len(warnings))
		assert.Equal(t, []string{
			"Assets:A 10 USD",
			"Equity:Opening -10 USD",
			"Assets:B 5 EUR",
			"Equity:Opening -5 EUR",
		}, describe(out))
	})

	t.Run("ambiguous elision", func(t *testing.T) {
		out, warnings := inferMissing([]Posting{
			units("Assets:A", "10", "USD"),
			units("Assets:B", "5", "EUR"),
			{Account: "Assets:C", Currency: "EUR"},
			{Account: "Assets:D", Currency: "USD"},
			{Account: "Assets:E", Currency: "EUR"},
		})
		assert.Equal(t, []string{"Ambiguous elision for currency EUR: 2 postings without amount"}, warnings)
		assert.Zero(t, out[2].Number)
		assert.Equal(t, "-10", out[3].Number.String())
		assert.Zero(t, out[4].Number)
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := []Posting{units("Assets:A", "1", "USD"), auto("Assets:X")}
		_, _ = inferMissing(in)
		assert.Zero(t, in[1].Number)
		assert.Equal(t, "", in[1].Currency)
	})

	t.Run("empty", func(t *testing.T) {
		out, warnings := inferMissing(nil)
		assert.Zero(t, out)
		assert.Zero(t, warnings)
	})
}

func TestCalculateWeights(t *testing.T) {
	tests := []struct {
		name    string
		posting Posting
		want    []string
	}{
		{name: "units", posting: units("Assets:A", "3", "USD"), want: []string{"3 USD"}},
		{name: "at cost", posting: atCost("Assets:A", "2", "HOOL", "10", "USD", ""), want: []string{"2 HOOL", "20 USD"}},
		{name: "cost in own currency", posting: atCost("Assets:A", "2", "USD", "10", "USD", ""), want: []string{"2 USD"}},
		{name: "no number", posting: auto("Assets:A")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, w := range calculateWeights(&tt.posting, tt.posting.Currency) {
				got = append(got, w.Amount.String()+" "+w.Currency)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
