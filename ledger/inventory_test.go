package ledger

import (
	"testing"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/shopspring/decimal"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func units(account, number, currency string) Posting {
	return Posting{Account: account, Number: decPtr(number), Currency: currency}
}

func atCost(account, number, currency, cost, costCurrency, date string) Posting {
	p := units(account, number, currency)
	p.CostNumber = decPtr(cost)
	p.CostCurrency = costCurrency
	if date != "" {
		p.CostDate = ast.MustParseDate(date)
	}
	return p
}

// stock returns an inventory holding 10 HOOL at 100 USD and 10 HOOL at 120 USD.
func stock(t *testing.T) *Inventory {
	t.Helper()
	inv := NewInventory()
	for _, p := range []Posting{
		atCost("Assets:Broker", "10", "HOOL", "100", "USD", "2024-01-01"),
		atCost("Assets:Broker", "10", "HOOL", "120", "USD", "2024-02-01"),
	} {
		if _, err := inv.Book(p, *p.CostDate, BookingFIFO); err != nil {
			t.Fatalf("Book failed: %v", err)
		}
	}
	return inv
}

func remaining(inv *Inventory) []string {
	var out []string
	for _, l := range inv.Lots("Assets:Broker", "HOOL") {
		out = append(out, l.String())
	}
	return out
}

func TestInventory_Augment(t *testing.T) {
	inv := NewInventory()
	day := *ast.MustParseDate("2024-03-05")

	booked, err := inv.Book(atCost("Assets:Broker", "3", "HOOL", "50", "USD", ""), day, BookingFIFO)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if len(booked) != 1 || booked[0].CostDate.String() != "2024-03-05" {
		t.Fatalf("expected the cost date to default to the entry date, got %+v", booked)
	}
	if got := inv.Units("Assets:Broker", "HOOL"); !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3 units, got %s", got)
	}

	// Postings without cost never create lots.
	if _, err := inv.Book(units("Assets:Cash", "100", "USD"), day, BookingFIFO); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if lots := inv.Lots("Assets:Cash", "USD"); len(lots) != 0 {
		t.Errorf("expected no lots for a plain posting, got %v", lots)
	}

	// Neither do zero amounts.
	if _, err := inv.Book(atCost("Assets:Broker", "0", "HOOL", "50", "USD", ""), day, BookingFIFO); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if lots := inv.Lots("Assets:Broker", "HOOL"); len(lots) != 1 {
		t.Errorf("expected 1 lot, got %d", len(lots))
	}
}

func TestInventory_BookingMethods(t *testing.T) {
	day := *ast.MustParseDate("2024-03-01")

	tests := []struct {
		name      string
		method    BookingMethod
		sell      Posting
		wantCosts []string
		wantUnits []string
		wantLots  []string
	}{
		{
			name:      "FIFO reduces from the oldest lot first",
			method:    BookingFIFO,
			sell:      units("Assets:Broker", "-5", "HOOL"),
			wantCosts: []string{"100"},
			wantUnits: []string{"-5"},
			wantLots:  []string{"5 {100 USD, 2024-01-01}", "10 {120 USD, 2024-02-01}"},
		},
		{
			name:      "LIFO reduces from the newest lot first",
			method:    BookingLIFO,
			sell:      units("Assets:Broker", "-5", "HOOL"),
			wantCosts: []string{"120"},
			wantUnits: []string{"-5"},
			wantLots:  []string{"10 {100 USD, 2024-01-01}", "5 {120 USD, 2024-02-01}"},
		},
		{
			name:      "FIFO splits a reduction across lots",
			method:    BookingFIFO,
			sell:      units("Assets:Broker", "-15", "HOOL"),
			wantCosts: []string{"100", "120"},
			wantUnits: []string{"-10", "-5"},
			wantLots:  []string{"5 {120 USD, 2024-02-01}"},
		},
		{
			name:      "LIFO empties the position",
			method:    BookingLIFO,
			sell:      units("Assets:Broker", "-20", "HOOL"),
			wantCosts: []string{"120", "100"},
			wantUnits: []string{"-10", "-10"},
		},
		{
			name:      "cost spec narrows the candidate lots",
			method:    BookingFIFO,
			sell:      atCost("Assets:Broker", "-2", "HOOL", "120", "USD", ""),
			wantCosts: []string{"120"},
			wantUnits: []string{"-2"},
			wantLots:  []string{"10 {100 USD, 2024-01-01}", "8 {120 USD, 2024-02-01}"},
		},
		{
			name:      "STRICT reduces the one matching lot",
			method:    BookingStrict,
			sell:      atCost("Assets:Broker", "-4", "HOOL", "100", "USD", ""),
			wantCosts: []string{"100"},
			wantUnits: []string{"-4"},
			wantLots:  []string{"6 {100 USD, 2024-01-01}", "10 {120 USD, 2024-02-01}"},
		},
		{
			name:      "insufficient units leave the posting unbooked",
			method:    BookingFIFO,
			sell:      units("Assets:Broker", "-25", "HOOL"),
			wantCosts: []string{""},
			wantUnits: []string{"-25"},
			wantLots:  []string{"10 {100 USD, 2024-01-01}", "10 {120 USD, 2024-02-01}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := stock(t)
			booked, err := inv.Book(tt.sell, day, tt.method)
			if err != nil {
				t.Fatalf("Book failed: %v", err)
			}
			if len(booked) != len(tt.wantCosts) {
				t.Fatalf("expected %d booked postings, got %d", len(tt.wantCosts), len(booked))
			}
			for i, p := range booked {
				cost := ""
				if p.CostNumber != nil {
					cost = p.CostNumber.String()
				}
				if cost != tt.wantCosts[i] {
					t.Errorf("posting %d: expected cost %q, got %q", i, tt.wantCosts[i], cost)
				}
				if got := p.Number.String(); got != tt.wantUnits[i] {
					t.Errorf("posting %d: expected units %s, got %s", i, tt.wantUnits[i], got)
				}
			}
			got := remaining(inv)
			if len(got) != len(tt.wantLots) {
				t.Fatalf("expected lots %v, got %v", tt.wantLots, got)
			}
			for i := range got {
				if got[i] != tt.wantLots[i] {
					t.Errorf("lot %d: expected %s, got %s", i, tt.wantLots[i], got[i])
				}
			}
		})
	}
}

func TestInventory_Average(t *testing.T) {
	inv := stock(t)
	booked, err := inv.Book(units("Assets:Broker", "-5", "HOOL"), *ast.MustParseDate("2024-03-01"), BookingAverage)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if len(booked) != 1 {
		t.Fatalf("expected a single blended posting, got %d", len(booked))
	}
	p := booked[0]
	if !p.CostNumber.Equal(decimal.NewFromInt(110)) {
		t.Errorf("expected mean cost 110, got %s", p.CostNumber)
	}
	if p.CostCurrency != "USD" {
		t.Errorf("expected cost currency USD, got %q", p.CostCurrency)
	}
	if p.CostDate != nil {
		t.Errorf("expected no cost date across lots of different dates, got %s", p.CostDate)
	}
	if got := inv.Units("Assets:Broker", "HOOL"); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected 15 units left, got %s", got)
	}
	lots := inv.Lots("Assets:Broker", "HOOL")
	if len(lots) != 2 || !lots[0].Units.Equal(decimal.NewFromInt(8)) || !lots[1].Units.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected shares 8 and 7, got %v", remaining(inv))
	}
}

func TestInventory_AverageRoundsMeanCost(t *testing.T) {
	inv := NewInventory()
	day := *ast.MustParseDate("2024-01-01")
	for _, p := range []Posting{
		atCost("Assets:Broker", "1", "HOOL", "1", "USD", "2024-01-01"),
		atCost("Assets:Broker", "2", "HOOL", "2", "USD", "2024-01-01"),
	} {
		if _, err := inv.Book(p, day, BookingAverage); err != nil {
			t.Fatalf("Book failed: %v", err)
		}
	}

	booked, err := inv.Book(units("Assets:Broker", "-3", "HOOL"), day, BookingAverage)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if got := booked[0].CostNumber.String(); got != "1.66666667" {
		t.Errorf("expected mean cost 1.66666667, got %s", got)
	}
	if booked[0].CostDate.String() != "2024-01-01" {
		t.Errorf("expected the shared cost date, got %v", booked[0].CostDate)
	}
	if !inv.IsEmpty() {
		t.Errorf("expected an empty inventory, got %s", inv)
	}
}

func TestInventory_AverageKeepsCostCurrency(t *testing.T) {
	inv := NewInventory()
	for _, p := range []Posting{
		atCost("Assets:Broker", "10", "HOOL", "100", "USD", "2024-01-01"),
		atCost("Assets:Broker", "10", "HOOL", "90", "EUR", "2024-01-01"),
		atCost("Assets:Broker", "10", "HOOL", "120", "USD", "2024-01-01"),
	} {
		if _, err := inv.Book(p, *p.CostDate, BookingFIFO); err != nil {
			t.Fatalf("Book failed: %v", err)
		}
	}
	day := *ast.MustParseDate("2024-03-01")

	booked, err := inv.Book(units("Assets:Broker", "-4", "HOOL"), day, BookingAverage)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	p := booked[0]
	if !p.CostNumber.Equal(decimal.NewFromInt(110)) || p.CostCurrency != "USD" {
		t.Errorf("expected a USD mean cost of 110, got %s %q", p.CostNumber, p.CostCurrency)
	}
	if got := remaining(inv); len(got) != 3 || !inv.Lots("Assets:Broker", "HOOL")[1].Units.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected the EUR lot untouched, got %v", got)
	}

	eur := units("Assets:Broker", "-5", "HOOL")
	eur.CostCurrency = "EUR"
	booked, err = inv.Book(eur, day, BookingAverage)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if !booked[0].CostNumber.Equal(decimal.NewFromInt(90)) || booked[0].CostCurrency != "EUR" {
		t.Errorf("expected the EUR lot cost, got %s %q", booked[0].CostNumber, booked[0].CostCurrency)
	}

	// 16 USD units remain; the EUR lot cannot cover the rest.
	booked, err = inv.Book(units("Assets:Broker", "-17", "HOOL"), day, BookingAverage)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if booked[0].CostNumber != nil {
		t.Errorf("expected the posting back unchanged, got cost %s", booked[0].CostNumber)
	}
}

func TestInventory_StrictFailures(t *testing.T) {
	day := *ast.MustParseDate("2024-03-01")

	tests := []struct {
		name    string
		setup   func(*Inventory)
		sell    Posting
		wantErr string
	}{
		{
			name:    "missing cost",
			sell:    units("Assets:Broker", "-1", "HOOL"),
			wantErr: "booking_method STRICT requires explicit cost on posting for account Assets:Broker",
		},
		{
			name:    "no matching lot",
			sell:    atCost("Assets:Broker", "-1", "HOOL", "90", "USD", ""),
			wantErr: "booking_method STRICT could not find lot for account Assets:Broker",
		},
		{
			name: "ambiguous lots",
			setup: func(inv *Inventory) {
				p := atCost("Assets:Broker", "1", "HOOL", "100", "USD", "2024-02-15")
				_, _ = inv.Book(p, day, BookingStrict)
			},
			sell:    atCost("Assets:Broker", "-1", "HOOL", "100", "USD", ""),
			wantErr: "booking_method STRICT found ambiguous lots for account Assets:Broker",
		},
		{
			name:    "insufficient units",
			sell:    atCost("Assets:Broker", "-11", "HOOL", "120", "USD", ""),
			wantErr: "booking_method STRICT has insufficient units for account Assets:Broker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := stock(t)
			if tt.setup != nil {
				tt.setup(inv)
			}
			before := inv.String()

			_, err := inv.Book(tt.sell, day, BookingStrict)
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, err.Error())
			}
			bookingErr, ok := err.(*BookingError)
			if !ok || bookingErr.GetAccount() != "Assets:Broker" {
				t.Errorf("expected a *BookingError for Assets:Broker, got %T", err)
			}
			if after := inv.String(); after != before {
				t.Errorf("failed booking changed the inventory: %s -> %s", before, after)
			}
		})
	}
}

func TestInventory_SnapshotRestore(t *testing.T) {
	inv := stock(t)
	keys := []string{positionKey("Assets:Broker", "HOOL"), positionKey("Assets:Other", "HOOL")}
	snap := inv.snapshot(keys)
	before := inv.String()

	day := *ast.MustParseDate("2024-03-01")
	if _, err := inv.Book(units("Assets:Broker", "-20", "HOOL"), day, BookingFIFO); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := inv.Book(atCost("Assets:Other", "1", "HOOL", "1", "USD", ""), day, BookingFIFO); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	inv.restore(snap)
	if after := inv.String(); after != before {
		t.Errorf("expected %s after restore, got %s", before, after)
	}
}

func TestInventory_HasCost(t *testing.T) {
	inv := stock(t)
	if !inv.HasCostedHoldings("Assets:Broker", "HOOL") {
		t.Error("expected costed HOOL holdings")
	}
	if inv.HasCostedHoldings("Assets:Broker", "USD") {
		t.Error("expected no costed USD holdings")
	}
	if !inv.HasCostedAccount("Assets:Broker") {
		t.Error("expected Assets:Broker to hold costed lots")
	}
	if inv.HasCostedAccount("Assets:Bro") {
		t.Error("an account prefix must not match")
	}
}

func TestInventory_String(t *testing.T) {
	inv := stock(t)
	want := "{Assets:Broker: [10 HOOL {100 USD, 2024-01-01}, 10 HOOL {120 USD, 2024-02-01}]}"
	if got := inv.String(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got := NewInventory().String(); got != "{}" {
		t.Errorf("expected {}, got %s", got)
	}
}
