package ast

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDecodeBytes(t *testing.T) {
	doc := `
statements:
  - include: {path: "accounts/*.yaml", once: true}
  - option: ["operating_currency", "USD"]
    line: 7
  - pushtag: trip
  - global: {type: popmeta, args: ["location:"]}
  - directive: {type: open, date: 2024-01-01, account: Assets:Cash, currencies: [USD], booking: lifo}
  - directive: {type: balance, date: 2024-01-03, account: Assets:Cash, number: "10.00", tolerance: "0.01", currency: USD}
  - directive: {type: commodity, date: 2024-01-01}
  - txn:
      date: 2024-01-02
      flag: "!"
      payee: Cafe
      narration: Coffee
      tags: [food]
      meta:
        zeta: "1"
        alpha: "2"
      postings:
        - {account: Expenses:Food, number: "3.50", currency: USD}
        - account: Assets:Brokerage
          number: "1"
          currency: HOOL
          cost: {number: "10", currency: USD, date: 2024-1-2, label: first}
          price: {number: "11", currency: USD}
        - {account: Assets:Cash}
      comments: ["; #extra ^receipt"]
`
	file, err := DecodeBytes("main.yaml", []byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, 8, len(file.Statements))

	inc := file.Statements[0].(*Include)
	assert.Equal(t, "accounts/*.yaml", inc.Path)
	assert.True(t, inc.Once)
	assert.Equal(t, "main.yaml", inc.Pos.Filename)

	opt := file.Statements[1].(*GlobalDirective)
	assert.Equal(t, "option", opt.Type)
	assert.Equal(t, []string{"operating_currency", "USD"}, opt.Args)
	assert.Equal(t, 7, opt.Pos.Line)

	push := file.Statements[2].(*GlobalDirective)
	assert.Equal(t, []string{"trip"}, push.Args)

	pop := file.Statements[3].(*GlobalDirective)
	assert.Equal(t, "popmeta", pop.Type)

	open := file.Statements[4].(*Open)
	assert.Equal(t, "2024-01-01", open.Date)
	assert.Equal(t, "LIFO", open.BookingMethod)

	bal := file.Statements[5].(*Balance)
	assert.Equal(t, "10", bal.Number.String())
	assert.Equal(t, "0.01", bal.ToleranceNumber.String())
	assert.Equal(t, "USD", bal.ToleranceCurrency)

	other := file.Statements[6].(*Unsupported)
	assert.Equal(t, "commodity", other.Kind())

	txn := file.Statements[7].(*Transaction)
	assert.Equal(t, "!", txn.Flag)
	assert.Equal(t, []Metadata{{Key: "zeta", Value: "1"}, {Key: "alpha", Value: "2"}}, txn.Metadata)
	assert.Equal(t, 3, len(txn.Postings))
	assert.Equal(t, "3.5", txn.Postings[0].Number.String())
	costed := txn.Postings[1]
	assert.Equal(t, "2024-01-02", costed.CostDate.String())
	assert.Equal(t, "first", costed.CostLabel)
	assert.Equal(t, "11", costed.PriceNumber.String())
	assert.True(t, txn.Postings[2].Number == nil)
	assert.Equal(t, []string{"; #extra ^receipt"}, txn.Comments)
}

func TestDecodeBytes_Empty(t *testing.T) {
	file, err := DecodeBytes("empty.yaml", []byte("\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(file.Statements))
}

func TestDecodeBytes_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"BadNumber", "statements:\n  - directive: {type: price, date: 2024-01-01, currency: HOOL, number: abc}\n", `invalid number "abc"`},
		{"NoKind", "statements:\n  - line: 3\n", "statement has no kind"},
		{"TwoKinds", "statements:\n  - {pushtag: a, poptag: a}\n", "statement has more than one kind"},
		{"NotMapping", "- a\n- b\n", "statement document must be a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes("bad.yaml", []byte(tt.doc))
			assert.Error(t, err)
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
			assert.Contains(t, decodeErr.Message, tt.msg)
			assert.Equal(t, "bad.yaml", decodeErr.GetPosition().Filename)
		})
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yaml")
	err := os.WriteFile(path, []byte("statements:\n  - directive: {type: close, date: 2024-12-31, account: Assets:Cash}\n"), 0o644)
	assert.NoError(t, err)

	file, err := DecodeFile(path)
	assert.NoError(t, err)
	assert.Equal(t, path, file.Filename)
	closeDirective := file.Statements[0].(*Close)
	assert.Equal(t, 2, closeDirective.Pos.Line)
	assert.Equal(t, path, closeDirective.Pos.Filename)
}
