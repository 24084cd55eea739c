package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanledger/ledger"
	"github.com/robinvdvleuten/beanledger/output"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// table is a rendered record table. Cells are plain text; alignment uses display widths so
// that wide runes in payees and narrations line up. Column styles apply after padding.
type table struct {
	title  string
	header []string
	rows   [][]string
	styles map[int]func(*output.Styles, string) string
}

var tableWriters = map[string]func(*ledger.Result) table{
	"entries":  entriesTable,
	"postings": postingsTable,
	"balances": balancesTable,
	"accounts": accountsTable,
}

func tableNames() string {
	names := maps.Keys(tableWriters)
	slices.Sort(names)
	return strings.Join(names, ", ")
}

func writeTables(w io.Writer, result *ledger.Result, names []string) {
	styles := output.NewStyles(w)
	for _, name := range names {
		writeTable(w, styles, tableWriters[name](result))
		_, _ = fmt.Fprintln(w)
	}
}

func writeTable(w io.Writer, styles *output.Styles, t table) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(t.title))
	_, _ = fmt.Fprintln(w, headerStyle.Render(formatRow(t.header, widths, nil)))

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	_, _ = fmt.Fprintln(w, strings.Join(rule, "  "))

	for _, row := range t.rows {
		_, _ = fmt.Fprintln(w, formatRow(row, widths, func(i int, cell string) string {
			if style, ok := t.styles[i]; ok {
				return style(styles, cell)
			}
			return cell
		}))
	}
}

func formatRow(cells []string, widths []int, style func(int, string) string) string {
	last := len(cells) - 1
	for last > 0 && cells[last] == "" {
		last--
	}

	padded := make([]string, last+1)
	for i := 0; i <= last; i++ {
		cell := cells[i]
		if i < last {
			cell = runewidth.FillRight(cell, widths[i])
		}
		if style != nil && cells[i] != "" {
			cell = style(i, cell)
		}
		padded[i] = cell
	}
	return strings.Join(padded, "  ")
}

func entriesTable(result *ledger.Result) table {
	t := table{
		title:  fmt.Sprintf("Entries (%d)", len(result.Data.Entries)),
		header: []string{"ID", "DATE", "TYPE", "FLAG", "PAYEE", "NARRATION", "SOURCE"},
		styles: map[int]func(*output.Styles, string) string{
			2: (*output.Styles).Keyword,
			6: (*output.Styles).FilePath,
		},
	}
	for _, e := range result.Data.Entries {
		var flag, payee, narration string
		if e.Txn != nil {
			flag, payee, narration = e.Txn.Flag, e.Txn.Payee, e.Txn.Narration
		}
		t.rows = append(t.rows, []string{
			strconv.Itoa(e.ID),
			e.Date.String(),
			string(e.Type),
			flag,
			payee,
			narration,
			fmt.Sprintf("%s:%d", filepath.Base(e.SourceFile), e.SourceLine),
		})
	}
	return t
}

func postingsTable(result *ledger.Result) table {
	display := result.Ledger.Display
	if display == nil {
		display = ledger.NewDisplayContext()
	}

	t := table{
		title:  fmt.Sprintf("Postings (%d)", len(result.Data.Postings)),
		header: []string{"ID", "ENTRY", "ACCOUNT", "UNITS", "COST", "PRICE"},
		styles: map[int]func(*output.Styles, string) string{
			2: (*output.Styles).Account,
			3: (*output.Styles).Amount,
			4: (*output.Styles).Amount,
			5: (*output.Styles).Amount,
		},
	}
	for _, p := range result.Data.Postings {
		var units, cost, price string
		if p.Number != nil {
			units = display.Format(*p.Number, p.Currency)
		}
		if p.CostNumber != nil {
			cost = display.Format(*p.CostNumber, p.CostCurrency)
			if p.CostDate != nil {
				cost += ", " + p.CostDate.String()
			}
		}
		if p.PriceNumber != nil {
			price = display.Format(*p.PriceNumber, p.PriceCurrency)
		}
		t.rows = append(t.rows, []string{
			strconv.Itoa(p.ID),
			strconv.Itoa(p.EntryID),
			p.Account,
			units,
			cost,
			price,
		})
	}
	return t
}

func balancesTable(result *ledger.Result) table {
	accounts := maps.Keys(result.Balances)
	slices.Sort(accounts)

	t := table{
		header: []string{"ACCOUNT", "BALANCE"},
		styles: map[int]func(*output.Styles, string) string{
			0: (*output.Styles).Account,
			1: (*output.Styles).Amount,
		},
	}
	for _, account := range accounts {
		balance := result.Balances[account]
		if balance.IsZero() {
			continue
		}
		t.rows = append(t.rows, []string{account, balance.String()})
	}
	t.title = fmt.Sprintf("Balances (%d accounts)", len(t.rows))
	return t
}

func accountsTable(result *ledger.Result) table {
	closed := make(map[string]bool)
	for _, c := range result.Data.Closes {
		closed[c.Account] = true
	}

	t := table{
		title:  fmt.Sprintf("Accounts (%d)", len(result.Data.Opens)),
		header: []string{"ACCOUNT", "CURRENCIES", "BOOKING", "STATUS"},
		styles: map[int]func(*output.Styles, string) string{
			0: (*output.Styles).Account,
			3: (*output.Styles).Dim,
		},
	}
	for _, o := range result.Data.Opens {
		status := "open"
		if closed[o.Account] {
			status = "closed"
		}
		t.rows = append(t.rows, []string{
			o.Account,
			strings.Join(o.Currencies, ","),
			string(o.BookingMethod),
			status,
		})
	}
	return t
}
