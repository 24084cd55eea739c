package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/robinvdvleuten/beanledger/ledger"
)

// ReportCmd renders a Markdown summary of an analysis in the terminal.
type ReportCmd struct {
	File  string `help:"Ledger root file." arg:"" type:"existingfile"`
	Width int    `help:"Word wrap width of the rendered report." default:"100"`
	Raw   bool   `help:"Print the Markdown source instead of rendering it."`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	r, err := newRun(globals, "report", cmd.File)
	if err != nil {
		return err
	}
	defer r.report(ctx.Stderr)

	result, err := r.analyze(cmd.File)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer().Render(err))
		return NewCommandError(1)
	}

	md := reportMarkdown(result)
	if cmd.Raw {
		_, _ = fmt.Fprint(ctx.Stdout, md)
		return nil
	}

	style := glamour.WithAutoStyle()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(cmd.Width))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, _ = fmt.Fprint(ctx.Stdout, out)

	if result.Diagnostics.HasErrors() {
		return NewCommandError(1)
	}
	return nil
}

// reportMarkdown summarizes a result: counts, account balances, market values at the latest
// price and the diagnostics.
func reportMarkdown(result *ledger.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ledger report: %s\n\n", filepath.Base(result.Root))
	fmt.Fprintf(&b, "Run `%s`, beanledger %s\n\n", result.RunID, version())

	b.WriteString("## Summary\n\n")
	b.WriteString("| Entries | Postings | Accounts | Prices | Errors | Warnings |\n")
	b.WriteString("|--------:|---------:|---------:|-------:|-------:|---------:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n\n",
		len(result.Data.Entries),
		len(result.Data.Postings),
		len(result.Data.Opens),
		len(result.Data.Prices),
		len(result.Diagnostics.Errors()),
		len(result.Diagnostics.Warnings()),
	)

	writeBalances(&b, result)
	writeMarketValues(&b, result)

	if len(result.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(&b, "- **%s** `%s:%d` %s\n", d.Level, filepath.Base(d.SourceFile), d.SourceLine, escapeMarkdown(d.Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeBalances(b *strings.Builder, result *ledger.Result) {
	var rows []string
	for _, o := range result.Data.Opens {
		balance, ok := result.Balances[o.Account]
		if !ok || balance.IsZero() {
			continue
		}
		rows = append(rows, fmt.Sprintf("| %s | %s |", o.Account, balance))
	}
	if len(rows) == 0 {
		return
	}

	b.WriteString("## Balances\n\n")
	b.WriteString("| Account | Balance |\n")
	b.WriteString("|---------|--------:|\n")
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n\n")
}

// writeMarketValues converts every account holding into the first operating currency using
// the price graph at its latest date. Holdings without a known price are left out.
func writeMarketValues(b *strings.Builder, result *ledger.Result) {
	if len(result.Ledger.OperatingCurrencies) == 0 {
		return
	}
	target := result.Ledger.OperatingCurrencies[0]

	prices := ledger.BuildPriceGraph(&result.Data)
	date, ok := prices.Latest()
	if !ok {
		return
	}

	var rows []string
	total := decimal.Zero
	for _, o := range result.Data.Opens {
		balance, ok := result.Balances[o.Account]
		if !ok {
			continue
		}

		value := decimal.Zero
		priced := false
		for _, amount := range balance.Entries() {
			if amount.Amount.IsZero() {
				continue
			}
			rate, ok := prices.LookupPrice(date, amount.Currency, target)
			if !ok {
				continue
			}
			value = value.Add(amount.Amount.Mul(rate))
			priced = true
		}
		if !priced {
			continue
		}

		total = total.Add(value)
		rows = append(rows, fmt.Sprintf("| %s | %s %s |", o.Account, value.StringFixed(2), target))
	}
	if len(rows) == 0 {
		return
	}

	fmt.Fprintf(b, "## Market value in %s on %s\n\n", target, date)
	b.WriteString("| Account | Value |\n")
	b.WriteString("|---------|------:|\n")
	b.WriteString(strings.Join(rows, "\n"))
	fmt.Fprintf(b, "\n| **Total** | **%s %s** |\n\n", total.StringFixed(2), target)
}

func version() string {
	if Version == "" {
		return "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "|", `\|`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
