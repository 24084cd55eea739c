// Package cli provides the commands of the beanledger command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/robinvdvleuten/beanledger/ledger"
	"github.com/robinvdvleuten/beanledger/loader"
	"github.com/robinvdvleuten/beanledger/output"
	"github.com/robinvdvleuten/beanledger/pyhash"
	"github.com/robinvdvleuten/beanledger/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// levelStyle returns the symbol and style a diagnostic level is printed with.
func levelStyle(level ledger.Level) (string, lipgloss.Style) {
	switch level {
	case ledger.LevelError:
		return errorSymbol, errorStyle
	case ledger.LevelWarning:
		return warningSymbol, warningStyle
	default:
		return infoSymbol, infoStyle
	}
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	err := form.Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// config builds the process-level analyzer config from the global flags. The env file is
// loaded first so that PYTHONHASHSEED can come from it.
func (g *Globals) config() (*ledger.Config, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", g.EnvFile, err)
		}
	}

	cfg := ledger.NewConfig()
	if g.BookingMethod != "" {
		method, err := ledger.ParseBookingMethod(g.BookingMethod)
		if err != nil {
			return nil, err
		}
		cfg.BookingMethod = method
	}

	if g.HashSeed != "" {
		cfg.HashKey = pyhash.KeyFromSeed(g.HashSeed)
	} else {
		cfg.HashKey = pyhash.KeyFromEnv()
	}
	cfg.MaxIncludeDepth = g.MaxIncludeDepth

	return cfg, nil
}

// run is one analysis of a ledger file with the global settings applied.
type run struct {
	ctx       context.Context
	loader    *loader.Loader
	collector telemetry.Collector
	timer     telemetry.Timer
	once      sync.Once
}

// newRun prepares the context of an analysis: config and, when enabled, a telemetry
// collector whose root timer is named after the command and file.
func newRun(globals *Globals, command, file string) (*run, error) {
	cfg, err := globals.config()
	if err != nil {
		return nil, err
	}

	r := &run{
		ctx:    cfg.WithContext(context.Background()),
		loader: loader.New(),
	}

	if globals.Telemetry {
		r.collector = telemetry.NewTimingCollector()
		r.ctx = telemetry.WithCollector(r.ctx, r.collector)

		r.timer = r.collector.Start(fmt.Sprintf("%s %s", command, filepath.Base(file)))
		r.ctx = telemetry.WithRootTimer(r.ctx, r.timer)
	}

	return r, nil
}

func (r *run) analyze(file string) (*ledger.Result, error) {
	return ledger.New(r.loader).Analyze(r.ctx, file)
}

// report writes the timing tree once, if telemetry is enabled.
func (r *run) report(w io.Writer) {
	r.once.Do(func() {
		if r.collector != nil {
			r.timer.End()
			_, _ = fmt.Fprintln(w)
			r.collector.Report(w, output.NewStyles(w))
		}
	})
}
