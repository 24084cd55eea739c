// Package ledger evaluates a parsed ledger into a normalized, ID-stable record set.
//
// The Analyzer walks the statement tree of a root file and everything it includes, keeping
// the interpreter state of a run (tag and metadata stacks, options, open accounts). It then:
//
//   - builds one transaction record per transaction, merging stacked and inline tags and
//     inferring elided posting amounts
//   - replays all entries in canonical order, booking postings against per-(account,
//     currency) inventory lots (FIFO, LIFO, AVERAGE or STRICT) and reconciling balance
//     assertions, inserting padding transactions where a pad directive applies
//   - orders the entries by (date, type priority, line) and assigns dense IDs to entries
//     and postings
//
// Problems found along the way are reported as ordered Diagnostics rather than errors. Only
// failures that make the whole run meaningless (an unreadable root file, an include cycle)
// are returned as errors.
//
// Example usage:
//
//	analyzer := ledger.New(loader.New(), ledger.WithBookingMethod(ledger.BookingFIFO))
//	result, err := analyzer.Analyze(ctx, "main.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d.Level, d.Error())
//	}
package ledger

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/robinvdvleuten/beanledger/pyhash"
	"github.com/robinvdvleuten/beanledger/telemetry"
)

// Source provides the files of a ledger. loader.Loader implements it.
type Source interface {
	// Load reads and decodes the file at an absolute path.
	Load(ctx context.Context, path string) (*ast.File, error)
	// Resolve turns an include path into absolute file paths, relative to fromFile.
	Resolve(fromFile, includePath string) ([]string, error)
	// Exists reports whether path names a readable file.
	Exists(path string) bool
}

// Analyzer evaluates ledgers read from a Source. It holds no state between runs and can be
// reused.
type Analyzer struct {
	src             Source
	bookingMethod   BookingMethod
	ordering        *pyhash.Ordering
	maxIncludeDepth int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBookingMethod sets the booking method used when neither the account's open directive
// nor a booking_method option chooses one.
func WithBookingMethod(method BookingMethod) Option {
	return func(a *Analyzer) {
		a.bookingMethod = method
	}
}

// WithHashSeed sets the PYTHONHASHSEED that tag and link ordering is derived from.
func WithHashSeed(seed string) Option {
	return func(a *Analyzer) {
		ordering := pyhash.NewOrdering(pyhash.KeyFromSeed(seed))
		a.ordering = &ordering
	}
}

// WithOrdering sets the set-ordering emulator used for tags and links.
func WithOrdering(ordering pyhash.Ordering) Option {
	return func(a *Analyzer) {
		a.ordering = &ordering
	}
}

// WithMaxIncludeDepth bounds include nesting. The root file is depth 0.
func WithMaxIncludeDepth(depth int) Option {
	return func(a *Analyzer) {
		a.maxIncludeDepth = depth
	}
}

// New creates an Analyzer reading from src. Settings not given as options are taken from the
// Config in the context passed to Analyze.
func New(src Source, opts ...Option) *Analyzer {
	a := &Analyzer{src: src}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze evaluates the ledger rooted at root.
//
// The returned error is nil, ctx.Err(), or one of *FatalError, *IncludeCycleError and
// *IncludeDepthError. Entry-level problems are reported in Result.Diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	ctx, timer := telemetry.StartTimer(ctx, "ledger.analyze")
	defer timer.End()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &FatalError{Pos: ast.Position{Filename: root}, Message: "Ledger file not found: " + root, Err: err}
	}

	in := a.newInterpreter(ctx)

	walkCtx, walkTimer := telemetry.StartTimer(ctx, "ledger.walk")
	err = in.walkRoot(walkCtx, abs)
	walkTimer.End()
	if err != nil {
		return nil, err
	}

	for _, pass := range []struct {
		name string
		run  func()
	}{
		{"ledger.reconcile", in.reconcile},
		{"ledger.order", in.order},
		{"ledger.postings", in.assignPostingIDs},
	} {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		_, t := telemetry.StartTimer(ctx, pass.name)
		pass.run()
		t.End()
	}

	return in.result(abs), nil
}

func (a *Analyzer) newInterpreter(ctx context.Context) *interpreter {
	cfg := ConfigFromContext(ctx)

	method := cfg.BookingMethod
	if a.bookingMethod != "" {
		method = a.bookingMethod
	}
	if method == "" {
		method = BookingFIFO
	}
	ordering := pyhash.NewOrdering(cfg.HashKey)
	if a.ordering != nil {
		ordering = *a.ordering
	}
	depth := cfg.MaxIncludeDepth
	if a.maxIncludeDepth > 0 {
		depth = a.maxIncludeDepth
	}

	return newInterpreter(a.src, ordering, method, depth)
}

func (in *interpreter) result(root string) *Result {
	return &Result{
		RunID: uuid.New(),
		Root:  root,
		Data: Data{
			Entries:     in.entries,
			Postings:    in.postings,
			RawPostings: in.rawPostings,
			Opens:       in.opens,
			Closes:      in.closes,
			Pads:        in.pads,
			Balances:    in.balances,
			Notes:       in.notes,
			Documents:   in.documents,
			Events:      in.events,
			Queries:     in.queries,
			Prices:      in.prices,
		},
		Ledger: SemanticLedger{
			Transactions:        in.transactions,
			OpenedAccounts:      in.opened,
			OperatingCurrencies: in.opts.operatingCurrencies,
			Display:             in.opts.display,
		},
		Diagnostics: in.diags,
		Balances:    in.running,
	}
}
