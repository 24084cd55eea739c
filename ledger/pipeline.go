package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beanledger/ast"
	"github.com/robinvdvleuten/beanledger/pyhash"
)

// item is an entry under construction together with what the later passes need to know
// about it.
type item struct {
	entry Entry
	pos   ast.Position
	stmt  ast.Statement

	// record indexes the per-type record list (pads, balances, ...); -1 for txn entries.
	record int

	// Transaction state: postings after elision, postings after booking.
	raw      []Posting
	booked   []Posting
	semantic *SemanticTransaction
}

// interpreter is the mutable state of one analysis run.
type interpreter struct {
	src           Source
	ordering      pyhash.Ordering
	defaultMethod BookingMethod
	maxDepth      int

	opts           *options
	tags           tagStack
	meta           metaStack
	activeFiles    map[string]bool
	includedOnce   map[string]bool
	openAccounts   map[string]bool
	accountMethods map[string]BookingMethod
	nextID         int

	items []*item
	diags Diagnostics

	opened    []string
	opens     []OpenRecord
	closes    []CloseRecord
	pads      []PadRecord
	balances  []BalanceRecord
	notes     []NoteRecord
	documents []DocumentRecord
	events    []EventRecord
	queries   []QueryRecord
	prices    []PriceRecord

	// Filled by the reconcile and ordering passes.
	inventory    *Inventory
	running      runningBalances
	entries      []Entry
	postings     []Posting
	rawPostings  []Posting
	transactions []SemanticTransaction
}

func newInterpreter(src Source, ordering pyhash.Ordering, method BookingMethod, maxDepth int) *interpreter {
	return &interpreter{
		src:            src,
		ordering:       ordering,
		defaultMethod:  method,
		maxDepth:       maxDepth,
		opts:           newOptions(),
		activeFiles:    make(map[string]bool),
		includedOnce:   make(map[string]bool),
		openAccounts:   make(map[string]bool),
		accountMethods: make(map[string]BookingMethod),
		inventory:      NewInventory(),
		running:        make(runningBalances),
	}
}

func (in *interpreter) report(level Level, pos ast.Position, stmt ast.Statement, message string) {
	in.diags = append(in.diags, Diagnostic{
		Level:      level,
		Message:    message,
		SourceFile: pos.Filename,
		SourceLine: pos.Line,
		Statement:  stmt,
	})
}

// walkRoot processes the root file. A root that does not exist or cannot be read aborts the run.
func (in *interpreter) walkRoot(ctx context.Context, root string) error {
	if !in.src.Exists(root) {
		return &FatalError{Pos: ast.Position{Filename: root}, Message: "Ledger file not found: " + root}
	}
	return in.walkFile(ctx, root, 0, ast.Position{Filename: root})
}

// walkFile processes the statements of one file, descending into includes depth-first.
func (in *interpreter) walkFile(ctx context.Context, path string, depth int, includedAt ast.Position) error {
	if in.activeFiles[path] {
		return &IncludeCycleError{Pos: includedAt, Path: path}
	}
	if in.maxDepth > 0 && depth > in.maxDepth {
		return &IncludeDepthError{Pos: includedAt, Path: path, Limit: in.maxDepth}
	}

	file, err := in.src.Load(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &FatalError{Pos: includedAt, Message: "Failed to read ledger: " + path, Err: err}
	}

	in.activeFiles[path] = true
	defer delete(in.activeFiles, path)

	for _, stmt := range file.Statements {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pos := stmt.Position()
		if pos.Filename == "" {
			pos.Filename = path
		}

		switch n := stmt.(type) {
		case *ast.Include:
			if err := in.include(ctx, path, n, pos, depth); err != nil {
				return err
			}
		case *ast.Transaction:
			in.transaction(n, pos)
		case *ast.GlobalDirective:
			in.global(n, pos)
		case ast.Directive:
			in.directive(n, pos)
		}
	}
	return nil
}

func (in *interpreter) include(ctx context.Context, from string, n *ast.Include, pos ast.Position, depth int) error {
	paths, err := in.src.Resolve(from, n.Path)
	if err != nil {
		in.report(LevelError, pos, n, fmt.Sprintf("Failed to resolve include %s: %v", n.Path, err))
		return nil
	}
	if len(paths) == 0 {
		in.report(LevelWarning, pos, n, "Include pattern matched no files: "+n.Path)
		return nil
	}

	for _, path := range paths {
		if n.Once {
			if in.includedOnce[path] {
				continue
			}
			in.includedOnce[path] = true
		}
		if !in.src.Exists(path) {
			in.report(LevelError, pos, n, "Ledger file not found: "+path)
			continue
		}
		if err := in.walkFile(ctx, path, depth+1, pos); err != nil {
			return err
		}
	}
	return nil
}

// allocate reserves the next temporary entry ID.
func (in *interpreter) allocate() int {
	id := in.nextID
	in.nextID++
	return id
}

func (in *interpreter) add(it *item) {
	in.items = append(in.items, it)
}

// checkOpened warns when account is used before its open directive.
func (in *interpreter) checkOpened(account string, pos ast.Position, stmt ast.Statement) {
	if !requiresOpen(account) || in.openAccounts[account] {
		return
	}
	in.report(LevelWarning, pos, stmt, "Account used before open: "+account)
}

func (in *interpreter) directive(n ast.Directive, pos ast.Position) {
	date, err := ast.ParseDate(n.RawDate())
	if err != nil {
		in.report(LevelError, pos, n, "Invalid date: "+n.RawDate())
		return
	}
	kind := strings.ToLower(n.Kind())

	if account, ok := requiredAccount(n); ok && account == "" {
		in.report(LevelError, pos, n, kind+" directive missing account")
		return
	}

	id := in.allocate()
	it := &item{
		entry: Entry{
			ID:         id,
			Date:       *date,
			Type:       EntryType(kind),
			SourceFile: pos.Filename,
			SourceLine: pos.Line,
		},
		pos:    pos,
		stmt:   n,
		record: -1,
	}

	switch d := n.(type) {
	case *ast.Open:
		it.record = len(in.opens)
		rec := OpenRecord{EntryID: id, Account: d.Account, Currencies: d.Currencies}
		if d.BookingMethod != "" {
			method, err := ParseBookingMethod(d.BookingMethod)
			if err != nil {
				in.report(LevelWarning, pos, n, fmt.Sprintf("invalid booking method %s for account %s", d.BookingMethod, d.Account))
			} else {
				rec.BookingMethod = method
				in.accountMethods[d.Account] = method
			}
		}
		in.opens = append(in.opens, rec)
		if !in.openAccounts[d.Account] {
			in.openAccounts[d.Account] = true
			in.opened = append(in.opened, d.Account)
		}

	case *ast.Close:
		it.record = len(in.closes)
		in.closes = append(in.closes, CloseRecord{EntryID: id, Account: d.Account})
		in.checkOpened(d.Account, pos, n)

	case *ast.Pad:
		it.record = len(in.pads)
		in.pads = append(in.pads, PadRecord{EntryID: id, Account: d.Account, SourceAccount: d.SourceAccount})
		in.checkOpened(d.Account, pos, n)
		in.checkOpened(d.SourceAccount, pos, n)

	case *ast.Balance:
		it.record = len(in.balances)
		in.balances = append(in.balances, BalanceRecord{
			EntryID:           id,
			Account:           d.Account,
			Number:            d.Number,
			Currency:          d.Currency,
			ToleranceNumber:   d.ToleranceNumber,
			ToleranceCurrency: d.ToleranceCurrency,
		})
		in.checkOpened(d.Account, pos, n)

	case *ast.Note:
		it.record = len(in.notes)
		in.notes = append(in.notes, NoteRecord{EntryID: id, Account: d.Account, Comment: d.Comment})
		in.checkOpened(d.Account, pos, n)

	case *ast.Document:
		it.record = len(in.documents)
		in.documents = append(in.documents, DocumentRecord{EntryID: id, Account: d.Account, Filename: d.Filename})
		in.checkOpened(d.Account, pos, n)

	case *ast.Event:
		it.record = len(in.events)
		in.events = append(in.events, EventRecord{EntryID: id, Type: d.Type, Description: d.Description})

	case *ast.Query:
		it.record = len(in.queries)
		in.queries = append(in.queries, QueryRecord{EntryID: id, Name: d.Name, QueryString: d.QueryString})
		if d.Name == "" {
			in.report(LevelWarning, pos, n, "Query directive missing name")
		}

	case *ast.Price:
		it.record = len(in.prices)
		in.prices = append(in.prices, PriceRecord{EntryID: id, Currency: d.Currency, Number: d.Number, AmountCurrency: d.AmountCurrency})
		if d.Currency == "" {
			in.report(LevelWarning, pos, n, "Price directive missing currency")
		}

	default:
		// Unsupported directives keep their ID slot but produce no entry.
		return
	}

	in.add(it)
}

// requiredAccount returns the account a directive cannot do without. For pads a missing
// source account counts as missing.
func requiredAccount(n ast.Directive) (string, bool) {
	switch d := n.(type) {
	case *ast.Open:
		return d.Account, true
	case *ast.Close:
		return d.Account, true
	case *ast.Pad:
		if d.SourceAccount == "" {
			return "", true
		}
		return d.Account, true
	case *ast.Balance:
		return d.Account, true
	case *ast.Note:
		return d.Account, true
	case *ast.Document:
		return d.Account, true
	}
	return "", false
}

func (in *interpreter) global(n *ast.GlobalDirective, pos ast.Position) {
	typ := strings.ToLower(n.Type)
	first := ""
	if len(n.Args) > 0 {
		first = strings.TrimSpace(n.Args[0])
	}

	switch typ {
	case "option":
		if level, msg := in.opts.apply(n.Args); level != "" {
			in.report(level, pos, n, msg)
		}

	case "plugin":
		name := "<unknown>"
		if len(n.Args) > 0 {
			name = n.Args[0]
		}
		in.report(LevelWarning, pos, n, fmt.Sprintf("Plugin '%s' ignored; results may differ from tools that execute plugins", name))

	case "popt", "push", "pop":
		msg := fmt.Sprintf("%s: %s directive not yet supported", n.Type, typ)
		if len(n.Args) > 0 {
			msg += " -> " + strings.Join(n.Args, " ")
		}
		in.report(LevelInfo, pos, n, msg)

	case "pushtag":
		tag := normalizeTag(first)
		if tag == "" {
			in.report(LevelWarning, pos, n, "pushtag requires a tag name")
			return
		}
		in.tags.push(tag)

	case "poptag":
		if len(in.tags) == 0 {
			in.report(LevelWarning, pos, n, "poptag with empty stack")
			return
		}
		tag := normalizeTag(first)
		if !in.tags.pop(tag) {
			in.report(LevelWarning, pos, n, "poptag could not find tag: "+tag)
		}

	case "pushmeta":
		entry, ok := parsePushMeta(strings.Join(n.Args, " "))
		if !ok {
			in.report(LevelWarning, pos, n, `pushmeta requires "key value"`)
			return
		}
		in.meta.push(entry)

	case "popmeta":
		if len(in.meta) == 0 {
			in.report(LevelWarning, pos, n, "popmeta with empty stack")
			return
		}
		key := strings.TrimSuffix(first, ":")
		if !in.meta.pop(key) {
			in.report(LevelWarning, pos, n, "popmeta could not find metadata key: "+key)
		}

	default:
		in.report(LevelInfo, pos, n, "Unhandled global directive: "+n.Type)
	}
}

// normalizeTag trims a tag and strips its leading "#".
func normalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

// bookingMethod returns the method used to book postings to account.
func (in *interpreter) bookingMethod(account string) BookingMethod {
	if method, ok := in.accountMethods[account]; ok {
		return method
	}
	if in.opts.bookingMethod != "" {
		return in.opts.bookingMethod
	}
	return in.defaultMethod
}
