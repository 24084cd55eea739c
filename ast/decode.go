package ast

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DecodeError is returned when a statement document is malformed.
type DecodeError struct {
	Pos     Position
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GetPosition returns the document position the error was found at.
func (e *DecodeError) GetPosition() Position { return e.Pos }

// DecodeFile reads and decodes the statement document at path.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(path, data)
}

// Decode reads a statement document from r. Filename is recorded on every position.
func Decode(filename string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(filename, data)
}

// DecodeBytes decodes a YAML statement document:
//
//	statements:
//	  - include: {path: "accounts/*.yaml", once: true}
//	  - option: ["operating_currency", "USD"]
//	  - directive: {type: open, date: 2024-01-01, account: Assets:Cash, currencies: [USD]}
//	  - txn:
//	      date: 2024-01-02
//	      narration: Coffee
//	      postings:
//	        - {account: Expenses:Food, number: "3.50", currency: USD}
//	        - {account: Assets:Cash}
//
// Statement positions default to the YAML line of the item; an explicit line key wins.
func DecodeBytes(filename string, data []byte) (*File, error) {
	file := &File{Filename: filename}
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Pos: Position{Filename: filename, Line: 1}, Message: err.Error(), Err: err}
	}
	d := &decoder{filename: filename}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, d.errorf(doc, "statement document must be a mapping")
	}
	list := mappingValue(doc, "statements")
	if list == nil {
		return file, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, d.errorf(list, "statements must be a sequence")
	}

	for _, item := range list.Content {
		stmt, err := d.statement(item)
		if err != nil {
			return nil, err
		}
		file.Statements = append(file.Statements, stmt)
	}
	return file, nil
}

type decoder struct {
	filename string
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) *DecodeError {
	return &DecodeError{
		Pos:     Position{Filename: d.filename, Line: node.Line, Column: node.Column},
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *decoder) wrap(node *yaml.Node, err error) *DecodeError {
	return &DecodeError{
		Pos:     Position{Filename: d.filename, Line: node.Line, Column: node.Column},
		Message: err.Error(),
		Err:     err,
	}
}

type located struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

func (d *decoder) position(node *yaml.Node, loc located) Position {
	pos := Position{Filename: d.filename, Line: node.Line}
	if loc.Line > 0 {
		pos.Line = loc.Line
		pos.Column = loc.Column
	}
	return pos
}

func (d *decoder) statement(item *yaml.Node) (Statement, error) {
	if item.Kind != yaml.MappingNode {
		return nil, d.errorf(item, "statement must be a mapping")
	}

	var (
		loc       located
		kind      string
		body      *yaml.Node
		hasLocKey bool
	)
	for i := 0; i+1 < len(item.Content); i += 2 {
		key, value := item.Content[i], item.Content[i+1]
		switch key.Value {
		case "line", "column":
			if err := item.Decode(&loc); err != nil {
				return nil, d.wrap(item, err)
			}
			hasLocKey = true
		default:
			if kind != "" {
				return nil, d.errorf(key, "statement has more than one kind: %s and %s", kind, key.Value)
			}
			kind, body = key.Value, value
		}
	}
	if kind == "" {
		return nil, d.errorf(item, "statement has no kind")
	}

	var stmt Statement
	var err error
	switch kind {
	case "include":
		stmt, err = d.include(body)
	case "txn", "transaction":
		stmt, err = d.transaction(body)
	case "directive":
		stmt, err = d.directive(body)
	case "global":
		stmt, err = d.global(body)
	default:
		stmt, err = d.globalShorthand(kind, body)
	}
	if err != nil {
		return nil, err
	}
	if hasLocKey && loc.Line > 0 {
		At(stmt, d.filename, loc.Line)
		setColumn(stmt, loc.Column)
	}
	return stmt, nil
}

type rawInclude struct {
	located `yaml:",inline"`
	Path    string `yaml:"path"`
	Once    bool   `yaml:"once"`
}

func (d *decoder) include(node *yaml.Node) (Statement, error) {
	var raw rawInclude
	if node.Kind == yaml.ScalarNode {
		raw.Path = node.Value
	} else if err := node.Decode(&raw); err != nil {
		return nil, d.wrap(node, err)
	}
	return &Include{Pos: d.position(node, raw.located), Path: raw.Path, Once: raw.Once}, nil
}

type rawGlobal struct {
	located `yaml:",inline"`
	Type    string   `yaml:"type"`
	Args    []string `yaml:"args"`
}

func (d *decoder) global(node *yaml.Node) (Statement, error) {
	var raw rawGlobal
	if err := node.Decode(&raw); err != nil {
		return nil, d.wrap(node, err)
	}
	if raw.Type == "" {
		return nil, d.errorf(node, "global directive missing type")
	}
	return &GlobalDirective{Pos: d.position(node, raw.located), Type: raw.Type, Args: raw.Args}, nil
}

// globalShorthand decodes "option: [name, value]" and "pushtag: trip" style items.
func (d *decoder) globalShorthand(typ string, node *yaml.Node) (Statement, error) {
	g := &GlobalDirective{Pos: Position{Filename: d.filename, Line: node.Line}, Type: typ}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			g.Args = []string{node.Value}
		}
	case yaml.SequenceNode:
		if err := node.Decode(&g.Args); err != nil {
			return nil, d.wrap(node, err)
		}
	default:
		return nil, d.errorf(node, "%s: arguments must be a scalar or a sequence", typ)
	}
	return g, nil
}

type rawDirective struct {
	located        `yaml:",inline"`
	Type           string   `yaml:"type"`
	Date           string   `yaml:"date"`
	Account        string   `yaml:"account"`
	Currencies     []string `yaml:"currencies"`
	Booking        string   `yaml:"booking"`
	Source         string   `yaml:"source"`
	Number         string   `yaml:"number"`
	Currency       string   `yaml:"currency"`
	Tolerance      string   `yaml:"tolerance"`
	Comment        string   `yaml:"comment"`
	Filename       string   `yaml:"filename"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Query          string   `yaml:"query"`
	AmountCurrency string   `yaml:"amount_currency"`
}

func (d *decoder) directive(node *yaml.Node) (Statement, error) {
	var raw rawDirective
	if err := node.Decode(&raw); err != nil {
		return nil, d.wrap(node, err)
	}
	pos := d.position(node, raw.located)
	typ := strings.ToLower(raw.Type)

	switch typ {
	case "open":
		return &Open{Pos: pos, Date: raw.Date, Account: raw.Account, Currencies: raw.Currencies, BookingMethod: strings.ToUpper(raw.Booking)}, nil
	case "close":
		return &Close{Pos: pos, Date: raw.Date, Account: raw.Account}, nil
	case "pad":
		return &Pad{Pos: pos, Date: raw.Date, Account: raw.Account, SourceAccount: raw.Source}, nil
	case "balance":
		b := &Balance{Pos: pos, Date: raw.Date, Account: raw.Account, Currency: raw.Currency}
		var err error
		if b.Number, err = d.number(node, raw.Number); err != nil {
			return nil, err
		}
		if b.ToleranceNumber, err = d.number(node, raw.Tolerance); err != nil {
			return nil, err
		}
		if b.ToleranceNumber != nil {
			b.ToleranceCurrency = raw.Currency
		}
		return b, nil
	case "note":
		return &Note{Pos: pos, Date: raw.Date, Account: raw.Account, Comment: raw.Comment}, nil
	case "document":
		return &Document{Pos: pos, Date: raw.Date, Account: raw.Account, Filename: raw.Filename}, nil
	case "event":
		return &Event{Pos: pos, Date: raw.Date, Type: raw.Name, Description: raw.Description}, nil
	case "query":
		return &Query{Pos: pos, Date: raw.Date, Name: raw.Name, QueryString: raw.Query}, nil
	case "price":
		number, err := d.number(node, raw.Number)
		if err != nil {
			return nil, err
		}
		return &Price{Pos: pos, Date: raw.Date, Currency: raw.Currency, Number: number, AmountCurrency: raw.AmountCurrency}, nil
	case "":
		return nil, d.errorf(node, "directive missing type")
	default:
		return &Unsupported{Pos: pos, Date: raw.Date, Type: typ}, nil
	}
}

type rawCost struct {
	Number   string `yaml:"number"`
	Currency string `yaml:"currency"`
	Date     string `yaml:"date"`
	Label    string `yaml:"label"`
}

type rawPrice struct {
	Number   string `yaml:"number"`
	Currency string `yaml:"currency"`
}

type rawPosting struct {
	located  `yaml:",inline"`
	Flag     string    `yaml:"flag"`
	Account  string    `yaml:"account"`
	Number   string    `yaml:"number"`
	Currency string    `yaml:"currency"`
	Cost     *rawCost  `yaml:"cost"`
	Price    *rawPrice `yaml:"price"`
	Meta     yaml.Node `yaml:"meta"`
	Comments []string  `yaml:"comments"`
}

type rawTransaction struct {
	located   `yaml:",inline"`
	Date      string      `yaml:"date"`
	Flag      string      `yaml:"flag"`
	Payee     string      `yaml:"payee"`
	Narration string      `yaml:"narration"`
	Tags      []string    `yaml:"tags"`
	Links     []string    `yaml:"links"`
	Meta      yaml.Node   `yaml:"meta"`
	Postings  []yaml.Node `yaml:"postings"`
	Comments  []string    `yaml:"comments"`
	Pipe      bool        `yaml:"pipe"`
}

func (d *decoder) transaction(node *yaml.Node) (Statement, error) {
	var raw rawTransaction
	if err := node.Decode(&raw); err != nil {
		return nil, d.wrap(node, err)
	}
	meta, err := d.metadata(&raw.Meta)
	if err != nil {
		return nil, err
	}
	flag := raw.Flag
	if flag == "" {
		flag = "*"
	}
	txn := &Transaction{
		Pos:           d.position(node, raw.located),
		Date:          raw.Date,
		Flag:          flag,
		Payee:         raw.Payee,
		Narration:     raw.Narration,
		Tags:          raw.Tags,
		Links:         raw.Links,
		Metadata:      meta,
		Comments:      raw.Comments,
		PipeSeparator: raw.Pipe,
	}
	for i := range raw.Postings {
		p, err := d.posting(&raw.Postings[i])
		if err != nil {
			return nil, err
		}
		txn.Postings = append(txn.Postings, p)
	}
	return txn, nil
}

func (d *decoder) posting(node *yaml.Node) (*Posting, error) {
	var raw rawPosting
	if err := node.Decode(&raw); err != nil {
		return nil, d.wrap(node, err)
	}
	p := &Posting{
		Pos:      d.position(node, raw.located),
		Flag:     raw.Flag,
		Account:  raw.Account,
		Currency: raw.Currency,
		Comments: raw.Comments,
	}
	var err error
	if p.Number, err = d.number(node, raw.Number); err != nil {
		return nil, err
	}
	if raw.Cost != nil {
		if p.CostNumber, err = d.number(node, raw.Cost.Number); err != nil {
			return nil, err
		}
		p.CostCurrency = raw.Cost.Currency
		p.CostLabel = raw.Cost.Label
		if raw.Cost.Date != "" {
			if p.CostDate, err = ParseDate(raw.Cost.Date); err != nil {
				return nil, d.wrap(node, err)
			}
		}
	}
	if raw.Price != nil {
		if p.PriceNumber, err = d.number(node, raw.Price.Number); err != nil {
			return nil, err
		}
		p.PriceCurrency = raw.Price.Currency
	}
	if p.Metadata, err = d.metadata(&raw.Meta); err != nil {
		return nil, err
	}
	return p, nil
}

// metadata keeps the key order of the YAML mapping.
func (d *decoder) metadata(node *yaml.Node) ([]Metadata, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "meta must be a mapping")
	}
	meta := make([]Metadata, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		meta = append(meta, Metadata{Key: node.Content[i].Value, Value: node.Content[i+1].Value})
	}
	return meta, nil
}

func (d *decoder) number(node *yaml.Node, s string) (*decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	n, err := decimal.NewFromString(s)
	if err != nil {
		return nil, d.errorf(node, "invalid number %q", s)
	}
	return &n, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func setColumn(stmt Statement, column int) {
	if column == 0 {
		return
	}
	switch n := stmt.(type) {
	case *Include:
		n.Pos.Column = column
	case *GlobalDirective:
		n.Pos.Column = column
	case *Transaction:
		n.Pos.Column = column
	case *Open:
		n.Pos.Column = column
	case *Close:
		n.Pos.Column = column
	case *Pad:
		n.Pos.Column = column
	case *Balance:
		n.Pos.Column = column
	case *Note:
		n.Pos.Column = column
	case *Document:
		n.Pos.Column = column
	case *Event:
		n.Pos.Column = column
	case *Query:
		n.Pos.Column = column
	case *Price:
		n.Pos.Column = column
	case *Unsupported:
		n.Pos.Column = column
	}
}
