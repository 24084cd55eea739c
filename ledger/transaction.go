package ledger

import (
	"strings"

	"github.com/robinvdvleuten/beanledger/ast"
)

// transaction builds the entry, postings and semantic view of one transaction.
func (in *interpreter) transaction(n *ast.Transaction, pos ast.Position) {
	date, err := ast.ParseDate(n.Date)
	if err != nil {
		in.report(LevelError, pos, n, "Invalid date: "+n.Date)
		return
	}
	id := in.allocate()

	if n.PipeSeparator && !in.opts.allowPipe {
		in.report(LevelError, pos, n, "Pipe symbol is deprecated.")
	}

	var tags, links []string
	for _, tag := range in.tags {
		tags = appendTag(tags, tag)
	}
	for _, tag := range n.Tags {
		tags = appendTag(tags, tag)
	}
	for _, link := range n.Links {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	var comments []string
	for _, comment := range n.Comments {
		comment = strings.TrimSpace(comment)
		if comment == "" {
			continue
		}
		comments = append(comments, comment)
		tags, links = scrapeAnchors(comment, tags, links)
	}
	tags = in.ordering.Iterate(tags)
	links = in.ordering.Iterate(links)

	metadata := make([]ast.Metadata, 0, len(n.Metadata)+len(in.meta))
	metadata = append(metadata, n.Metadata...)
	metadata = append(metadata, in.meta...)

	postings := make([]Posting, 0, len(n.Postings))
	extras := make(map[int]postingExtras)
	for i, p := range n.Postings {
		costDate := p.CostDate
		if costDate == nil && p.CostNumber != nil && p.Number != nil && p.Number.IsPositive() {
			costDate = date
		}
		postings = append(postings, Posting{
			EntryID:       id,
			Flag:          p.Flag,
			Account:       p.Account,
			Number:        p.Number,
			Currency:      p.Currency,
			CostNumber:    p.CostNumber,
			CostCurrency:  p.CostCurrency,
			CostDate:      costDate,
			CostLabel:     p.CostLabel,
			PriceNumber:   p.PriceNumber,
			PriceCurrency: p.PriceCurrency,
		})
		// The posting index doubles as the ID linking extras to elided clones.
		postings[i].ID = i
		extras[i] = newPostingExtras(p)

		postingPos := pos
		if p.Pos.Line > 0 {
			postingPos = p.Pos
			if postingPos.Filename == "" {
				postingPos.Filename = pos.Filename
			}
		}
		in.checkOpened(p.Account, postingPos, n)
	}

	normalized, warnings := inferMissing(expandAutoPostings(postings))
	for _, w := range warnings {
		in.report(LevelWarning, pos, n, w)
	}

	semantic := &SemanticTransaction{
		Date:      *date,
		Flag:      n.Flag,
		Payee:     n.Payee,
		Narration: n.Narration,
		Tags:      tags,
		Links:     links,
		Metadata:  metadata,
		Postings:  make([]SemanticPosting, len(normalized)),
		Comments:  comments,
		Location:  pos,
	}
	for i, p := range normalized {
		// Clones of an auto posting share its ID; only the first keeps the extras.
		semantic.Postings[i] = semanticPosting(p, extras[p.ID])
		delete(extras, p.ID)
		normalized[i].ID = 0
	}

	in.add(&item{
		entry: Entry{
			ID:         id,
			Date:       *date,
			Type:       EntryTxn,
			SourceFile: pos.Filename,
			SourceLine: pos.Line,
			Txn: &TransactionPayload{
				Flag:      n.Flag,
				Payee:     n.Payee,
				Narration: n.Narration,
				Tags:      tags,
				Links:     links,
			},
		},
		pos:      pos,
		stmt:     n,
		record:   -1,
		raw:      normalized,
		semantic: semantic,
	})
}

// appendTag adds a normalized tag, skipping empty ones. Duplicates are collapsed later by
// the set ordering.
func appendTag(tags []string, tag string) []string {
	if tag = normalizeTag(tag); tag != "" {
		tags = append(tags, tag)
	}
	return tags
}

// scrapeAnchors collects #tag and ^link tokens written in a comment.
func scrapeAnchors(comment string, tags, links []string) ([]string, []string) {
	for _, token := range strings.Fields(comment) {
		if len(token) < 2 {
			continue
		}
		switch token[0] {
		case '#':
			tags = append(tags, token[1:])
		case '^':
			links = append(links, token[1:])
		}
	}
	return tags, links
}

// postingExtras is what a posting carries besides its amounts.
type postingExtras struct {
	metadata []ast.Metadata
	comments []string
}

func newPostingExtras(p *ast.Posting) postingExtras {
	var extras postingExtras
	extras.metadata = p.Metadata
	for _, comment := range p.Comments {
		if comment = strings.TrimSpace(comment); comment != "" {
			extras.comments = append(extras.comments, comment)
		}
	}
	return extras
}

func semanticPosting(p Posting, extras postingExtras) SemanticPosting {
	return SemanticPosting{
		Flag:          p.Flag,
		Account:       p.Account,
		Number:        p.Number,
		Currency:      p.Currency,
		CostNumber:    p.CostNumber,
		CostCurrency:  p.CostCurrency,
		PriceNumber:   p.PriceNumber,
		PriceCurrency: p.PriceCurrency,
		Metadata:      extras.metadata,
		Comments:      extras.comments,
	}
}
