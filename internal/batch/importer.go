package batch

import (
	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/rumor-ml/commons.systems/smsledger/internal/parse"
)

// Item is the outcome for one candidate message. Failed items keep their
// raw text so the caller can show the user exactly what did not parse.
type Item struct {
	Raw    string
	Parsed *domain.ParsedTransaction
	Err    error
}

// OK reports whether this item parsed successfully.
func (i *Item) OK() bool {
	return i.Err == nil
}

// Result aggregates a multi-message import.
type Result struct {
	Items  []Item
	OK     int
	Failed int
}

// Importer runs batch imports over a parser.
type Importer struct {
	parser *parse.Parser
}

// NewImporter creates a batch importer
func NewImporter(p *parse.Parser) *Importer {
	return &Importer{parser: p}
}

// Import splits the block into candidate messages and parses each one
// independently. A failed candidate is recorded and the rest continue;
// batch import tolerates partial failure by design.
func (imp *Importer) Import(text string) *Result {
	result := &Result{}
	for _, raw := range Split(text) {
		parsed, err := imp.parser.Parse(raw)
		item := Item{Raw: raw, Parsed: parsed, Err: err}
		if err != nil {
			result.Failed++
		} else {
			result.OK++
		}
		result.Items = append(result.Items, item)
	}
	return result
}
