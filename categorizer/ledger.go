package categorizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

// ErrIndexOutOfRange is returned by BulkAssign for an index outside the
// ledger.
var ErrIndexOutOfRange = errors.New("index out of range")

// ClassifyAll assigns a category to every transaction that has none or is
// Other, leaving categories chosen elsewhere alone. It returns how many
// transactions it looked at.
func (c *Classifier) ClassifyAll(txs []ledger.Transaction) int {
	n := 0
	for i := range txs {
		if cat := strings.TrimSpace(txs[i].Category); cat != "" && cat != Other {
			continue
		}
		txs[i].Category = c.ClassifyAmount(txs[i].Description, txs[i].Amount)
		n++
	}
	return n
}

// BulkAssign sets category on the transactions at indices. Nothing is
// changed unless the category is registered and every index is valid.
func (c *Classifier) BulkAssign(txs []ledger.Transaction, indices []int, category string) error {
	if !c.Has(category) {
		return c.unknown(category)
	}
	for _, i := range indices {
		if i < 0 || i >= len(txs) {
			return fmt.Errorf("%w: %d (ledger has %d transactions)", ErrIndexOutOfRange, i, len(txs))
		}
	}
	for _, i := range indices {
		txs[i].Category = category
	}
	return nil
}

func (c *Classifier) unknown(category string) error {
	ranks := fuzzy.RankFindNormalizedFold(category, c.Names())
	if len(ranks) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	sort.Sort(ranks)
	return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownCategory, category, ranks[0].Target)
}

// CategoryStats aggregates the transactions of one category. Expense is a
// positive figure.
type CategoryStats struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total_amount"`
	Income  decimal.Decimal `json:"income_amount"`
	Expense decimal.Decimal `json:"expense_amount"`
	Color   string          `json:"color"`
}

// Stats summarizes txs per registered category, in registration order.
// Categories without transactions are left out. Everything in Income counts
// as income regardless of sign.
func (c *Classifier) Stats(txs []ledger.Transaction) []CategoryStats {
	cats := c.Categories()
	byName := make(map[string]*CategoryStats, len(cats))
	all := make([]*CategoryStats, len(cats))
	for i, cat := range cats {
		all[i] = &CategoryStats{
			Name:    cat.Name,
			Total:   decimal.Zero,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Color:   cat.Color,
		}
		byName[cat.Name] = all[i]
	}

	for _, tx := range txs {
		s, ok := byName[tx.Category]
		if !ok {
			continue
		}
		s.Count++
		s.Total = s.Total.Add(tx.Amount)
		switch {
		case s.Name == Income:
			s.Income = s.Income.Add(tx.Amount)
		case tx.Amount.IsPositive():
			s.Income = s.Income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			s.Expense = s.Expense.Add(tx.Amount.Abs())
		}
	}

	var out []CategoryStats
	for _, s := range all {
		if s.Count > 0 {
			out = append(out, *s)
		}
	}
	return out
}

// ProgressStats tracks how much of a ledger has been categorized.
type ProgressStats struct {
	Total         int     `json:"total_transactions"`
	Categorized   int     `json:"categorized"`
	Uncategorized int     `json:"uncategorized"`
	Percentage    float64 `json:"progress_percentage"`
}

// Progress counts categorized transactions. A blank category is
// uncategorized; Other counts as categorized.
func Progress(txs []ledger.Transaction) ProgressStats {
	p := ProgressStats{Total: len(txs)}
	for _, tx := range txs {
		if strings.TrimSpace(tx.Category) == "" {
			p.Uncategorized++
		}
	}
	p.Categorized = p.Total - p.Uncategorized
	if p.Total > 0 {
		p.Percentage = float64(p.Categorized) / float64(p.Total) * 100
	}
	return p
}
