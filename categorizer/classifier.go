// Package categorizer assigns spending categories to transactions using
// ordered keyword rules.
package categorizer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCategory is returned when assigning a category that was never
	// registered.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidCategory is returned when registering a malformed category.
	ErrInvalidCategory = errors.New("invalid category")
)

var (
	incomeThreshold = decimal.NewFromInt(1000)
	feeThreshold    = decimal.NewFromInt(5)
)

// Classifier owns a category registry and the flattened keyword table built
// from it. It is safe for concurrent use; registration blocks classification
// until the table has been rebuilt.
type Classifier struct {
	mu         sync.RWMutex
	categories []Category
	index      map[string]int
	// keywords is the flattened table in first-registration order. owner maps
	// each keyword to the category that registered it most recently.
	keywords []string
	owner    map[string]string

	// ahocorasick.Matcher keeps per-match state, so calls to Match are
	// serialized even under the read lock.
	matchMu sync.Mutex
	matcher *ahocorasick.Matcher
}

// New returns a classifier seeded with the built-in categories.
func New() *Classifier {
	c := &Classifier{
		index: make(map[string]int),
		owner: make(map[string]string),
	}
	for _, cat := range Builtin() {
		c.register(cat)
	}
	c.rebuild()
	return c
}

// Clone returns an independent copy whose registrations do not affect c.
func (c *Classifier) Clone() *Classifier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Classifier{
		categories: make([]Category, len(c.categories)),
		index:      make(map[string]int, len(c.index)),
		keywords:   slices.Clone(c.keywords),
		owner:      make(map[string]string, len(c.owner)),
	}
	for i, cat := range c.categories {
		cat.Keywords = slices.Clone(cat.Keywords)
		clone.categories[i] = cat
	}
	for k, v := range c.index {
		clone.index[k] = v
	}
	for k, v := range c.owner {
		clone.owner[k] = v
	}
	clone.rebuild()
	return clone
}

// Register adds a category, or replaces the definition of an existing one.
// Its keywords extend the keyword table; a keyword already present is
// reassigned to this category but keeps its original position.
func (c *Classifier) Register(cat Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if cat.Color == "" {
		cat.Color = DefaultColor
	}

	keywords := make([]string, 0, len(cat.Keywords))
	for _, kw := range cat.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if cat.Name == Other && len(keywords) > 0 {
		return fmt.Errorf("%w: %s is the fallback and cannot have keywords", ErrInvalidCategory, Other)
	}
	cat.Keywords = keywords

	c.mu.Lock()
	defer c.mu.Unlock()

	c.register(cat)
	c.rebuild()
	return nil
}

func (c *Classifier) register(cat Category) {
	if i, ok := c.index[cat.Name]; ok {
		c.categories[i] = cat
	} else {
		c.index[cat.Name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}

	for _, kw := range cat.Keywords {
		if _, ok := c.owner[kw]; !ok {
			c.keywords = append(c.keywords, kw)
		}
		c.owner[kw] = cat.Name
	}
}

func (c *Classifier) rebuild() {
	if len(c.keywords) == 0 {
		c.matcher = nil
		return
	}
	c.matcher = ahocorasick.NewStringMatcher(c.keywords)
}

// Classify returns the category of the first keyword in the table that
// occurs in description, then tries whole-word matches, and otherwise
// returns Other.
func (c *Classifier) Classify(description string) string {
	return c.classify(description, decimal.Zero, false)
}

// ClassifyAmount is Classify with a fallback on amount: anything over 1000
// is Income and anything under 5 either way is Other.
func (c *Classifier) ClassifyAmount(description string, amount decimal.Decimal) string {
	return c.classify(description, amount, true)
}

func (c *Classifier) classify(description string, amount decimal.Decimal, hasAmount bool) string {
	if description == "" {
		return Other
	}
	lower := strings.ToLower(description)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if kw, ok := c.firstKeyword(lower); ok {
		return c.owner[kw]
	}
	for _, word := range strings.Fields(lower) {
		if cat, ok := c.owner[word]; ok {
			return cat
		}
	}

	if hasAmount {
		if amount.GreaterThan(incomeThreshold) {
			return Income
		}
		if amount.Abs().LessThan(feeThreshold) {
			return Other
		}
	}
	return Other
}

// firstKeyword returns the earliest registered keyword contained in lower.
// The caller holds c.mu.
func (c *Classifier) firstKeyword(lower string) (string, bool) {
	if c.matcher == nil {
		return "", false
	}

	c.matchMu.Lock()
	hits := c.matcher.Match([]byte(lower))
	c.matchMu.Unlock()

	if len(hits) == 0 {
		return "", false
	}
	return c.keywords[slices.Min(hits)], true
}

// Has reports whether name is a registered category.
func (c *Classifier) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[name]
	return ok
}

// Categories returns a copy of the registry in registration order.
func (c *Classifier) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Keywords = slices.Clone(cat.Keywords)
		out[i] = cat
	}
	return out
}

// Names lists the registered categories in registration order.
func (c *Classifier) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Colors maps each category to its display color.
func (c *Classifier) Colors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	colors := make(map[string]string, len(c.categories))
	for _, cat := range c.categories {
		colors[cat.Name] = cat.Color
	}
	return colors
}
