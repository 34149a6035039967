package categorizer

import (
	"sort"
	"strings"
)

const (
	exactHit      = 1.0
	substringHit  = 0.8
	partialWeight = 0.3
	minConfidence = 0.2
	maxSuggested  = 3
)

// Suggestion is a candidate category with a confidence between 0 and 1.
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Suggest scores every category except Other against description and
// returns at most three with confidence above 0.2, best first.
//
// A keyword contained in the description scores 0.8, or 1.0 when it is the
// whole description. Every pair of description word and keyword where one
// contains the other adds 0.3. The total is divided by the number of
// contained keywords and capped at 1; categories with no contained keyword
// are not suggested.
func (c *Classifier) Suggest(description string) []Suggestion {
	if description == "" {
		return nil
	}
	lower := strings.ToLower(description)
	words := strings.Fields(lower)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Suggestion
	for _, cat := range c.categories {
		if cat.Name == Other {
			continue
		}

		confidence := 0.0
		matches := 0
		for _, kw := range cat.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if kw == lower {
				confidence += exactHit
			} else {
				confidence += substringHit
			}
			matches++
		}
		if matches == 0 {
			continue
		}

		for _, word := range words {
			for _, kw := range cat.Keywords {
				if strings.Contains(kw, word) || strings.Contains(word, kw) {
					confidence += partialWeight
				}
			}
		}

		confidence = min(confidence/float64(matches), 1.0)
		if confidence > minConfidence {
			out = append(out, Suggestion{Category: cat.Name, Confidence: confidence})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > maxSuggested {
		out = out[:maxSuggested]
	}
	return out
}
