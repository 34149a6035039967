// Package profile describes the statement layouts of known banks and
// detects which one a statement uses.
package profile

import (
	"regexp"
	"strings"
)

// Generic is the fallback profile name.
const Generic = "generic"

// Profile is the text shape of one bank's statements. Profiles are never
// modified after construction.
type Profile struct {
	Name           string
	DatePatterns   []*regexp.Regexp
	AmountPatterns []*regexp.Regexp
	// Suppress lists header and footer tokens. A line containing any of them,
	// case-insensitively, is never a transaction.
	Suppress []string
}

// Suppressed reports whether line contains one of the profile's header or
// footer tokens.
func (p Profile) Suppressed(line string) bool {
	lower := strings.ToLower(line)
	for _, token := range p.Suppress {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// DefaultDatePatterns are ordered from most to least specific.
var DefaultDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`),
}

// DefaultAmountPatterns are tried broadest first.
var DefaultAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-?\$?\s?[\d,]+\.\d{2}`),
	regexp.MustCompile(`-?\$?\s?[\d,]+\d{2}`),
	regexp.MustCompile(`-?\$?\s?[\d,]+`),
	regexp.MustCompile(`-?[\d,]+\.\d{2}`),
	regexp.MustCompile(`-?[\d,]+\.\d{1}`),
}

var headerTokens = []string{"DATE", "DESCRIPTION", "AMOUNT", "BALANCE"}

// NewBank returns a bank profile with the default patterns. Without
// suppress tokens the standard column headers are suppressed.
func NewBank(name string, suppress ...string) Profile {
	if len(suppress) == 0 {
		suppress = headerTokens
	}
	return Profile{
		Name:           name,
		DatePatterns:   DefaultDatePatterns,
		AmountPatterns: DefaultAmountPatterns,
		Suppress:       suppress,
	}
}

// GenericProfile has the permissive patterns and suppresses nothing.
func GenericProfile() Profile {
	return Profile{
		Name:           Generic,
		DatePatterns:   DefaultDatePatterns,
		AmountPatterns: DefaultAmountPatterns,
	}
}
