// Package normalize turns raw date, amount and description tokens into their
// canonical ledger forms. Every function is total: a value that cannot be
// normalized is reported through the boolean result, never as an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// datePatterns are tried in order. A pattern that matches but yields an
// impossible calendar date falls through to the next one.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),   // MM/DD/YYYY, M/D/YYYY
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),   // MM-DD-YYYY
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),   // YYYY-MM-DD
	regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`), // MM.DD.YYYY
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}\b`), // MM/DD/YY
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\d,]+\.\d{2}`),
	regexp.MustCompile(`[\d,]+\.\d{1}`),
	regexp.MustCompile(`[\d,]+`),
}

var (
	currencyRegex   = regexp.MustCompile(`[$£€¥]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	markerPrefix    = regexp.MustCompile(`(?i)^(?:DEBIT|CREDIT|DR|CR)\b\s*`)
	markerSuffix    = regexp.MustCompile(`(?i)\s*\b(?:DEBIT|CREDIT|DR|CR)$`)
)

// Date finds the first recognised date in text and returns it as a calendar
// date. Slash and dot forms are month/day/year, dash forms are month/day/year
// unless the first part has four digits. Two digit years below 50 land in the
// 2000s, the rest in the 1900s.
func Date(text string) (civil.Date, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return civil.Date{}, false
	}

	for _, re := range datePatterns {
		part := re.FindString(text)
		if part == "" {
			continue
		}
		if d, ok := dateFromParts(part); ok {
			return d, true
		}
	}
	return civil.Date{}, false
}

func dateFromParts(part string) (civil.Date, bool) {
	var sep string
	switch {
	case strings.Contains(part, "/"):
		sep = "/"
	case strings.Contains(part, "-"):
		sep = "-"
	case strings.Contains(part, "."):
		sep = "."
	default:
		return civil.Date{}, false
	}

	parts := strings.Split(part, sep)
	if len(parts) != 3 {
		return civil.Date{}, false
	}

	month, day, year := parts[0], parts[1], parts[2]
	if sep == "-" && len(parts[0]) == 4 {
		year, month, day = parts[0], parts[1], parts[2]
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return civil.Date{}, false
	}
	if len(year) == 2 {
		if y < 50 {
			y += 2000
		} else {
			y += 1900
		}
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return civil.Date{}, false
	}
	dd, err := strconv.Atoi(day)
	if err != nil {
		return civil.Date{}, false
	}

	return calendarDate(y, m, dd)
}

// calendarDate rejects combinations that time.Date would silently roll over,
// such as 31 April.
func calendarDate(y, m, d int) (civil.Date, bool) {
	if y < 1 || m < 1 || m > 12 || d < 1 {
		return civil.Date{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}

// Amount parses a monetary amount. Currency symbols and whitespace are
// ignored, a leading minus sign or surrounding parentheses make the result
// negative, and thousands separators are dropped.
func Amount(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, false
	}

	text = currencyRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, "")

	negative := false
	if strings.HasPrefix(text, "-") || (strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")) {
		negative = true
		text = strings.NewReplacer("-", "", "(", "", ")", "").Replace(text)
	}

	for _, re := range amountPatterns {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
		if err != nil {
			continue
		}
		if negative {
			amount = amount.Neg()
		}
		return amount, true
	}
	return decimal.Zero, false
}

// Description trims and collapses whitespace, then drops a standalone
// DEBIT, CREDIT, DR or CR marker from either end.
func Description(text string) string {
	text = strings.TrimSpace(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = markerPrefix.ReplaceAllString(text, "")
	text = markerSuffix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
