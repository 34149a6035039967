package extractor

import (
	"regexp"
	"strings"

	"github.com/aqlanhadi/ledgr/extractor/profile"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/shopspring/decimal"
)

// MinDescriptionLength is the shortest description a parsed line may carry.
const MinDescriptionLength = 3

var (
	spaceRegex     = regexp.MustCompile(`\s+`)
	referenceRegex = regexp.MustCompile(`^\d+\s*`)
	amountStrip    = strings.NewReplacer("$", "", ",", "")
)

// ParseLine looks for a date, a description and an amount on one line of
// statement text. The date is the first match of the profile's date patterns
// and the amount the first match of its amount patterns that parses as a
// number; the description is whatever lies between them. The date is
// returned as found and the amount in plain decimal form.
func ParseLine(line string, p profile.Profile) (ledger.RawRecord, bool) {
	if strings.TrimSpace(line) == "" {
		return ledger.RawRecord{}, false
	}
	if p.Suppressed(line) {
		return ledger.RawRecord{}, false
	}

	var dateLoc []int
	for _, re := range p.DatePatterns {
		if dateLoc = re.FindStringIndex(line); dateLoc != nil {
			break
		}
	}
	if dateLoc == nil {
		return ledger.RawRecord{}, false
	}

	var amountLoc []int
	var amount decimal.Decimal
	for _, re := range p.AmountPatterns {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		v, err := decimal.NewFromString(strings.Join(strings.Fields(amountStrip.Replace(line[loc[0]:loc[1]])), ""))
		if err != nil {
			continue
		}
		amountLoc, amount = loc, v
		break
	}
	if amountLoc == nil {
		return ledger.RawRecord{}, false
	}

	var description string
	if amountLoc[0] > dateLoc[1] {
		description = line[dateLoc[1]:amountLoc[0]]
	}
	description = strings.TrimSpace(spaceRegex.ReplaceAllString(description, " "))
	description = strings.TrimSpace(referenceRegex.ReplaceAllString(description, ""))
	if len([]rune(description)) < MinDescriptionLength {
		return ledger.RawRecord{}, false
	}

	return ledger.RawRecord{
		Date:        line[dateLoc[0]:dateLoc[1]],
		Description: description,
		Amount:      amount.String(),
	}, true
}
