// Package ledger holds the canonical transaction record and the boundary
// readers and writers that move records in and out of tabular files.
package ledger

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrMissingColumns is returned when tabular input lacks one of the Date,
// Description or Amount columns.
var ErrMissingColumns = errors.New("missing required columns")

// RawRecord is a transaction as it was found in a source, before any
// normalization. Amount keeps its original text so the cleaner can judge it.
type RawRecord struct {
	Date        string `csv:"Date" json:"Date"`
	Description string `csv:"Description" json:"Description"`
	Amount      string `csv:"Amount" json:"Amount"`
	Category    string `csv:"Category,omitempty" json:"Category,omitempty"`
	Source      string `csv:"-" json:"-"`
}

// Transaction is a cleaned ledger entry.
type Transaction struct {
	Date        civil.Date      `json:"Date"`
	Description string          `json:"Description"`
	Amount      decimal.Decimal `json:"Amount"`
	Category    string          `json:"Category"`
}

// Raw converts a cleaned transaction back into its textual form.
func (t Transaction) Raw() RawRecord {
	return RawRecord{
		Date:        t.Date.String(),
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
	}
}
