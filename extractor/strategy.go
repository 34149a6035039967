package extractor

import (
	"context"
	"strings"

	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/extractor/profile"
	"github.com/aqlanhadi/ledgr/ledger"
)

// MinTableCells is the fewest non-empty cells a table row needs before it is
// parsed.
const MinTableCells = 3

// Input is everything a strategy may look at for one document.
type Input struct {
	Document common.Document
	Source   common.Source
	Lines    []common.Line
	Profile  profile.Profile
}

// Strategy is one way of finding transactions in a document. The pipeline
// tries its strategies in order and keeps the first non-empty result.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input) ([]ledger.RawRecord, error)
}

// DefaultStrategies scans lines first and falls back to table grids.
func DefaultStrategies() []Strategy {
	return []Strategy{LineStrategy{}, TableStrategy{}}
}

// LineStrategy parses each filtered text line with the detected profile.
type LineStrategy struct{}

func (LineStrategy) Name() string { return "line" }

func (LineStrategy) Extract(ctx context.Context, in Input) ([]ledger.RawRecord, error) {
	var records []ledger.RawRecord
	for _, line := range in.Lines {
		if rec, ok := ParseLine(line.Text, in.Profile); ok {
			rec.Source = in.Document.Name
			records = append(records, rec)
		}
	}
	return records, nil
}

// TableStrategy parses reconstructed table rows with the generic profile.
type TableStrategy struct{}

func (TableStrategy) Name() string { return "table" }

func (TableStrategy) Extract(ctx context.Context, in Input) ([]ledger.RawRecord, error) {
	records, err := ExtractFromTables(ctx, in.Source)
	for i := range records {
		records[i].Source = in.Document.Name
	}
	return records, err
}

// ExtractFromTables joins the non-empty cells of every table row holding at
// least MinTableCells of them and parses the result as a statement line.
func ExtractFromTables(ctx context.Context, src common.Source) ([]ledger.RawRecord, error) {
	tables, err := src.Tables(ctx)
	if err != nil {
		return nil, err
	}

	generic := profile.GenericProfile()
	var records []ledger.RawRecord
	for _, table := range tables {
		for _, row := range table.Rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				if c = strings.TrimSpace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) < MinTableCells {
				continue
			}
			if rec, ok := ParseLine(strings.Join(cells, " "), generic); ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}
