package extractor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/cleaner"
	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/ledger"
)

// Result is a cleaned and categorized ledger built from a batch of
// documents.
type Result struct {
	Transactions []ledger.Transaction      `json:"transactions"`
	Issues       cleaner.Report            `json:"issues"`
	Failures     []*DocumentError          `json:"failures"`
	Summary      ledger.Summary            `json:"summary"`
	Progress     categorizer.ProgressStats `json:"progress"`
}

// LoadTabular reads a CSV or XLSX document into raw records.
func LoadTabular(doc common.Document) ([]ledger.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".xlsx":
		return ledger.ReadXLSX(bytes.NewReader(doc.Data), doc.Name)
	default:
		return ledger.ReadCSV(bytes.NewReader(doc.Data), doc.Name)
	}
}

// Process runs statement documents through the pipeline and tabular
// documents through the file readers, then cleans and categorizes the
// combined records in input order. Unreadable statements are reported in
// Failures; a tabular file without the required columns aborts the call.
func Process(ctx context.Context, p *Pipeline, c *categorizer.Classifier, docs []common.Document) (Result, error) {
	perDoc := make([][]ledger.RawRecord, len(docs))

	var statements []common.Document
	var positions []int
	for i, doc := range docs {
		if doc.Kind != common.KindTabular {
			statements = append(statements, doc)
			positions = append(positions, i)
			continue
		}
		records, err := LoadTabular(doc)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", doc.Name, err)
		}
		perDoc[i] = records
	}

	batch := p.ExtractMany(ctx, statements)
	for j, records := range batch.PerDocument {
		perDoc[positions[j]] = records
	}
	failures := make([]*DocumentError, 0, len(batch.Failures))
	for _, f := range batch.Failures {
		f.Index = positions[f.Index]
		failures = append(failures, f)
	}

	var raw []ledger.RawRecord
	for _, records := range perDoc {
		raw = append(raw, records...)
	}

	txs, issues := cleaner.Clean(raw)
	c.ClassifyAll(txs)

	return Result{
		Transactions: txs,
		Issues:       issues,
		Failures:     failures,
		Summary:      ledger.Summarize(txs),
		Progress:     categorizer.Progress(txs),
	}, nil
}
