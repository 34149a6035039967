package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/extractor"
	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/rs/zerolog"
)

// Store is what the importer needs from the database.
type Store interface {
	ImportExists(ctx context.Context, checksum string) (bool, string, error)
	DeleteImport(ctx context.Context, importID string) error
	SaveLedger(ctx context.Context, src Source, txs []ledger.Transaction) (string, error)
}

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Entries   int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force bool // replace files imported before
}

// Importer runs files through the ledger pipeline and stores the result.
type Importer struct {
	store      Store
	pipeline   *extractor.Pipeline
	classifier *categorizer.Classifier
	log        zerolog.Logger
}

func NewImporter(store Store, p *extractor.Pipeline, c *categorizer.Classifier, log zerolog.Logger) *Importer {
	return &Importer{store: store, pipeline: p, classifier: c, log: log}
}

// Checksum fingerprints document content for deduplication.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ImportDocument processes and stores a single document.
// Returns: processed count, skipped count, failed count, entries, error message
func (im *Importer) ImportDocument(ctx context.Context, doc common.Document, opts ImportOptions) (processed, skipped, failed, entries int, errMsg string) {
	checksum := Checksum(doc.Data)

	exists, existingID, err := im.store.ImportExists(ctx, checksum)
	if err != nil {
		return 0, 0, 1, 0, fmt.Sprintf("%s: check error: %v", doc.Name, err)
	}
	if exists && !opts.Force {
		im.log.Info().Str("document", doc.Name).Msg("already imported, skipping")
		return 0, 1, 0, 0, ""
	}

	res, err := extractor.Process(ctx, im.pipeline, im.classifier, []common.Document{doc})
	if err != nil {
		return 0, 0, 1, 0, fmt.Sprintf("%s: %v", doc.Name, err)
	}
	if len(res.Failures) > 0 {
		return 0, 0, 1, 0, fmt.Sprintf("%s: %v", doc.Name, res.Failures[0].Err)
	}
	if len(res.Transactions) == 0 {
		return 0, 0, 1, 0, fmt.Sprintf("%s: no transactions extracted", doc.Name)
	}

	if exists {
		if err := im.store.DeleteImport(ctx, existingID); err != nil {
			return 0, 0, 1, 0, fmt.Sprintf("%s: delete error: %v", doc.Name, err)
		}
	}

	src := Source{
		Name:          doc.Name,
		Checksum:      checksum,
		RemovedRows:   res.Issues.RemovedRows,
		DuplicateRows: len(res.Issues.Duplicates),
	}
	id, err := im.store.SaveLedger(ctx, src, res.Transactions)
	if err != nil {
		return 0, 0, 1, 0, fmt.Sprintf("%s: save error: %v", doc.Name, err)
	}

	im.log.Info().Str("document", doc.Name).Str("import", id).Int("entries", len(res.Transactions)).Msg("imported")
	return 1, 0, 0, len(res.Transactions), ""
}

// Import handles both file and directory imports
func (im *Importer) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	docs, err := extractor.CollectDocuments(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	im.log.Info().Str("path", path).Int("files", len(docs)).Msg("scanning")

	result := &ImportResult{}
	for _, doc := range docs {
		processed, skipped, failed, entries, errMsg := im.ImportDocument(ctx, doc, opts)

		result.Processed += processed
		result.Skipped += skipped
		result.Failed += failed
		result.Entries += entries
		if errMsg != "" {
			im.log.Warn().Str("document", doc.Name).Msg(errMsg)
			result.Errors = append(result.Errors, errMsg)
		}
	}
	return result, nil
}
