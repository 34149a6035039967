package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrExtractionFailed marks a document whose text could not be read.
var ErrExtractionFailed = errors.New("extraction failed")

// DocumentError is the failure of one document in a batch. Index is the
// document's position in the batch input.
type DocumentError struct {
	Index    int
	Document string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d (%s): %v", e.Index, e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"index":    e.Index,
		"document": e.Document,
		"error":    e.Err.Error(),
	})
}
