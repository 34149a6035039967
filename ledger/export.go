package ledger

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the ledger with a Date,Description,Amount,Category header.
func WriteCSV(w io.Writer, txs []Transaction) error {
	rows := make([]RawRecord, len(txs))
	for i, tx := range txs {
		rows[i] = tx.Raw()
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
