package ledger

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"Date", "Description", "Amount"}

// checkColumns reports which required columns are absent from header.
func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// ReadCSV loads records from a CSV file with a Date, Description and Amount
// header. A Category column is optional.
func ReadCSV(r io.Reader, source string) ([]RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	header, err := gocsv.DefaultCSVReader(bytes.NewReader(data)).Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}

	var records []RawRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	for i := range records {
		records[i].Source = source
	}
	return records, nil
}

// ReadXLSX loads records from the "Transactions" sheet of a workbook, or from
// the first sheet when there is none by that name.
func ReadXLSX(r io.Reader, source string) ([]RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumns)
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Transactions") {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrMissingColumns, sheet)
	}
	if err := checkColumns(rows[0]); err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, RawRecord{
			Date:        cell(row, "Date"),
			Description: cell(row, "Description"),
			Amount:      cell(row, "Amount"),
			Category:    cell(row, "Category"),
			Source:      source,
		})
	}
	return records, nil
}
