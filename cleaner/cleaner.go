// Package cleaner normalizes raw records into ledger transactions and
// reports the data quality problems it finds along the way.
package cleaner

import (
	"strings"

	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/aqlanhadi/ledgr/normalize"
)

// Report lists problems by the input position of the affected records.
type Report struct {
	InvalidDates      []int   `json:"invalid_dates"`
	InvalidAmounts    []int   `json:"invalid_amounts"`
	EmptyDescriptions []int   `json:"empty_descriptions"`
	Duplicates        []int   `json:"duplicates"`
	DuplicateGroups   [][]int `json:"duplicate_groups"`
	RemovedRows       int     `json:"removed_rows"`
}

// Clean normalizes every record. Records whose date or amount cannot be
// normalized are dropped and counted in RemovedRows; every other problem is
// only reported. Duplicates share the same date, amount and case-folded
// description and are kept.
func Clean(records []ledger.RawRecord) ([]ledger.Transaction, Report) {
	report := Report{
		InvalidDates:      []int{},
		InvalidAmounts:    []int{},
		EmptyDescriptions: []int{},
		Duplicates:        []int{},
		DuplicateGroups:   [][]int{},
	}

	cleaned := make([]ledger.Transaction, 0, len(records))
	groups := make(map[string][]int)
	var keys []string

	for i, rec := range records {
		date, dateOK := normalize.Date(rec.Date)
		amount, amountOK := normalize.Amount(rec.Amount)
		desc := normalize.Description(rec.Description)

		var dateText, amountText string
		if dateOK {
			dateText = date.String()
		} else {
			report.InvalidDates = append(report.InvalidDates, i)
		}
		if amountOK {
			amountText = amount.String()
		} else {
			report.InvalidAmounts = append(report.InvalidAmounts, i)
		}
		if desc == "" {
			report.EmptyDescriptions = append(report.EmptyDescriptions, i)
		}

		key := strings.ToLower(dateText + amountText + desc)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)

		if !dateOK || !amountOK {
			report.RemovedRows++
			continue
		}
		cleaned = append(cleaned, ledger.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    strings.TrimSpace(rec.Category),
		})
	}

	duplicate := make([]bool, len(records))
	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		report.DuplicateGroups = append(report.DuplicateGroups, members)
		for _, i := range members {
			duplicate[i] = true
		}
	}
	for i, dup := range duplicate {
		if dup {
			report.Duplicates = append(report.Duplicates, i)
		}
	}

	return cleaned, report
}
