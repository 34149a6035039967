package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DateRange is the span of dates covered by a ledger.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// AmountRange describes the spread of amounts in a ledger.
type AmountRange struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Mean decimal.Decimal `json:"mean"`
}

// Summary is an overview of a cleaned ledger.
type Summary struct {
	TotalTransactions int             `json:"total_transactions"`
	DateRange         *DateRange      `json:"date_range"`
	AmountRange       *AmountRange    `json:"amount_range"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetFlow           decimal.Decimal `json:"net_flow"`
	CategoriesNeeded  int             `json:"categories_needed"`
}

// Summarize computes totals and ranges over txs. Expenses are reported as a
// positive figure.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		TotalTransactions: len(txs),
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
		NetFlow:           decimal.Zero,
	}
	if len(txs) == 0 {
		return s
	}

	dates := DateRange{Start: txs[0].Date, End: txs[0].Date}
	amounts := AmountRange{Min: txs[0].Amount, Max: txs[0].Amount}
	sum := decimal.Zero
	spent := decimal.Zero

	for _, tx := range txs {
		if tx.Category == "" {
			s.CategoriesNeeded++
		}
		if tx.Date.Before(dates.Start) {
			dates.Start = tx.Date
		}
		if tx.Date.After(dates.End) {
			dates.End = tx.Date
		}
		if tx.Amount.LessThan(amounts.Min) {
			amounts.Min = tx.Amount
		}
		if tx.Amount.GreaterThan(amounts.Max) {
			amounts.Max = tx.Amount
		}
		sum = sum.Add(tx.Amount)

		switch tx.Amount.Sign() {
		case 1:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case -1:
			spent = spent.Add(tx.Amount)
		}
	}

	amounts.Mean = sum.Div(decimal.NewFromInt(int64(len(txs))))
	s.DateRange = &dates
	s.AmountRange = &amounts
	s.TotalExpenses = spent.Abs()
	s.NetFlow = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
