package ledger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func tx(date string, desc string, amount string, category string) Transaction {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Transaction{
		Date:        d,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
	}
}

func TestReadCSV(t *testing.T) {
	input := "Date,Description,Amount,Category\n" +
		"01/15/2024,Salary Deposit,3000.00,\n" +
		"01/16/2024,Coffee Shop,-4.50,Food & Dining\n"

	records, err := ReadCSV(strings.NewReader(input), "jan.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, RawRecord{Date: "01/15/2024", Description: "Salary Deposit", Amount: "3000.00", Source: "jan.csv"}, records[0])
	assert.Equal(t, "Food & Dining", records[1].Category)
}

func TestReadCSV_WithoutCategoryColumn(t *testing.T) {
	input := "Amount,Date,Description\n12.00,2024-02-01,Parking\n"

	records, err := ReadCSV(strings.NewReader(input), "feb.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Parking", records[0].Description)
	assert.Equal(t, "12.00", records[0].Amount)
	assert.Empty(t, records[0].Category)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Date,Memo\n01/01/2024,x\n"), "bad.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "Description")
	assert.Contains(t, err.Error(), "Amount")

	_, err = ReadCSV(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"03/01/2024", "Rent", "-1500.00"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"03/02/2024", "Netflix", "-15.99"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "march.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Rent", records[0].Description)
	assert.Equal(t, "-1500.00", records[0].Amount)
	assert.Equal(t, "03/02/2024", records[1].Date)
	assert.Equal(t, "march.xlsx", records[1].Source)
}

func TestReadXLSX_MissingColumns(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"When", "What"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadXLSX(bytes.NewReader(buf.Bytes()), "bad.xlsx")
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Transaction{
		tx("2024-01-15", "Coffee", "-4.50", "Food & Dining"),
		tx("2024-01-16", "Salary", "3000", ""),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Date,Description,Amount,Category\n"+
			"2024-01-15,Coffee,-4.5,Food & Dining\n"+
			"2024-01-16,Salary,3000,\n",
		buf.String())
}

func TestTransactionJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tx("2024-01-15", "Coffee", "-4.50", "Food & Dining")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-01-15", got["Date"])
	assert.Equal(t, "-4.5", got["Amount"])
	assert.Equal(t, "Coffee", got["Description"])
	assert.Equal(t, "Food & Dining", got["Category"])
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Transaction{
		tx("2024-01-20", "Salary", "3000", "Income"),
		tx("2024-01-05", "Rent", "-1500", ""),
		tx("2024-02-01", "Coffee", "-4.50", "Food & Dining"),
	})

	assert.Equal(t, 3, s.TotalTransactions)
	require.NotNil(t, s.DateRange)
	assert.Equal(t, "2024-01-05", s.DateRange.Start.String())
	assert.Equal(t, "2024-02-01", s.DateRange.End.String())
	require.NotNil(t, s.AmountRange)
	assert.True(t, s.AmountRange.Min.Equal(decimal.RequireFromString("-1500")))
	assert.True(t, s.AmountRange.Max.Equal(decimal.RequireFromString("3000")))
	assert.True(t, s.AmountRange.Mean.Equal(decimal.RequireFromString("498.5")))
	assert.True(t, s.TotalIncome.Equal(decimal.RequireFromString("3000")))
	assert.True(t, s.TotalExpenses.Equal(decimal.RequireFromString("1504.5")))
	assert.True(t, s.NetFlow.Equal(decimal.RequireFromString("1495.5")))
	assert.Equal(t, 1, s.CategoriesNeeded)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalTransactions)
	assert.Nil(t, s.DateRange)
	assert.Nil(t, s.AmountRange)
	assert.True(t, s.NetFlow.IsZero())
}
