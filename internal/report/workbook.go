// Package report renders a month of expenses as an XLSX workbook.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/familyspend/internal/calculator"
	"github.com/mmynk/familyspend/internal/ledger"
)

// Sheet names.
const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name for a month's workbook.
func Filename(data *ledger.MonthData) string {
	return fmt.Sprintf("expenses_%s.xlsx", data.Window)
}

// Write renders data and writes the workbook to w.
func Write(w io.Writer, data *ledger.MonthData) error {
	f, err := Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build renders data into a new workbook with an Expenses and a Summary sheet.
func Build(data *ledger.MonthData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeExpenses(f, data, money); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, data, money); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeExpenses(f *excelize.File, data *ledger.MonthData, money int) error {
	sheet := ExpensesSheet

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "Category", "Member", "Amount", "Note"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range data.Expenses {
		row := i + 2
		values := []any{e.Date, e.Category, e.MemberName, e.Amount.InexactFloat64(), e.Note}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write expense %d: %w", e.ID, err)
		}
	}

	if n := len(data.Expenses); n > 0 {
		if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("D%d", n+1), money); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 15, "C": 15, "D": 12, "E": 30}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, data *ledger.MonthData, money int) error {
	sheet := SummarySheet
	total := data.Summary.Total

	rows := [][]any{
		{"Month", data.Window.Label()},
		{"Total", total.InexactFloat64()},
		{},
		{"Category", "Amount", "Share %"},
	}
	rows = appendShares(rows, data.Summary.ByCategory, total)
	rows = append(rows, []any{}, []any{"Member", "Amount", "Share %"})
	rows = appendShares(rows, data.Summary.ByMember, total)

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := f.SetCellStyle(sheet, "B2", "B2", money); err != nil {
		return fmt.Errorf("failed to style total: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func appendShares(rows [][]any, buckets []calculator.Bucket, total decimal.Decimal) [][]any {
	for _, s := range calculator.Shares(buckets, total) {
		percent := decimal.NewFromFloat(s.Percent).Round(1).InexactFloat64()
		rows = append(rows, []any{s.Key, s.Amount.InexactFloat64(), percent})
	}
	return rows
}
