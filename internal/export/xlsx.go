// Package export writes analysis results to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/loanlens/pkg/models"
)

// Sheet names in the workbook.
const (
	ScheduleSheet = "Schedule"
	SummarySheet  = "Summary"
)

// ScheduleColumns are the header cells of the schedule sheet.
var ScheduleColumns = []string{"Period", "Date", "Payment", "Principal", "Interest", "Balance", "Maintenance"}

const (
	moneyFormat = "#,##0.00"
	dateFormat  = "yyyy-mm-dd"
)

// Workbook builds an XLSX file holding an amortization schedule and its
// headline metrics.
type Workbook struct {
	file   *excelize.File
	styles styles
}

type styles struct {
	header int
	money  int
	date   int
}

// NewWorkbook creates an empty workbook with the schedule and summary sheets.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}

	wb := &Workbook{file: f}
	if err := wb.createStyles(); err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) createStyles() error {
	var err error
	wb.styles.header, err = wb.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	format := moneyFormat
	wb.styles.money, err = wb.file.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("export: money style: %w", err)
	}
	date := dateFormat
	wb.styles.date, err = wb.file.NewStyle(&excelize.Style{CustomNumFmt: &date})
	if err != nil {
		return fmt.Errorf("export: date style: %w", err)
	}
	return nil
}

// WriteSchedule fills the schedule sheet, one row per period below a frozen header.
func (wb *Workbook) WriteSchedule(rows []models.AmortizationRow) error {
	sheet := ScheduleSheet
	for i, col := range ScheduleColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(ScheduleColumns), 1)
	if err := wb.file.SetCellStyle(sheet, "A1", last, wb.styles.header); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for i, r := range rows {
		line := i + 2
		values := []any{r.Period, r.Date, r.Payment, r.Principal, r.Interest, r.Balance, r.Maintenance}
		start, _ := excelize.CoordinatesToCellName(1, line)
		if err := wb.file.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("export: row %d: %w", r.Period, err)
		}
	}

	if len(rows) > 0 {
		end := len(rows) + 1
		if err := wb.file.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", end), wb.styles.date); err != nil {
			return fmt.Errorf("export: date style: %w", err)
		}
		if err := wb.file.SetCellStyle(sheet, "C2", fmt.Sprintf("G%d", end), wb.styles.money); err != nil {
			return fmt.Errorf("export: money style: %w", err)
		}
	}

	if err := wb.file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export: freeze header: %w", err)
	}
	if err := wb.file.SetColWidth(sheet, "A", "A", 8); err != nil {
		return err
	}
	return wb.file.SetColWidth(sheet, "B", "G", 15)
}

// WriteSummary fills the summary sheet with the contract terms and metrics.
func (wb *Workbook) WriteSummary(ct models.Contract, r models.FinancialResult) error {
	sheet := SummarySheet
	lines := [][]any{
		{"Lender", ct.Lender},
		{"Borrower", ct.Borrower},
		{"Currency", ct.Currency},
		{"Principal", ct.Principal},
		{"Nominal rate (%)", ct.NominalRate},
		{"Rate type", string(ct.RateType)},
		{"Term (months)", ct.TermMonths},
		{"Frequency", string(ct.Frequency)},
		{"Effective annual rate (%)", r.EffectiveAnnualRate},
		{"Total annual cost (%)", r.TotalAnnualCost},
		{"First payment", r.FirstPayment},
		{"Total interest", r.TotalInterest},
		{"Total fees", r.TotalFees},
		{"Total cost", r.TotalCost},
		{"NPV", r.NPV},
		{"IRR (%)", r.IRR},
		{"Market evaluation", string(r.Market.Evaluation)},
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.file.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("export: summary row %d: %w", i+1, err)
		}
	}
	return wb.file.SetColWidth(sheet, "A", "B", 28)
}

// WriteTo writes the workbook to w.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	return wb.file.WriteTo(w)
}

// SaveAs writes the workbook to path.
func (wb *Workbook) SaveAs(path string) error {
	return wb.file.SaveAs(path)
}

// Close releases the workbook.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// Schedule writes a complete workbook for ct and r to w.
func Schedule(w io.Writer, ct models.Contract, r models.FinancialResult) error {
	wb, err := build(ct, r)
	if err != nil {
		return err
	}
	defer wb.Close()
	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// SaveSchedule writes a complete workbook for ct and r to path.
func SaveSchedule(path string, ct models.Contract, r models.FinancialResult) error {
	wb, err := build(ct, r)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func build(ct models.Contract, r models.FinancialResult) (*Workbook, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return nil, err
	}
	if err := wb.WriteSchedule(r.Schedule); err != nil {
		wb.Close()
		return nil, err
	}
	if err := wb.WriteSummary(ct, r); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}
