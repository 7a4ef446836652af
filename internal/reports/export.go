// Package reports renders financial summaries into spreadsheet workbooks
// for the back office.
package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/osahene/YOS-rentals/internal/models"
)

const (
	summarySheet  = "Summary"
	vehiclesSheet = "Vehicles"
)

// Exporter writes xlsx workbooks. ExportPath, when set, also keeps a copy
// on disk next to the streamed response.
type Exporter struct {
	ExportPath string
}

func NewExporter(exportPath string) *Exporter {
	return &Exporter{ExportPath: exportPath}
}

// WriteWorkbook streams a two-sheet workbook: the period summary and the
// per-vehicle revenue breakdown.
func (e *Exporter) WriteWorkbook(w io.Writer, summary *models.FinancialSummary, vehicles []*models.VehicleRevenue) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if err := e.fillSummary(f, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(vehiclesSheet); err != nil {
		return err
	}
	if err := e.fillVehicles(f, vehicles); err != nil {
		return err
	}

	if e.ExportPath != "" {
		e.saveCopy(f, summary.Period)
	}

	return f.Write(w)
}

func (e *Exporter) fillSummary(f *excelize.File, summary *models.FinancialSummary) error {
	rows := [][]any{
		{"Period", summary.Period},
		{"Revenue", summary.Revenue.String()},
		{"Expenses", summary.Expenses.String()},
		{"Net Profit", summary.NetProfit.String()},
		{"Bookings", summary.BookingCount},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) fillVehicles(f *excelize.File, vehicles []*models.VehicleRevenue) error {
	header := []any{"Car", "License Plate", "Revenue", "Maintenance", "Bookings"}
	if err := f.SetSheetRow(vehiclesSheet, "A1", &header); err != nil {
		return err
	}
	for i, v := range vehicles {
		row := []any{v.CarName, v.LicensePlate, v.Revenue.String(), v.Maintenance.String(), v.BookingCount}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(vehiclesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// saveCopy is best effort; the streamed workbook is the deliverable.
func (e *Exporter) saveCopy(f *excelize.File, period string) {
	if err := os.MkdirAll(e.ExportPath, 0o755); err != nil {
		return
	}
	name := fmt.Sprintf("financial_%s_%s.xlsx", period, time.Now().Format("20060102_150405"))
	_ = f.SaveAs(filepath.Join(e.ExportPath, name))
}
