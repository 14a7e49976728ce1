package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

const sheetName = "Operations"

var xlsxHeaders = []string{"ID", "Platform", "Kind", "Endpoint", "Status", "Reason", "Parameters", "Created", "Updated"}

// XLSXExporter writes operation records as a spreadsheet.
type XLSXExporter struct {
	w io.Writer
}

// NewXLSXExporter creates an exporter writing the workbook to w.
func NewXLSXExporter(w io.Writer) ports.Exporter {
	return &XLSXExporter{w: w}
}

// Export builds a single-sheet workbook and writes it.
func (e *XLSXExporter) Export(records []domain.OperationRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", h, err)
		}
	}

	for i, rec := range records {
		row := []any{
			rec.ID,
			string(rec.Platform),
			string(rec.Kind),
			string(rec.Endpoint),
			string(rec.Status),
			rec.Reason,
			formatParameters(rec.Parameters),
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("set row %d: %w", i+2, err)
		}
	}

	if err := f.Write(e.w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// formatParameters lists parameter names only; values may be credentials.
func formatParameters(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
