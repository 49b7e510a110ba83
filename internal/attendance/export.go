package attendance

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eventhub/backend/internal/models"
)

const sheetName = "Attendance"

var exportHeaders = []string{"Employee", "Check in", "Check out", "Hours"}

// Export renders an event's attendance as an xlsx workbook.
func Export(e *models.Event, list []models.AttendanceView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s)", e.Title, e.EventDate)); err != nil {
		return nil, err
	}
	row, err := writeHeader(f, sheet, 2, exportHeaders)
	if err != nil {
		return nil, err
	}
	first := row + 1
	for _, a := range list {
		row++
		checkOut := ""
		if a.CheckOutAt != nil {
			checkOut = a.CheckOutAt.UTC().Format(time.RFC3339)
		}
		values := []interface{}{
			a.EmployeeName,
			a.CheckInAt.UTC().Format(time.RFC3339),
			checkOut,
			float64(a.WorkedSeconds) / 3600,
		}
		for col, v := range values {
			if err := writeCell(f, sheet, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}
	if row >= first {
		if err := applyDataStyle(f, sheet, first, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func writeCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return row, err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return row, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return row, err
	}
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return row, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return row, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return row, err
	}
	for i, h := range headers {
		if err := writeCell(f, sheet, i+1, row, h); err != nil {
			return row, err
		}
	}
	return row, nil
}

func applyDataStyle(f *excelize.File, sheet string, fromRow, toRow int) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		NumFmt:    2,
	})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, fromRow)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeaders), toRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
