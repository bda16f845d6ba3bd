package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medscan/internal/domain"
)

const sheetName = "Reports"

// WriteXLSX renders reports as a single-sheet workbook on w.
func WriteXLSX(w io.Writer, reports []domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: renaming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: creating stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: creating header style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("export.WriteXLSX: writing header: %w", err)
	}

	for i := range reports {
		row := reportToRow(&reports[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("export.WriteXLSX: writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export.WriteXLSX: flushing: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: writing workbook: %w", err)
	}
	return nil
}
