// Package export renders an arranged column model to spreadsheet formats
// other than CSV.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/colarrange/internal/core"
)

// XLSXContentType is the MIME type of a workbook written by WriteXLSX.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the single sheet WriteXLSX produces.
const SheetName = "Sheet1"

// WriteXLSX writes the model's visible columns as a one-sheet workbook with
// a bold header row. Every cell is written as text so values such as
// leading-zero codes keep their exact form.
func WriteXLSX(w io.Writer, m core.Model) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	if !m.Empty() {
		for i, rec := range core.Records(m) {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}

			values := make([]interface{}, len(rec))
			for j, v := range rec {
				if i == 0 {
					values[j] = excelize.Cell{StyleID: bold, Value: v}
				} else {
					values[j] = v
				}
			}

			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// XLSXName is the download name for the model's workbook export: the CSV
// export name with its extension replaced by .xlsx.
func XLSXName(fileName string) string {
	name := core.ExportName(fileName)
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".csv") || strings.EqualFold(ext, ".txt") {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ".xlsx"
}
