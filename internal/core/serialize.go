package core

import "github.com/JonMunkholm/colarrange/internal/csv"

// DefaultExportName is used when the model has no file name.
const DefaultExportName = "export.csv"

// Records returns the export grid: a header of the visible column names
// followed by one record per data row. Custom columns yield empty cells.
func Records(m Model) [][]string {
	visible := make([]Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		if !c.Excluded {
			visible = append(visible, c)
		}
	}

	records := make([][]string, 0, len(m.Rows)+1)
	header := make([]string, len(visible))
	for i, c := range visible {
		header[i] = c.Name
	}
	records = append(records, header)

	for _, row := range m.Rows {
		rec := make([]string, len(visible))
		for i, c := range visible {
			rec[i] = Cell(row, c)
		}
		records = append(records, rec)
	}
	return records
}

// Serialize renders the model as CSV text: visible columns only, fields
// quoted when needed, lines joined with \n.
func Serialize(m Model) string {
	if m.Empty() {
		return ""
	}
	return csv.Format(Records(m))
}

// ExportName is the download name for the model's CSV export.
func ExportName(fileName string) string {
	if fileName == "" {
		fileName = DefaultExportName
	}
	return "reordered_" + fileName
}
