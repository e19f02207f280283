package export

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/colarrange/internal/core"
)

func TestWriteXLSX(t *testing.T) {
	m := core.ParseModel("people.csv", "Name,Zip,City\nAnn,00123,\"Oslo, NO\"\nBob,4\n")
	m, _ = m.ToggleExcluded(2)
	m = m.AddCustomColumn(func() string { return "c1" })

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, m); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != SheetName {
		t.Errorf("sheet = %q, want %q", got, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Name", "Zip", "New Column 1"},
		{"Ann", "00123"},
		{"Bob", "4"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}

	styleID, err := f.GetCellStyle(SheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header row should be bold")
	}
}

func TestWriteXLSX_EmptyModel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, core.Model{}); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a valid, empty workbook")
	}
}

func TestXLSXName(t *testing.T) {
	tests := map[string]string{
		"people.csv": "reordered_people.xlsx",
		"DATA.CSV":   "reordered_DATA.xlsx",
		"notes":      "reordered_notes.xlsx",
		"":           "reordered_export.xlsx",
	}
	for in, want := range tests {
		if got := XLSXName(in); got != want {
			t.Errorf("XLSXName(%q) = %q, want %q", in, got, want)
		}
	}
}
