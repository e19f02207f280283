package core

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func columnNames(m Model) []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

func sampleModel() Model {
	return ParseModel("people.csv", "Name,Age,City\nAnn,34,Oslo\nBob,41,Rome\n")
}

func TestBuildModel(t *testing.T) {
	m := sampleModel()

	want := []Column{
		{ID: "0", Name: "Name", OriginalIndex: 0},
		{ID: "1", Name: "Age", OriginalIndex: 1},
		{ID: "2", Name: "City", OriginalIndex: 2},
	}
	if !reflect.DeepEqual(m.Columns, want) {
		t.Errorf("Columns = %+v, want %+v", m.Columns, want)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(m.Rows))
	}
	if m.FileName != "people.csv" {
		t.Errorf("FileName = %q", m.FileName)
	}
}

func TestBuildModel_Empty(t *testing.T) {
	m := ParseModel("blank.csv", "\n\n")
	if !m.Empty() {
		t.Errorf("model from blank text should be empty, got %+v", m.Columns)
	}
	if len(m.Rows) != 0 {
		t.Errorf("Rows = %v, want none", m.Rows)
	}
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	tests := []struct {
		name string
		col  Column
		want string
	}{
		{"in range", Column{OriginalIndex: 1}, "b"},
		{"short row", Column{OriginalIndex: 5}, ""},
		{"custom", Column{OriginalIndex: CustomColumnIndex, IsCustom: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(row, tt.col); got != tt.want {
				t.Errorf("Cell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_Reorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"Age", "City", "Name"}},
		{"last to first", 2, 0, []string{"City", "Name", "Age"}},
		{"same position", 1, 1, []string{"Name", "Age", "City"}},
		{"to clamped", 0, 99, []string{"Age", "City", "Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModel()
			got, err := m.Reorder(tt.from, tt.to)
			if err != nil {
				t.Fatalf("Reorder: %v", err)
			}
			if names := columnNames(got); !reflect.DeepEqual(names, tt.want) {
				t.Errorf("order = %v, want %v", names, tt.want)
			}
			if names := columnNames(m); !reflect.DeepEqual(names, []string{"Name", "Age", "City"}) {
				t.Errorf("receiver changed to %v", names)
			}
		})
	}
}

func TestModel_IndexErrors(t *testing.T) {
	m := sampleModel()

	checks := map[string]func() error{
		"reorder from": func() error { _, err := m.Reorder(3, 0); return err },
		"reorder to":   func() error { _, err := m.Reorder(0, -1); return err },
		"toggle":       func() error { _, err := m.ToggleExcluded(-1); return err },
		"delete":       func() error { _, err := m.DeleteColumn(3); return err },
		"rename":       func() error { _, err := m.RenameColumn(7, "x"); return err },
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("err = %v, want ErrIndexOutOfRange", err)
			}
		})
	}
}

func TestModel_ToggleExcluded(t *testing.T) {
	m := sampleModel()

	got, err := m.ToggleExcluded(1)
	if err != nil {
		t.Fatalf("ToggleExcluded: %v", err)
	}
	if !got.Columns[1].Excluded {
		t.Error("column 1 should be excluded")
	}
	if m.Columns[1].Excluded {
		t.Error("receiver was mutated")
	}

	back, _ := got.ToggleExcluded(1)
	if back.Columns[1].Excluded {
		t.Error("second toggle should clear exclusion")
	}
}

func TestModel_CustomColumns(t *testing.T) {
	m := sampleModel()
	newID := sequentialIDs("custom")

	m = m.AddCustomColumn(newID)
	m = m.AddCustomColumn(newID)

	if got := m.CustomCount(); got != 2 {
		t.Fatalf("CustomCount = %d, want 2", got)
	}
	last := m.Columns[len(m.Columns)-1]
	want := Column{ID: "custom-2", Name: "New Column 2", OriginalIndex: CustomColumnIndex, IsCustom: true}
	if last != want {
		t.Errorf("last column = %+v, want %+v", last, want)
	}

	m, err := m.DeleteColumn(3)
	if err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	m = m.AddCustomColumn(newID)
	if got := m.Columns[len(m.Columns)-1].Name; got != "New Column 2" {
		t.Errorf("name after delete+add = %q, want %q", got, "New Column 2")
	}
}

func TestModel_RenameColumn(t *testing.T) {
	m := sampleModel()

	got, err := m.RenameColumn(0, "")
	if err != nil {
		t.Fatalf("RenameColumn: %v", err)
	}
	if got.Columns[0].Name != "" {
		t.Errorf("empty rename should pass through, got %q", got.Columns[0].Name)
	}
	if m.Columns[0].Name != "Name" {
		t.Error("receiver was mutated")
	}
}

func TestModel_Reset(t *testing.T) {
	m := sampleModel()
	m, _ = m.Reorder(0, 2)
	m, _ = m.ToggleExcluded(0)
	m = m.AddCustomColumn(sequentialIDs("c"))

	reset := m.Reset()
	want := sampleModel().Columns
	if !reflect.DeepEqual(reset.Columns, want) {
		t.Errorf("Reset() = %+v, want %+v", reset.Columns, want)
	}

	if again := reset.Reset(); !reflect.DeepEqual(again.Columns, reset.Columns) {
		t.Errorf("Reset is not idempotent: %+v then %+v", reset.Columns, again.Columns)
	}
}
