package core

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/JonMunkholm/colarrange/internal/csv"
)

// Column describes one column of the working arrangement.
// OriginalIndex is the column's position in the uploaded header row, or -1
// for custom columns, which have no backing data.
type Column struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	OriginalIndex int    `json:"originalIndex"`
	Excluded      bool   `json:"excluded"`
	IsCustom      bool   `json:"isCustom"`
}

// CustomColumnIndex is the OriginalIndex carried by every custom column.
const CustomColumnIndex = -1

// Model is an uploaded file plus its working column arrangement.
//
// A Model is a value: every mutating method returns a new Model and leaves
// the receiver untouched. Columns is copied on every change; Rows is shared
// between versions and must be treated as read-only.
type Model struct {
	FileName string     `json:"fileName"`
	Columns  []Column   `json:"columns"`
	Rows     [][]string `json:"-"`
}

// BuildModel turns tokenized records into a Model. The first record becomes
// the column set and the remaining records the data matrix. No records
// yields an empty Model.
func BuildModel(fileName string, records [][]string) Model {
	m := Model{FileName: fileName}
	if len(records) == 0 {
		return m
	}

	header := records[0]
	m.Columns = make([]Column, len(header))
	for i, name := range header {
		m.Columns[i] = Column{
			ID:            strconv.Itoa(i),
			Name:          name,
			OriginalIndex: i,
		}
	}
	m.Rows = records[1:]
	return m
}

// ParseModel tokenizes raw file text and builds a Model from it.
func ParseModel(fileName, text string) Model {
	return BuildModel(fileName, csv.Parse(text))
}

// Empty reports whether no CSV has been loaded into the model.
func (m Model) Empty() bool {
	return len(m.Columns) == 0
}

// Cell returns the value of column c in row, or "" when the column is
// custom or the row is too short.
func Cell(row []string, c Column) string {
	if c.IsCustom || c.OriginalIndex < 0 || c.OriginalIndex >= len(row) {
		return ""
	}
	return row[c.OriginalIndex]
}

// CustomCount returns the number of custom columns in the model.
func (m Model) CustomCount() int {
	n := 0
	for _, c := range m.Columns {
		if c.IsCustom {
			n++
		}
	}
	return n
}

func (m Model) withColumns(cols []Column) Model {
	m.Columns = cols
	return m
}

func (m Model) checkIndex(i int) error {
	if i < 0 || i >= len(m.Columns) {
		return fmt.Errorf("%w: %d (have %d columns)", ErrIndexOutOfRange, i, len(m.Columns))
	}
	return nil
}

// Reorder moves the column at position from so that it ends up at position
// to. Every other column keeps its relative order. to is an index into the
// list after removal and is clamped to its end.
func (m Model) Reorder(from, to int) (Model, error) {
	if err := m.checkIndex(from); err != nil {
		return m, err
	}
	if to < 0 {
		return m, fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}

	moved := m.Columns[from]
	cols := slices.Delete(slices.Clone(m.Columns), from, from+1)
	to = min(to, len(cols))
	cols = slices.Insert(cols, to, moved)
	return m.withColumns(cols), nil
}

// ToggleExcluded flips the Excluded flag of the column at position i.
func (m Model) ToggleExcluded(i int) (Model, error) {
	if err := m.checkIndex(i); err != nil {
		return m, err
	}
	cols := slices.Clone(m.Columns)
	cols[i].Excluded = !cols[i].Excluded
	return m.withColumns(cols), nil
}

// AddCustomColumn appends an empty custom column named "New Column N",
// where N is one more than the number of existing custom columns.
func (m Model) AddCustomColumn(newID func() string) Model {
	col := Column{
		ID:            newID(),
		Name:          fmt.Sprintf("New Column %d", m.CustomCount()+1),
		OriginalIndex: CustomColumnIndex,
		IsCustom:      true,
	}
	cols := append(slices.Clone(m.Columns), col)
	return m.withColumns(cols)
}

// DeleteColumn removes the column at position i. It is meant for custom
// columns; removing a source column drops it from every later export.
func (m Model) DeleteColumn(i int) (Model, error) {
	if err := m.checkIndex(i); err != nil {
		return m, err
	}
	cols := slices.Delete(slices.Clone(m.Columns), i, i+1)
	return m.withColumns(cols), nil
}

// RenameColumn sets the name of the column at position i. Any string is
// accepted, including the empty string.
func (m Model) RenameColumn(i int, name string) (Model, error) {
	if err := m.checkIndex(i); err != nil {
		return m, err
	}
	cols := slices.Clone(m.Columns)
	cols[i].Name = name
	return m.withColumns(cols), nil
}

// Reset restores the uploaded order: custom columns are dropped, every
// exclusion is cleared and the rest are sorted by OriginalIndex.
func (m Model) Reset() Model {
	cols := make([]Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		if c.IsCustom {
			continue
		}
		c.Excluded = false
		cols = append(cols, c)
	}
	slices.SortStableFunc(cols, func(a, b Column) int {
		return a.OriginalIndex - b.OriginalIndex
	})
	return m.withColumns(cols)
}
