package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DocumentVersion is written into every exported arrangement document.
const DocumentVersion = "1.0"

// NewArrangement captures the model's current column sequence under name.
// The name is stored as entered; it only has to be non-blank after trimming.
func NewArrangement(m Model, name, id string) (Arrangement, error) {
	if strings.TrimSpace(name) == "" {
		return Arrangement{}, ErrBlankName
	}
	if m.Empty() {
		return Arrangement{}, ErrNoCSVLoaded
	}

	entries := make([]OrderEntry, len(m.Columns))
	for i, c := range m.Columns {
		entries[i] = OrderEntry{
			OriginalIndex: c.OriginalIndex,
			Name:          c.Name,
			Excluded:      c.Excluded,
			IsCustom:      c.IsCustom,
		}
	}

	return Arrangement{ID: id, Name: name, ColumnOrder: CurrentOrder(entries...)}, nil
}

// ApplyArrangement rebuilds the model's column sequence from a saved
// arrangement.
//
// Legacy orders must resolve every live column or the load fails with
// ErrStructureMismatch. Current orders drop entries that have no live
// column and synthesise fresh custom columns.
func ApplyArrangement(m Model, a Arrangement, newID func() string) (Model, error) {
	if m.Empty() {
		return m, ErrNoCSVLoaded
	}
	// An empty order would leave a model with no columns, which export and
	// save both treat as nothing loaded.
	if a.ColumnOrder.Len() == 0 {
		return m, ErrStructureMismatch
	}

	if a.ColumnOrder.Format == FormatLegacy {
		return applyLegacy(m, a.ColumnOrder.Legacy)
	}
	return applyCurrent(m, a.ColumnOrder.Entries, newID), nil
}

func applyLegacy(m Model, order []int) (Model, error) {
	cols := make([]Column, 0, len(order))
	for _, idx := range order {
		c, ok := findColumn(m.Columns, idx)
		if !ok {
			continue
		}
		c.Excluded = false
		cols = append(cols, c)
	}

	if len(cols) != len(m.Columns) {
		return m, fmt.Errorf("%w: resolved %d of %d columns", ErrStructureMismatch, len(cols), len(m.Columns))
	}
	return m.withColumns(cols), nil
}

func applyCurrent(m Model, entries []OrderEntry, newID func() string) Model {
	cols := make([]Column, 0, len(entries))
	used := make(map[int]bool, len(entries))

	for _, e := range entries {
		if e.IsCustom {
			cols = append(cols, Column{
				ID:            newID(),
				Name:          e.Name,
				OriginalIndex: CustomColumnIndex,
				Excluded:      e.Excluded,
				IsCustom:      true,
			})
			continue
		}

		if used[e.OriginalIndex] {
			continue
		}
		c, ok := findColumn(m.Columns, e.OriginalIndex)
		if !ok || c.IsCustom {
			continue
		}
		used[e.OriginalIndex] = true
		c.Excluded = e.Excluded
		cols = append(cols, c)
	}

	return m.withColumns(cols)
}

func findColumn(cols []Column, originalIndex int) (Column, bool) {
	for _, c := range cols {
		if c.OriginalIndex == originalIndex {
			return c, true
		}
	}
	return Column{}, false
}

// ExportDocument is the JSON shape of an arrangement export file.
type ExportDocument struct {
	Version      string        `json:"version"`
	ExportDate   string        `json:"exportDate"`
	Arrangements []Arrangement `json:"arrangements"`
}

// NewExportDocument wraps arrs for export, stamped with now in UTC.
func NewExportDocument(arrs []Arrangement, now time.Time) ExportDocument {
	if arrs == nil {
		arrs = []Arrangement{}
	}
	return ExportDocument{
		Version:      DocumentVersion,
		ExportDate:   now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Arrangements: arrs,
	}
}

// SelectArrangements returns the arrangements whose IDs are listed in ids,
// in stored order. An empty ids selects everything. ErrNothingToExport is
// returned when the selection is empty.
func SelectArrangements(all []Arrangement, ids []string) ([]Arrangement, error) {
	if len(ids) == 0 {
		if len(all) == 0 {
			return nil, ErrNothingToExport
		}
		return all, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var selected []Arrangement
	for _, a := range all {
		if want[a.ID] {
			selected = append(selected, a)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNothingToExport
	}
	return selected, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slug(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
}

// ExportFilename names an export file after the arrangements it holds.
func ExportFilename(arrs []Arrangement) string {
	switch n := len(arrs); {
	case n == 0:
		return "arrangements.json"
	case n <= 3:
		slugs := make([]string, n)
		for i, a := range arrs {
			slugs[i] = Slug(a.Name)
		}
		return strings.Join(slugs, "-") + ".json"
	default:
		return strconv.Itoa(n) + "-arrangements.json"
	}
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// ImportStatus is the outcome of an arrangement import.
type ImportStatus string

const (
	ImportStatusImported      ImportStatus = "imported"
	ImportStatusNothingNew    ImportStatus = "nothing_new"
	ImportStatusInvalidFormat ImportStatus = "invalid_format"
	ImportStatusUnreadable    ImportStatus = "unreadable"
)

// ImportResult reports what an import would do. Arrangements is the full
// record list to store (existing followed by imported) and is only set
// when Status is ImportStatusImported.
type ImportResult struct {
	Status       ImportStatus
	Imported     int
	Arrangements []Arrangement
}

// Message returns the text shown to the user for the result.
func (r ImportResult) Message() string {
	switch r.Status {
	case ImportStatusImported:
		return fmt.Sprintf("Successfully imported %d arrangement(s)", r.Imported)
	case ImportStatusNothingNew:
		return "No new arrangements to import. All arrangements already exist."
	case ImportStatusInvalidFormat:
		return "Invalid file format. Please select a valid arrangements JSON file."
	default:
		return "Error reading file. Please ensure it is a valid JSON file."
	}
}

// ImportDocument merges the arrangements of an export document into
// existing.
//
// Entries without a non-blank name or with a columnOrder that is not a
// well-formed order array are skipped, as are entries whose name matches a
// stored arrangement. Names repeated inside the document are all kept. A
// leading UTF-8 byte order mark is ignored. Survivors get fresh IDs from newID. The result is all-or-nothing:
// either every survivor is appended or nothing changes.
func ImportDocument(existing []Arrangement, data []byte, newID func() string) ImportResult {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		return ImportResult{Status: ImportStatusUnreadable}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return ImportResult{Status: ImportStatusInvalidFormat}
	}

	var entries []json.RawMessage
	raw, ok := doc["arrangements"]
	if !ok || !isJSONArray(raw) {
		return ImportResult{Status: ImportStatusInvalidFormat}
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ImportResult{Status: ImportStatusInvalidFormat}
	}

	taken := make(map[string]bool, len(existing))
	for _, a := range existing {
		taken[a.Name] = true
	}

	var imported []Arrangement
	for _, entry := range entries {
		a, ok := decodeImportEntry(entry)
		if !ok || taken[a.Name] {
			continue
		}
		a.ID = newID()
		imported = append(imported, a)
	}

	if len(imported) == 0 {
		return ImportResult{Status: ImportStatusNothingNew}
	}

	all := make([]Arrangement, 0, len(existing)+len(imported))
	all = append(all, existing...)
	all = append(all, imported...)
	return ImportResult{
		Status:       ImportStatusImported,
		Imported:     len(imported),
		Arrangements: all,
	}
}

func decodeImportEntry(raw json.RawMessage) (Arrangement, bool) {
	if !isJSONObject(raw) {
		return Arrangement{}, false
	}

	var entry struct {
		Name        json.RawMessage `json:"name"`
		ColumnOrder json.RawMessage `json:"columnOrder"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Arrangement{}, false
	}

	var name string
	if err := json.Unmarshal(entry.Name, &name); err != nil || strings.TrimSpace(name) == "" {
		return Arrangement{}, false
	}

	if !isJSONArray(entry.ColumnOrder) {
		return Arrangement{}, false
	}
	var order ColumnOrder
	if err := json.Unmarshal(entry.ColumnOrder, &order); err != nil {
		return Arrangement{}, false
	}

	return Arrangement{Name: name, ColumnOrder: order}, true
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
