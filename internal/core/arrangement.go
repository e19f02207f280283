package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Arrangement is a named, saved column configuration.
type Arrangement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ColumnOrder ColumnOrder `json:"columnOrder"`
}

// UnmarshalJSON accepts string or numeric ids. Records written by older
// clients used millisecond timestamps (sometimes with a random fraction) as
// ids; those are kept as their decimal text.
func (a *Arrangement) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		ColumnOrder ColumnOrder     `json:"columnOrder"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	*a = Arrangement{ID: id, Name: raw.Name, ColumnOrder: raw.ColumnOrder}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("arrangement id: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("arrangement id must be a string or number: %w", err)
	}
	return n.String(), nil
}

// OrderFormat tells which on-disk shape a ColumnOrder was read from.
type OrderFormat int

const (
	// FormatCurrent entries are objects carrying name, exclusion and
	// custom-column metadata.
	FormatCurrent OrderFormat = iota
	// FormatLegacy entries are bare original indexes.
	FormatLegacy
)

func (f OrderFormat) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "current"
}

// OrderEntry is one element of a current-format column order.
type OrderEntry struct {
	OriginalIndex int    `json:"originalIndex"`
	Name          string `json:"name"`
	Excluded      bool   `json:"excluded"`
	IsCustom      bool   `json:"isCustom"`
}

// ColumnOrder is the saved sequence of columns in one of two formats.
// Exactly one of Legacy and Entries is meaningful, selected by Format.
type ColumnOrder struct {
	Format  OrderFormat
	Legacy  []int
	Entries []OrderEntry
}

// CurrentOrder builds a current-format ColumnOrder.
func CurrentOrder(entries ...OrderEntry) ColumnOrder {
	return ColumnOrder{Format: FormatCurrent, Entries: entries}
}

// LegacyOrder builds a legacy-format ColumnOrder.
func LegacyOrder(indexes ...int) ColumnOrder {
	return ColumnOrder{Format: FormatLegacy, Legacy: indexes}
}

// Len returns the number of entries regardless of format.
func (o ColumnOrder) Len() int {
	if o.Format == FormatLegacy {
		return len(o.Legacy)
	}
	return len(o.Entries)
}

var errNotArray = errors.New("columnOrder must be an array")

// UnmarshalJSON decides the format once, from the first element, and then
// decodes every element strictly as that format.
func (o *ColumnOrder) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errNotArray
	}

	if len(items) > 0 && isJSONNumber(items[0]) {
		legacy := make([]int, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &legacy[i]); err != nil {
				return fmt.Errorf("legacy columnOrder[%d]: %w", i, err)
			}
		}
		*o = LegacyOrder(legacy...)
		return nil
	}

	entries := make([]OrderEntry, len(items))
	for i, item := range items {
		if !isJSONObject(item) {
			return fmt.Errorf("columnOrder[%d]: expected object", i)
		}
		if err := json.Unmarshal(item, &entries[i]); err != nil {
			return fmt.Errorf("columnOrder[%d]: %w", i, err)
		}
	}
	*o = CurrentOrder(entries...)
	return nil
}

// MarshalJSON writes the order back in the shape it was read in.
func (o ColumnOrder) MarshalJSON() ([]byte, error) {
	if o.Format == FormatLegacy {
		if o.Legacy == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.Legacy)
	}
	if o.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.Entries)
}

func isJSONNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
