// Package csv implements the quote-aware CSV dialect used by the column
// arranger: row splitting that keeps quoted line breaks inside a row, cell
// splitting that unescapes doubled quotes, and the minimal quote-if-needed
// writer used on export.
//
// The dialect is deliberately lenient. Nothing in this package fails on
// malformed input: an unterminated quote simply runs to the end of the text
// and the open field is closed as-is.
package csv

import "strings"

// bom is the byte order mark some editors (notably Excel on Windows) prepend.
const bom = "\uFEFF"

// StripBOM removes a single leading byte order mark, if present.
func StripBOM(text string) string {
	return strings.TrimPrefix(text, bom)
}

// SplitRows breaks raw file text into row strings.
//
// A line terminator (\n, \r or the pair \r\n) ends a row only outside
// quotes. Escaped quotes ("" inside a quoted field) are kept doubled in the
// row text; SplitCells collapses them. Rows that are blank after trimming
// are dropped, including a dangling final row.
func SplitRows(text string) []string {
	var (
		rows     []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				current.WriteString(`""`)
				i++
				continue
			}
			inQuotes = !inQuotes
			current.WriteByte(c)

		case (c == '\n' || c == '\r') && !inQuotes:
			rows = appendRow(rows, current.String())
			current.Reset()
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}

		default:
			current.WriteByte(c)
		}
	}

	return appendRow(rows, current.String())
}

func appendRow(rows []string, row string) []string {
	if strings.TrimSpace(row) == "" {
		return rows
	}
	return append(rows, row)
}

// SplitCells breaks one row string into trimmed cell values.
//
// Commas outside quotes separate fields. The quotes delimiting a field are
// dropped and an escaped quote contributes a single literal quote. The last
// field is always emitted, so a row never yields zero cells.
func SplitCells(row string) []string {
	var (
		cells    []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(row) && row[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes

		case c == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()

		default:
			current.WriteByte(c)
		}
	}

	return append(cells, strings.TrimSpace(current.String()))
}

// Parse tokenizes a whole file: BOM stripping, row splitting, then cell
// splitting of every row. Empty or blank text yields no rows.
func Parse(text string) [][]string {
	rows := SplitRows(StripBOM(text))
	if len(rows) == 0 {
		return nil
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = SplitCells(row)
	}
	return records
}
