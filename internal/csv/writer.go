package csv

import "strings"

// NeedsQuotes reports whether a field must be wrapped in quotes to survive
// a trip through SplitRows and SplitCells.
func NeedsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}

// Quote returns field wrapped in double quotes with inner quotes doubled
// when NeedsQuotes says so, and field unchanged otherwise.
func Quote(field string) string {
	if !NeedsQuotes(field) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FormatRecord renders one line of comma-separated, quote-if-needed fields.
func FormatRecord(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Quote(f))
	}
	return b.String()
}

// Format renders records as lines joined by \n, with no trailing newline.
func Format(records [][]string) string {
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = FormatRecord(rec)
	}
	return strings.Join(lines, "\n")
}
