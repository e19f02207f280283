package core

import (
	"slices"
	"strings"
)

// MatchThreshold is the minimum MatchPercentage for an arrangement to be
// recommended.
const MatchThreshold = 50.0

// MatchResult is a stored arrangement scored against a freshly loaded file.
type MatchResult struct {
	Arrangement     Arrangement `json:"arrangement"`
	MatchingCount   int         `json:"matchingCount"`
	MatchPercentage float64     `json:"matchPercentage"`
	TotalColumns    int         `json:"totalColumns"`
}

// MatchArrangements ranks arrangements by how many of their saved column
// names appear among columns. Names compare case-insensitively after
// trimming. Custom columns count on neither side, so legacy arrangements,
// which carry no names, never match. Results below MatchThreshold are
// dropped; the rest are sorted by descending percentage, ties in stored
// order.
func MatchArrangements(columns []Column, arrangements []Arrangement) []MatchResult {
	names := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !c.IsCustom {
			names[normalizeName(c.Name)] = true
		}
	}

	var results []MatchResult
	for _, a := range arrangements {
		if a.ColumnOrder.Format != FormatCurrent {
			continue
		}

		total, matching := 0, 0
		for _, e := range a.ColumnOrder.Entries {
			if e.IsCustom {
				continue
			}
			total++
			if names[normalizeName(e.Name)] {
				matching++
			}
		}
		if total == 0 {
			continue
		}

		pct := float64(matching) / float64(total) * 100
		if pct < MatchThreshold {
			continue
		}
		results = append(results, MatchResult{
			Arrangement:     a,
			MatchingCount:   matching,
			MatchPercentage: pct,
			TotalColumns:    total,
		})
	}

	slices.SortStableFunc(results, func(a, b MatchResult) int {
		switch {
		case a.MatchPercentage > b.MatchPercentage:
			return -1
		case a.MatchPercentage < b.MatchPercentage:
			return 1
		}
		return 0
	})
	return results
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
