// utils/headers.go
package utils

import "strings"

// CleanHeader tidies a raw column-header cell: strips a UTF-8 BOM if the
// exporter left one on the first cell, trims surrounding whitespace, and
// collapses internal runs of whitespace to a single space ("OC  MDL" and
// "OC MDL" are the same column).
func CleanHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\uFEFF")
	return strings.Join(strings.Fields(cell), " ")
}

// CleanHeaders applies CleanHeader to every cell of a header row.
func CleanHeaders(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = CleanHeader(c)
	}
	return out
}
