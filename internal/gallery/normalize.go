package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "José" -> "Jose").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeDisplayName produces the canonical display name stored per
// student at ingestion time: diacritics stripped, whitespace collapsed.
// Matching and resolution never branch on record shape, they only ever see
// this single field.
func NormalizeDisplayName(name string) string {
	name = RemoveDiacritics(name)
	return strings.Join(strings.Fields(name), " ")
}

// SplitLabel splits an offline-trainer label of the form
// "First Last - 20225389" into a display name and student id. Labels
// without the separator yield an empty id.
func SplitLabel(label string) (displayName, studentID string) {
	if idx := strings.LastIndex(label, " - "); idx >= 0 {
		return NormalizeDisplayName(label[:idx]), strings.TrimSpace(label[idx+3:])
	}
	return NormalizeDisplayName(label), ""
}
