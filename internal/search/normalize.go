package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares text for matching: NFC composition, Unicode lower
// case, surrounding whitespace trimmed and inner runs collapsed to one space.
func Normalize(s string) string {
	// cases.Caser keeps state and is not safe for concurrent use.
	lower := cases.Lower(language.Und).String(norm.NFC.String(s))
	return strings.Join(strings.Fields(lower), " ")
}

// Terms splits a query into its normalized, non-empty terms.
// A blank query has no terms.
func Terms(query string) []string {
	n := Normalize(query)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}
