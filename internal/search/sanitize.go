package search

import "strings"

// DefaultMaxQueryLength caps the number of runes kept from a query.
const DefaultMaxQueryLength = 100

// SanitizeQuery trims q, removes angle brackets and caps it to limit runes.
// A non-positive limit selects DefaultMaxQueryLength.
func SanitizeQuery(q string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxQueryLength
	}
	q = strings.TrimSpace(q)
	q = strings.NewReplacer("<", "", ">", "").Replace(q)
	if r := []rune(q); len(r) > limit {
		q = string(r[:limit])
	}
	return q
}
