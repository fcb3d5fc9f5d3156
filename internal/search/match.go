package search

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalize folds width and case variants and maps katakana onto hiragana
// so that script variants of the same word compare equal.
func normalize(s string) []rune {
	s = strings.ToLower(norm.NFKC.String(s))
	out := []rune(s)
	for i, r := range out {
		if r >= 0x30A1 && r <= 0x30F6 {
			out[i] = r - 0x60
		}
	}
	return out
}

// distance returns the smallest edit distance between pattern and any
// substring of text (Sellers' algorithm). The match position is ignored.
func distance(pattern, text []rune) int {
	m := len(pattern)
	if m == 0 {
		return 0
	}
	col := make([]int, m+1)
	for i := range col {
		col[i] = i
	}
	best := col[m]
	for _, tc := range text {
		diag := col[0] // D[i-1][j-1]
		col[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == tc {
				cost = 0
			}
			up := col[i] // D[i][j-1]
			v := diag + cost
			if up+1 < v {
				v = up + 1
			}
			if col[i-1]+1 < v {
				v = col[i-1] + 1
			}
			diag = up
			col[i] = v
		}
		if col[m] < best {
			best = col[m]
		}
	}
	return best
}

// fieldScore is the normalised edit distance of pattern within text, in
// [0, 1]. 0 is an exact substring match.
func fieldScore(pattern, text []rune) float64 {
	if len(pattern) == 0 {
		return 0
	}
	return float64(distance(pattern, text)) / float64(len(pattern))
}

// fieldNorm shortens the reach of long fields: 1/sqrt(tokens), rounded to
// three decimals.
func fieldNorm(s string) float64 {
	n := len(strings.Fields(s))
	if n == 0 {
		n = 1
	}
	return math.Round(1000/math.Sqrt(float64(n))) / 1000
}
