package resolver

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Scorer rates the similarity of two strings on a 0..100 scale.
type Scorer func(a, b string) float64

// Ratio is the normalized indel similarity 200·LCS/(len(a)+len(b)), with
// lengths counted in runes. Two empty strings score 100.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	if a == b {
		return 100
	}
	lcs := matchr.LongestCommonSubsequence(a, b)
	return 200 * float64(lcs) / float64(total)
}

// JaroWinkler scales matchr's Jaro-Winkler similarity to 0..100.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return 100 * matchr.JaroWinkler(a, b, false)
}

// ScorerByName maps a configuration name to a Scorer.
func ScorerByName(name string) (Scorer, bool) {
	switch name {
	case "", "ratio":
		return Ratio, true
	case "jaro-winkler", "jarowinkler":
		return JaroWinkler, true
	default:
		return nil, false
	}
}
