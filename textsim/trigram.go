package textsim

import (
	"strings"
	"unicode"
)

// Similarity returns the trigram similarity between a and b in [0, 1].
// 1 means the trigram sets are identical, 0 means they share nothing.
// Comparison is case-insensitive; an input with no extractable trigrams
// scores 0 against everything, including itself.
func Similarity(a, b string) float64 {
	ta := Trigrams(a)
	tb := Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// Trigrams extracts the padded trigram set of s. Each alphanumeric word is
// padded as "  word " so that word boundaries contribute their own trigrams.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(strings.ToLower(s)) {
		padded := append([]rune{' ', ' '}, word...)
		padded = append(padded, ' ')
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

func splitWords(s string) [][]rune {
	var words [][]rune
	var current []rune
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
			continue
		}
		if len(current) > 0 {
			words = append(words, current)
			current = nil
		}
	}
	if len(current) > 0 {
		words = append(words, current)
	}
	return words
}
