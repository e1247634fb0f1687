package question

import (
	"regexp"
	"strings"
)

// keywordPattern extracts the meaningful tokens of a message: word sequences
// of length four or more.
var keywordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// ExtractKeywords returns the keyword tokens of message in order of
// appearance, case preserved. Matching against candidates is always
// case-insensitive.
func ExtractKeywords(message string) []string {
	return keywordPattern.FindAllString(message, -1)
}

// keywordAlternation compiles a case-insensitive alternation over keywords.
// It returns nil for an empty keyword set: an empty alternation would match
// every question, which must score 0, not 0.2.
func keywordAlternation(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// containsAllKeywords reports whether every keyword appears in text as a
// case-insensitive substring. An empty keyword set never qualifies; the
// boost requires actual keyword evidence, not a vacuous truth.
func containsAllKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
