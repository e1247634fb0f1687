package question

import (
	"sort"

	"github.com/faqbase/faqbase/store"
)

// scoreCandidates fuses the retrieval signals of each hit into a final
// score:
//
//	final = combined + 0.5*text + keywordMatch + keywordBoost
//
// The sort is stable over the retrieval order, so identical inputs always
// produce identical rankings.
func scoreCandidates(hits []store.Hit, keywords []string) []ScoredCandidate {
	pattern := keywordAlternation(keywords)

	scored := make([]ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		sc := ScoredCandidate{Hit: h}
		if pattern != nil && pattern.MatchString(h.Question) {
			sc.KeywordMatchScore = keywordMatchBonus
		}
		if containsAllKeywords(h.Question, keywords) {
			sc.KeywordBoost = keywordBoostBonus
		}
		sc.FinalScore = h.CombinedSimilarity + textWeight*h.TextSimilarity + sc.KeywordMatchScore + sc.KeywordBoost
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}
