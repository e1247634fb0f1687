package question

import "github.com/faqbase/faqbase/store"

// Message is one prior conversation turn. Order matters: the most recent
// turn comes last.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a search request. NewMessage is required; everything else is
// optional.
type Request struct {
	NewMessage string    `json:"newMessage"`
	Messages   []Message `json:"messages,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	ClientType string    `json:"clientType,omitempty"`
	Lang       string    `json:"lang,omitempty"`
}

// Answer is the scored search response. ID is nil for the no-match
// sentinel, in which case Question echoes the query and every score is zero.
type Answer struct {
	ID                 *string `json:"id"`
	Question           string  `json:"question"`
	Answer             string  `json:"answer"`
	CombinedSimilarity float64 `json:"combinedSimilarity"`
	TextSimilarity     float64 `json:"textSimilarity"`
	KeywordMatchScore  float64 `json:"keywordMatchScore"`
	FinalScore         float64 `json:"finalScore"`
}

// EditRequest replaces the texts of an existing candidate.
type EditRequest struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ScoredCandidate is a retrieval hit with the post-retrieval keyword signals
// and the fused final score attached. It is ephemeral: computed per query and
// never persisted.
type ScoredCandidate struct {
	store.Hit
	KeywordMatchScore float64
	KeywordBoost      float64
	FinalScore        float64
}
