package question

import (
	"context"
	"strings"

	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/vector"
)

// queryPlan is the composed query representation handed to retrieval.
// secondary is nil when conversational context is absent or too unrelated to
// the new message to help.
type queryPlan struct {
	primary         []float32
	secondary       []float32
	primaryWeight   float64
	secondaryWeight float64
}

// composePlan embeds the new message and, when prior turns exist, the joined
// context. Context only participates when its embedding is similar enough to
// the new message (>= contextThreshold); stale or unrelated history would
// otherwise dilute the query.
func (s *Service) composePlan(ctx context.Context, newMessage string, messages []Message) (queryPlan, error) {
	primary, err := s.enricher.EmbedQuery(ctx, newMessage)
	if err != nil {
		return queryPlan{}, err
	}
	plan := queryPlan{primary: primary, primaryWeight: 1}

	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	contextText := strings.Join(parts, enrich.Separator)
	if contextText == "" {
		return plan, nil
	}

	secondary, err := s.enricher.EmbedQuery(ctx, contextText)
	if err != nil {
		return queryPlan{}, err
	}
	if vector.CosineSimilarity(secondary, primary) >= contextThreshold {
		plan.secondary = secondary
		plan.primaryWeight = messageWeight
		plan.secondaryWeight = contextWeight
	}
	return plan, nil
}
