// Package enrich implements the enrichment routine shared by ingestion and
// the edit operation: a question/answer pair maps to a language tag and an
// embedding of the joined text.
package enrich

import (
	"context"

	"github.com/faqbase/faqbase/embed"
	"github.com/faqbase/faqbase/langid"
)

// Separator joins the question and answer before embedding, and prior
// conversation turns before the context embedding. It mirrors the embedding
// model's sentence separator token.
const Separator = " [SEP] "

// Enricher derives the stored attributes of a candidate from its texts.
type Enricher struct {
	embedder embed.Embedder
	detector langid.Detector
}

func New(embedder embed.Embedder, detector langid.Detector) *Enricher {
	return &Enricher{embedder: embedder, detector: detector}
}

// Enrich returns the language tag and embedding for a question/answer pair.
// The language is classified from the question alone; the embedding covers
// both texts joined by Separator.
func (e *Enricher) Enrich(ctx context.Context, question, answer string) (langid.Tag, []float32, error) {
	vec, err := e.embedder.Embed(ctx, question+Separator+answer)
	if err != nil {
		return "", nil, err
	}
	return e.detector.Detect(question), vec, nil
}

// EmbedQuery embeds a standalone message exactly the way a pair with an
// empty answer embeds, so queries and stored candidates share one vector
// space.
func (e *Enricher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embedder.Embed(ctx, text+Separator)
}
