package store

import (
	"context"
	"fmt"

	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/vector"
)

// SearchSpec is the structured retrieval descriptor. Vectors, weights, the
// lexical query text, and the language filter all bind as SQL parameters;
// no vector literal is ever interpolated into the statement.
type SearchSpec struct {
	// Primary is the query embedding. Required.
	Primary []float32

	// Secondary is the optional context embedding. When nil the primary
	// similarity is used alone and the weights are ignored.
	Secondary []float32

	// PrimaryWeight and SecondaryWeight blend the two similarities when
	// Secondary is present.
	PrimaryWeight   float64
	SecondaryWeight float64

	// Query is the raw message text scored lexically against each
	// candidate's question and answer.
	Query string

	// Lang restricts retrieval to candidates with this exact tag when
	// non-empty.
	Lang string

	// Limit caps the result size; defaults to 20.
	Limit int
}

// Hit is one retrieved candidate with its store-computed signals: the
// (blended) vector similarity and the best trigram similarity across the
// question and answer texts.
type Hit struct {
	ID                 string
	Question           string
	Answer             string
	Lang               langid.Tag
	CombinedSimilarity float64
	TextSimilarity     float64
}

// TopK retrieves the best candidates for spec, ordered by combined vector
// similarity descending with lexical similarity as tie-break.
func (s *Store) TopK(ctx context.Context, spec SearchSpec) ([]Hit, error) {
	if len(spec.Primary) == 0 {
		return nil, fmt.Errorf("store: search spec has no primary embedding")
	}
	if spec.Limit <= 0 {
		spec.Limit = 20
	}

	simExpr := `vec_cosine(embedding, ?)`
	args := []any{vector.Encode(spec.Primary)}
	if spec.Secondary != nil {
		simExpr = `? * vec_cosine(embedding, ?) + ? * vec_cosine(embedding, ?)`
		args = []any{
			spec.PrimaryWeight, vector.Encode(spec.Primary),
			spec.SecondaryWeight, vector.Encode(spec.Secondary),
		}
	}

	// COALESCE keeps a candidate with a missing embedding scorable at 0
	// instead of poisoning the scan with NULL.
	query := `
		SELECT id, question, answer, lang,
		       COALESCE(` + simExpr + `, 0) AS combined,
		       MAX(trgm_sim(lower(question), lower(?)), trgm_sim(lower(answer), lower(?))) AS text_sim
		FROM questions`
	args = append(args, spec.Query, spec.Query)
	if spec.Lang != "" {
		query += ` WHERE lang = ?`
		args = append(args, spec.Lang)
	}
	query += ` ORDER BY combined DESC, text_sim DESC LIMIT ?`
	args = append(args, spec.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: searching candidates: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var lang string
		if err := rows.Scan(&h.ID, &h.Question, &h.Answer, &lang, &h.CombinedSimilarity, &h.TextSimilarity); err != nil {
			return nil, fmt.Errorf("store: scanning search hit: %w", err)
		}
		h.Lang = langid.Tag(lang)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: searching candidates: %w", err)
	}
	return hits, nil
}
