package embed

import "context"

// Embedder converts free text into a fixed-length, unit-normalized embedding.
// Implementations must return vectors of a consistent dimension; the stored
// corpus and all queries share one provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
