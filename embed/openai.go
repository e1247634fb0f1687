package embed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/faqbase/faqbase/vector"
)

// OpenAIConfig configures the OpenAI-compatible embeddings client.
type OpenAIConfig struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
	MaxRetries int
}

// OpenAI implements Embedder against an OpenAI-compatible embeddings API.
type OpenAI struct {
	client openai.Client
	model  string
	dims   int
}

// NewOpenAI creates the embeddings client. The API key is read from the
// environment variable named by cfg.APIKeyEnv; construction fails when it is
// unset so a misconfigured provider surfaces immediately instead of
// degrading to empty vectors.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("embed: missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}, nil
}

// Embed requests an embedding for text and normalizes it to unit L2 norm.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(o.model),
	}
	if o.dims > 0 {
		params.Dimensions = openai.Int(int64(o.dims))
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embed: calling embeddings API: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: embeddings API returned no data")
	}

	src := resp.Data[0].Embedding
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	vector.Normalize(out)
	return out, nil
}
