package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder maps text to a fixed-length dense vector. The same model must be
// used for transcript segments and queries, or their similarities are
// meaningless.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	cli   *openai.Client
	model string
}

// NewOpenAIEmbedder creates an embedder for the given model. baseURL may be
// empty for the default OpenAI endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		cli:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.cli.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float64, len(raw))
	for i, v := range raw {
		vector[i] = float64(v)
	}
	return vector, nil
}
