package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// DefaultLLMDimension is requested from gollem clients unless overridden
const DefaultLLMDimension = 768

// LLM adapts a gollem.LLMClient (Gemini, OpenAI) as an embedding provider
type LLM struct {
	client    gollem.LLMClient
	name      string
	model     string
	dimension int
}

// NewLLM wraps an already-configured gollem client. name identifies the
// provider in index artifacts (e.g. "gemini").
func NewLLM(client gollem.LLMClient, name, model string, dimension int) *LLM {
	if dimension <= 0 {
		dimension = DefaultLLMDimension
	}
	return &LLM{client: client, name: name, model: model, dimension: dimension}
}

// Name returns the provider name
func (l *LLM) Name() string { return l.name }

// Model returns the embedding model name
func (l *LLM) Model() string { return l.model }

// Embed generates one embedding and narrows it to float32
func (l *LLM) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := l.client.GenerateEmbedding(ctx, l.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(types.ErrProvider, "embedding generation failed",
			goerr.V("provider", l.name),
			goerr.V("model", l.model),
			goerr.V("cause", err.Error()))
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.Wrap(types.ErrProvider, "embedding generation returned empty result",
			goerr.V("provider", l.name))
	}

	vector := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}
