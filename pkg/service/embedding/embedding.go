package embedding

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Factory builds embedders by provider name. The vector index uses it to
// honor the provider recorded in an existing artifact, whatever the caller
// asked for.
type Factory struct {
	ollamaBaseURL string
	ollamaOpts    []OllamaOption
	llmClient     gollem.LLMClient
	llmName       string
	llmDimension  int
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithOllama enables the "ollama" provider at the given base URL
func WithOllama(baseURL string, opts ...OllamaOption) FactoryOption {
	return func(f *Factory) {
		f.ollamaBaseURL = baseURL
		f.ollamaOpts = opts
	}
}

// WithLLM enables a gollem-backed cloud provider under the given name
func WithLLM(name string, client gollem.LLMClient, dimension int) FactoryOption {
	return func(f *Factory) {
		f.llmName = name
		f.llmClient = client
		f.llmDimension = dimension
	}
}

// NewFactory creates a factory. The "mock" provider is always available.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Embedder returns a provider for the (provider, model) pair
func (f *Factory) Embedder(provider, embedModel string) (interfaces.Embedder, error) {
	switch provider {
	case "mock":
		return NewMock(embedModel), nil

	case "ollama":
		if f.ollamaBaseURL == "" {
			return nil, goerr.Wrap(types.ErrBadRequest, "ollama provider is not configured")
		}
		return NewOllama(f.ollamaBaseURL, embedModel, f.ollamaOpts...), nil

	default:
		if f.llmClient != nil && provider == f.llmName {
			return NewLLM(f.llmClient, f.llmName, embedModel, f.llmDimension), nil
		}
		return nil, goerr.Wrap(types.ErrBadRequest, "unknown embedding provider",
			goerr.V("provider", provider))
	}
}
