package interfaces

import "context"

// Embedder converts text into a fixed-length vector. Implementations are a
// local HTTP service, a cloud LLM client, or a deterministic in-process
// mock for offline use. Provider failures propagate to the caller
// unmodified; no implementation retries internally.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
	Model() string
}

// EmbedderFactory builds an Embedder for a (provider, model) pair. The
// vector index uses it to honor the provider recorded in an artifact
// regardless of what the caller asked for.
type EmbedderFactory interface {
	Embedder(provider, embedModel string) (Embedder, error)
}
