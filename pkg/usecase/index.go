package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// IndexStatus reports the artifact header for one (profile, model)
func (uc *UseCases) IndexStatus(ctx context.Context, username, indexModel string) (*model.IndexStatus, error) {
	if indexModel == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "model is required")
	}
	return uc.index.Status(ctx, username, indexModel)
}

// BuildIndex rebuilds the whole artifact from the profile's documents
func (uc *UseCases) BuildIndex(ctx context.Context, username string, input interfaces.BuildInput) (*model.IndexStatus, error) {
	if !input.Episodic && !input.Tasks {
		// Default to everything rather than an empty index
		input.Episodic = true
		input.Tasks = true
	}
	return uc.index.Build(ctx, username, input)
}

// QueryIndex runs one similarity query
func (uc *UseCases) QueryIndex(ctx context.Context, username string, input interfaces.QueryInput) ([]model.QueryHit, error) {
	if input.Text == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "query text is required")
	}
	return uc.index.Query(ctx, username, input)
}

// AppendToIndex adds one event to the artifact, idempotently
func (uc *UseCases) AppendToIndex(ctx context.Context, username string, input interfaces.AppendInput) (*interfaces.AppendResult, error) {
	return uc.index.Append(ctx, username, input)
}

// EmbedOutput carries a raw embedding back to the caller
type EmbedOutput struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Vector    []float32 `json:"vector"`
}

// Embed converts text into a vector with an explicit provider, bypassing
// any index artifact. Useful for callers that manage vectors themselves.
func (uc *UseCases) Embed(ctx context.Context, provider, embedModel, text string) (*EmbedOutput, error) {
	if text == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "text is required")
	}

	embedder, err := uc.factory.Embedder(provider, embedModel)
	if err != nil {
		return nil, err
	}
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	return &EmbedOutput{
		Provider:  embedder.Name(),
		Model:     embedder.Model(),
		Dimension: len(vec),
		Vector:    vec,
	}, nil
}
