package interfaces

import (
	"context"
	"time"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// BuildInput selects what a full index rebuild ingests
type BuildInput struct {
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Episodic bool   `json:"episodic"`
	Tasks    bool   `json:"tasks"`
}

// QueryInput is one similarity query against an existing index
type QueryInput struct {
	Model      string          `json:"model"`
	Text       string          `json:"text"`
	TopK       int             `json:"top_k"`
	TypeFilter string          `json:"type_filter,omitempty"`
	Range      model.DateRange `json:"range,omitzero"`
}

// AppendInput adds one event to an existing index. The embedding is
// generated with the provider recorded in the artifact, not a caller
// preference.
type AppendInput struct {
	Model     string        `json:"model"`
	EventID   types.EventID `json:"event_id"`
	Content   string        `json:"content"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Entities  []string      `json:"entities,omitempty"`
	FilePath  string        `json:"file_path"`
}

// AppendResult reports the item count after an append and whether the event
// was already indexed
type AppendResult struct {
	ItemCount int  `json:"item_count"`
	Appended  bool `json:"appended"`
}

// VectorIndex is the semantic retrieval service over the event store
type VectorIndex interface {
	// Status reads only the artifact header
	Status(ctx context.Context, username, indexModel string) (*model.IndexStatus, error)

	// Build rebuilds the whole artifact from the event store and task
	// documents, replacing any previous artifact for (profile, model)
	Build(ctx context.Context, username string, input BuildInput) (*model.IndexStatus, error)

	// Query embeds text and returns the topK most similar items
	Query(ctx context.Context, username string, input QueryInput) ([]model.QueryHit, error)

	// Append adds one event to the artifact, idempotently by event id
	Append(ctx context.Context, username string, input AppendInput) (*AppendResult, error)
}
