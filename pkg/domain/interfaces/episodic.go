package interfaces

import (
	"context"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// EventInput is the caller-supplied part of a new episodic event. ID,
// timestamp and category are assigned by the store at write time.
type EventInput struct {
	Content  string         `json:"content"`
	Type     string         `json:"type"`
	Tags     []string       `json:"tags,omitempty"`
	Entities []string       `json:"entities,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ListFilter narrows a List walk. Category limits the walk to one bucket;
// Range filters on file modification time.
type ListFilter struct {
	Category types.EventCategory `json:"category,omitempty"`
	Range    model.DateRange     `json:"range,omitzero"`
}

// EventStore persists immutable episodic events, one file per event
type EventStore interface {
	// Write classifies, persists and returns the new event along with
	// its path relative to the event root
	Write(ctx context.Context, username string, input EventInput) (*model.Event, string, error)

	// Read loads one event by its path relative to the event root,
	// decrypting transparently
	Read(ctx context.Context, username, relPath string) (*model.Event, error)

	// Search walks the event tree depth-first and returns up to limit
	// events whose content contains query, case-insensitively.
	// Unreadable files are skipped, never fatal.
	Search(ctx context.Context, username, query string, limit int) ([]*model.Event, error)

	// List walks the event tree and returns file descriptors sorted by
	// modification time, newest first
	List(ctx context.Context, username string, filter ListFilter) ([]model.EventFile, error)
}
