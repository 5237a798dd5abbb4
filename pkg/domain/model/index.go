package model

import (
	"strings"
	"time"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// VectorIndex is the whole on-disk index artifact for one (profile, model)
// pair. The vector service is its sole writer; every build or append
// rewrites the artifact in one atomic step.
type VectorIndex struct {
	Meta IndexMeta   `json:"meta"`
	Data []IndexItem `json:"data"`
}

// IndexMeta is the artifact header. Status introspection reads only this.
type IndexMeta struct {
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	Items     int       `json:"items"`
}

// IndexItem is one embedded document. ID is the source event id, unique
// within the artifact; items are never deleted.
type IndexItem struct {
	ID        types.EventID `json:"id"`
	Path      string        `json:"path"`
	Type      string        `json:"type"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
	Text      string        `json:"text"`
	Vector    []float32     `json:"vector"`
}

// Find returns the item with the given id, or nil
func (idx *VectorIndex) Find(id types.EventID) *IndexItem {
	for i := range idx.Data {
		if idx.Data[i].ID == id {
			return &idx.Data[i]
		}
	}
	return nil
}

// IndexStatus is the introspection view of one (profile, model) artifact
type IndexStatus struct {
	Exists    bool      `json:"exists"`
	Corrupt   bool      `json:"corrupt,omitempty"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider,omitempty"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// QueryHit is one scored result of a similarity query
type QueryHit struct {
	ID        types.EventID `json:"id"`
	Path      string        `json:"path"`
	Text      string        `json:"text"`
	Score     float64       `json:"score"`
	Type      string        `json:"type"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
}

// CompositeText joins the embeddable text of a document: content or title
// first, then tags, then entities. Empty parts contribute nothing, so a
// document with no tags embeds exactly its content.
func CompositeText(body string, tags, entities []string) string {
	parts := make([]string, 0, 3)
	if body != "" {
		parts = append(parts, body)
	}
	if len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " "))
	}
	if len(entities) > 0 {
		parts = append(parts, strings.Join(entities, " "))
	}
	return strings.Join(parts, " ")
}
