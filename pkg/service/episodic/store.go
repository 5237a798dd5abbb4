package episodic

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
)

// Store persists immutable episodic events, one JSON file per event, under
// the router's memory category. Encryption policy is entirely the router's
// concern; the store only composes paths and documents.
type Store struct {
	router *storage.Router
}

// New creates an event store on top of the storage router
func New(router *storage.Router) *Store {
	return &Store{router: router}
}

// eventRef addresses an event file below the memory category
func eventRef(username, relPath string) model.PathRef {
	return model.PathRef{
		Username: username,
		Category: types.CategoryMemory,
		RelPath:  relPath,
	}
}

// Write classifies the event, assigns id and timestamp, and persists it.
// The category is bound at write time and never recomputed for existing
// files. Returns the event and its path relative to the event root.
func (s *Store) Write(ctx context.Context, username string, input interfaces.EventInput) (*model.Event, string, error) {
	if input.Content == "" {
		return nil, "", goerr.Wrap(types.ErrBadRequest, "event content is required")
	}

	event := &model.Event{
		ID:        types.NewEventID(),
		Timestamp: time.Now().UTC(),
		Content:   input.Content,
		Type:      input.Type,
		Tags:      input.Tags,
		Entities:  input.Entities,
		Metadata:  input.Metadata,
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	if event.Entities == nil {
		event.Entities = []string{}
	}

	category := model.Classify(input.Type, input.Tags)
	relPath := path.Join(
		category.String(),
		fmt.Sprintf("%04d", event.Timestamp.Year()),
		fmt.Sprintf("%02d", event.Timestamp.Month()),
		fmt.Sprintf("%02d", event.Timestamp.Day()),
		fmt.Sprintf("%s-%s.json", event.ID, model.Slugify(input.Content)),
	)

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to marshal event")
	}

	if _, err := s.router.Write(ctx, eventRef(username, relPath), data); err != nil {
		return nil, "", err
	}
	return event, relPath, nil
}

// Read loads one event by its path relative to the event root. The router
// decides from the file content whether decryption is needed. A present but
// undecodable event surfaces as corrupt data, unlike bulk operations which
// skip it.
func (s *Store) Read(ctx context.Context, username, relPath string) (*model.Event, error) {
	data, err := s.router.Read(ctx, eventRef(username, relPath))
	if err != nil {
		return nil, err
	}

	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, goerr.Wrap(types.ErrCorruptData, "event file is not valid JSON",
			goerr.V("path", relPath))
	}
	return &event, nil
}
