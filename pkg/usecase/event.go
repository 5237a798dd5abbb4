package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// EventWriteOutput pairs the stored event with its relative path
type EventWriteOutput struct {
	Event *model.Event `json:"event"`
	Path  string       `json:"path"`
}

// WriteEvent stores a new episodic event for the profile
func (uc *UseCases) WriteEvent(ctx context.Context, username string, input interfaces.EventInput) (*EventWriteOutput, error) {
	if username == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "username is required")
	}

	event, relPath, err := uc.events.Write(ctx, username, input)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("event stored",
		"username", username,
		"event_id", event.ID.String(),
		"path", relPath)
	return &EventWriteOutput{Event: event, Path: relPath}, nil
}

// ReadEvent loads one event by its path relative to the event root
func (uc *UseCases) ReadEvent(ctx context.Context, username, relPath string) (*model.Event, error) {
	if relPath == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "path is required")
	}
	return uc.events.Read(ctx, username, relPath)
}

// SearchEvents finds events whose content contains the query text
func (uc *UseCases) SearchEvents(ctx context.Context, username, query string, limit int) ([]*model.Event, error) {
	if query == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "query is required")
	}
	return uc.events.Search(ctx, username, query, limit)
}

// ListEvents returns event file descriptors, newest first
func (uc *UseCases) ListEvents(ctx context.Context, username string, filter interfaces.ListFilter) ([]model.EventFile, error) {
	return uc.events.List(ctx, username, filter)
}
