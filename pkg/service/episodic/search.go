package episodic

import (
	"context"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// Search walks the event tree depth-first and collects events whose content
// contains query, case-insensitively, stopping once limit matches are
// found. There is no relevance ranking: results come back in walk order.
// Files that cannot be read, decrypted or parsed are skipped so a single
// bad file never aborts the search.
func (s *Store) Search(ctx context.Context, username, query string, limit int) ([]*model.Event, error) {
	root, err := s.router.ResolvePath(ctx, model.PathRef{
		Username: username,
		Category: types.CategoryMemory,
	})
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	needle := strings.ToLower(query)
	logger := logging.From(ctx)
	matches := []*model.Event{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				// No events written yet
				return fs.SkipAll
			}
			logger.Debug("skipping unreadable entry", "path", path, "error", walkErr)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := s.router.ReadResolved(ctx, username, path)
		if err != nil {
			logger.Debug("skipping unreadable event", "path", path, "error", err)
			return nil
		}

		var event model.Event
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Debug("skipping malformed event", "path", path, "error", err)
			return nil
		}

		if strings.Contains(strings.ToLower(event.Content), needle) {
			matches = append(matches, &event)
			if len(matches) >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
