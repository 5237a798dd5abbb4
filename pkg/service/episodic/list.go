package episodic

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// List walks the event tree and returns file descriptors sorted by
// modification time, newest first. Timestamp is deliberately the
// filesystem mtime rather than the event's own timestamp field: listing
// never decrypts anything, and recently touched files surface first. The
// optional date range filters on that same mtime.
func (s *Store) List(ctx context.Context, username string, filter interfaces.ListFilter) ([]model.EventFile, error) {
	root, err := s.router.ResolvePath(ctx, model.PathRef{
		Username: username,
		Category: types.CategoryMemory,
	})
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	files := []model.EventFile{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return fs.SkipAll
			}
			logger.Debug("skipping unreadable entry", "path", path, "error", walkErr)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		category := strings.Split(filepath.ToSlash(rel), "/")[0]
		if filter.Category != "" && category != filter.Category.String() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Debug("skipping unstattable event", "path", path, "error", err)
			return nil
		}
		if !filter.Range.Contains(info.ModTime()) {
			return nil
		}

		files = append(files, model.EventFile{
			Path:      filepath.ToSlash(rel),
			Timestamp: info.ModTime(),
			Type:      category,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Timestamp.After(files[j].Timestamp)
	})
	return files, nil
}
