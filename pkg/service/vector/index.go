package vector

import (
	"context"
	"encoding/json"
	"errors"
	"path"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// artifactRef addresses the single index file for a (profile, model) pair.
// The artifact lives under state, not cache: it is derived data, but
// expensive enough to survive cache clearing.
func artifactRef(username, indexModel string) model.PathRef {
	return model.PathRef{
		Username: username,
		Category: types.CategoryState,
		RelPath:  path.Join("vector-index", model.Slugify(indexModel)+".json"),
	}
}

// loadIndex reads and parses the whole artifact. A missing file is
// ErrIndexNotFound so callers can build on demand; a present but unparsable
// file is ErrCorruptIndex, deliberately distinct so data loss is visible
// instead of looking like a fresh profile.
func (s *Service) loadIndex(ctx context.Context, username, indexModel string) (*model.VectorIndex, error) {
	data, err := s.router.Read(ctx, artifactRef(username, indexModel))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(types.ErrIndexNotFound, "no index built yet",
				goerr.V("username", username),
				goerr.V("model", indexModel))
		}
		return nil, err
	}

	var idx model.VectorIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, goerr.Wrap(types.ErrCorruptIndex, "index artifact is unparsable",
			goerr.V("username", username),
			goerr.V("model", indexModel))
	}
	return &idx, nil
}

// saveIndex rewrites the whole artifact. The router's write is atomic
// (temp file plus rename), so readers never see a partial index.
func (s *Service) saveIndex(ctx context.Context, username, indexModel string, idx *model.VectorIndex) error {
	idx.Meta.Items = len(idx.Data)

	data, err := json.Marshal(idx)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal index artifact")
	}
	if _, err := s.router.Write(ctx, artifactRef(username, indexModel), data); err != nil {
		return err
	}
	return nil
}
