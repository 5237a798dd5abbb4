package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// ResolveProfileRoot resolves the storage root for a profile. An
// unconfigured profile gets the deterministic internal default under the
// data root. A configured external path that is not present on disk either
// fails (fallback "error") or is returned degraded to read-only.
func (r *Router) ResolveProfileRoot(ctx context.Context, username string) (*model.ProfileRoot, error) {
	if username == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "username is required")
	}

	cfg, err := r.profiles.StorageConfig(ctx, username)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve storage config",
			goerr.V("username", username))
	}

	root := &model.ProfileRoot{
		Username:    username,
		Root:        filepath.Join(r.dataRoot, "profiles", username),
		StorageType: types.StorageInternal,
		Encryption:  types.EncryptionNone,
	}
	if cfg == nil {
		return root, nil
	}

	root.Encryption = cfg.Encryption.Normalize()
	if cfg.PhysicalPath == "" {
		return root, nil
	}

	if _, err := os.Stat(cfg.PhysicalPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "failed to check physical path",
				goerr.V("username", username),
				goerr.V("path", cfg.PhysicalPath))
		}

		if cfg.Fallback.Normalize() == types.FallbackError {
			return nil, goerr.Wrap(types.ErrStorageUnavailable,
				"configured storage path is not mounted",
				goerr.V("username", username),
				goerr.V("path", cfg.PhysicalPath))
		}

		// Degraded: keep the configured path visible but reject writes
		root.Root = cfg.PhysicalPath
		root.StorageType = types.StorageExternal
		root.ReadOnly = true
		return root, nil
	}

	root.Root = cfg.PhysicalPath
	root.StorageType = types.StorageExternal
	return root, nil
}

// ResolvePath maps a PathRef to an absolute path under the profile root
func (r *Router) ResolvePath(ctx context.Context, ref model.PathRef) (string, error) {
	root, err := r.ResolveProfileRoot(ctx, ref.Username)
	if err != nil {
		return "", err
	}
	return resolveUnder(root.Root, ref)
}

// resolveUnder joins the category subdirectory, subcategory and relative
// path below root, rejecting anything that would escape it
func resolveUnder(root string, ref model.PathRef) (string, error) {
	if !ref.Category.IsValid() {
		return "", goerr.Wrap(types.ErrUnknownCategory, "cannot resolve path",
			goerr.V("category", string(ref.Category)))
	}

	path := filepath.Join(root, ref.Category.Subdir())
	for _, part := range []string{ref.Subcategory, ref.RelPath} {
		if part == "" {
			continue
		}
		path = filepath.Join(path, filepath.FromSlash(part))
	}

	path = filepath.Clean(path)
	base := filepath.Clean(filepath.Join(root, ref.Category.Subdir()))
	if path != base && !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", goerr.Wrap(types.ErrPathEscapesRoot, "refusing to resolve",
			goerr.V("category", string(ref.Category)),
			goerr.V("subcategory", ref.Subcategory),
			goerr.V("rel_path", ref.RelPath))
	}

	return path, nil
}
