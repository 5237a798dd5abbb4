package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/audit"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// Router resolves logical storage locations under per-profile roots and
// applies each profile's encryption policy on reads and writes. It holds no
// state of its own; profile configuration and unlock state are consumed
// per call.
type Router struct {
	dataRoot string
	profiles interfaces.ProfileSource
	keys     interfaces.KeyProvider
	sink     interfaces.AuditSink
}

// Option configures a Router
type Option func(*Router)

// WithAuditSink replaces the default slog audit sink
func WithAuditSink(sink interfaces.AuditSink) Option {
	return func(r *Router) {
		r.sink = sink
	}
}

// New creates a storage router rooted at dataRoot
func New(dataRoot string, profiles interfaces.ProfileSource, keys interfaces.KeyProvider, opts ...Option) *Router {
	r := &Router{
		dataRoot: dataRoot,
		profiles: profiles,
		keys:     keys,
		sink:     audit.NewSlogSink(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) emit(ctx context.Context, op model.AuditOp, ref model.PathRef, path string, n int, st types.StorageType, encrypted bool, failure error) {
	rec := model.NewAuditRecord(op)
	rec.Username = ref.Username
	rec.Category = ref.Category
	rec.Subcategory = ref.Subcategory
	rec.Path = path
	rec.Bytes = n
	rec.StorageType = st
	rec.Encrypted = encrypted
	if failure != nil {
		rec.Error = failure.Error()
	}
	r.sink.Emit(ctx, rec)
}

// Write stores data at the referenced location. Per-file encryption
// requires the profile to be unlocked; a locked profile fails before any
// filesystem mutation. Every call emits exactly one audit record.
func (r *Router) Write(ctx context.Context, ref model.PathRef, data []byte) (*model.WriteResult, error) {
	root, err := r.ResolveProfileRoot(ctx, ref.Username)
	if err != nil {
		r.emit(ctx, model.AuditStorageWriteFailed, ref, "", 0, "", false, err)
		return nil, err
	}

	path, err := resolveUnder(root.Root, ref)
	if err != nil {
		r.emit(ctx, model.AuditStorageWriteFailed, ref, "", 0, root.StorageType, false, err)
		return nil, err
	}

	encrypted := root.Encryption == types.EncryptionPerFileAES
	fail := func(err error) (*model.WriteResult, error) {
		r.emit(ctx, model.AuditStorageWriteFailed, ref, path, 0, root.StorageType, encrypted, err)
		return nil, err
	}

	if root.ReadOnly {
		return fail(goerr.Wrap(types.ErrReadOnlyStorage, "storage is degraded",
			goerr.V("username", ref.Username),
			goerr.V("path", path)))
	}

	payload := data
	if encrypted {
		key, ok := r.keys.Key(ref.Username)
		if !ok {
			return fail(goerr.Wrap(types.ErrProfileLocked, "cannot encrypt",
				goerr.V("username", ref.Username)))
		}
		sealed, err := Seal(data, key)
		if err != nil {
			return fail(goerr.Wrap(err, "failed to seal payload"))
		}
		payload = sealed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail(goerr.Wrap(err, "failed to create directory",
			goerr.V("path", filepath.Dir(path))))
	}

	if err := writeAtomic(path, payload); err != nil {
		return fail(err)
	}

	r.emit(ctx, model.AuditStorageWrite, ref, path, len(payload), root.StorageType, encrypted, nil)
	return &model.WriteResult{
		Path:         path,
		BytesWritten: len(payload),
		StorageType:  root.StorageType,
		Encrypted:    encrypted,
	}, nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so readers never observe a partial file
func writeAtomic(path string, data []byte) error {
	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return goerr.Wrap(err, "failed to generate temp suffix")
	}
	tmp := path + ".tmp-" + hex.EncodeToString(suffix[:])

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to rename into place", goerr.V("path", path))
	}
	return nil
}

// Read loads the referenced file, transparently decrypting sealed content.
// The envelope header decides the format; the path never does.
func (r *Router) Read(ctx context.Context, ref model.PathRef) ([]byte, error) {
	root, err := r.ResolveProfileRoot(ctx, ref.Username)
	if err != nil {
		return nil, err
	}
	path, err := resolveUnder(root.Root, ref)
	if err != nil {
		return nil, err
	}
	return r.readFile(ctx, ref.Username, path)
}

// readFile loads an already-resolved path, used by services that walk
// directories themselves
func (r *Router) readFile(ctx context.Context, username, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(types.ErrNotFound, "no such file",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}

	if !IsSealed(data) {
		return data, nil
	}

	key, ok := r.keys.Key(username)
	if !ok {
		return nil, goerr.Wrap(types.ErrProfileLocked, "cannot decrypt",
			goerr.V("username", username),
			goerr.V("path", path))
	}
	plaintext, err := Open(data, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open envelope", goerr.V("path", path))
	}
	return plaintext, nil
}

// ReadResolved loads and transparently decrypts a path previously produced
// by ResolvePath
func (r *Router) ReadResolved(ctx context.Context, username, path string) ([]byte, error) {
	return r.readFile(ctx, username, path)
}

// Delete removes the referenced file. Deleting a missing file is a no-op
// success; only an effective removal is audited.
func (r *Router) Delete(ctx context.Context, ref model.PathRef) error {
	root, err := r.ResolveProfileRoot(ctx, ref.Username)
	if err != nil {
		return err
	}
	path, err := resolveUnder(root.Root, ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete file", goerr.V("path", path))
	}

	r.emit(ctx, model.AuditStorageDelete, ref, path, 0, root.StorageType,
		root.Encryption == types.EncryptionPerFileAES, nil)
	return nil
}

// Exists reports whether the referenced file is present
func (r *Router) Exists(ctx context.Context, ref model.PathRef) (bool, error) {
	path, err := r.ResolvePath(ctx, ref)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to stat file", goerr.V("path", path))
	}
	return true, nil
}

// List returns the file names directly under the referenced directory. A
// missing directory lists as empty rather than failing.
func (r *Router) List(ctx context.Context, ref model.PathRef) ([]string, error) {
	path, err := r.ResolvePath(ctx, ref)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, goerr.Wrap(err, "failed to list directory", goerr.V("path", path))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Status reports the resolved root, encryption policy and unlock state of a
// profile
func (r *Router) Status(ctx context.Context, username string) (*model.StorageStatus, error) {
	root, err := r.ResolveProfileRoot(ctx, username)
	if err != nil {
		return nil, err
	}

	status := &model.StorageStatus{
		Username:    username,
		Root:        root.Root,
		StorageType: root.StorageType,
		Encryption:  root.Encryption,
		ReadOnly:    root.ReadOnly,
		Unlocked:    true,
	}
	if root.Encryption == types.EncryptionPerFileAES {
		status.Unlocked = r.keys.IsUnlocked(username)
	}

	logging.From(ctx).Debug("storage status",
		"username", username,
		"root", root.Root,
		"encryption", root.Encryption.String(),
		"unlocked", status.Unlocked)
	return status, nil
}
