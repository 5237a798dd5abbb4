package interfaces

import (
	"context"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
)

// StorageRouter resolves logical storage locations to absolute paths under a
// profile root and applies the profile's encryption policy on I/O. It holds
// no state; the profile configuration is resolved once per call.
type StorageRouter interface {
	// ResolveProfileRoot resolves the storage root for a profile,
	// applying the fallback behavior when a configured external path is
	// unavailable
	ResolveProfileRoot(ctx context.Context, username string) (*model.ProfileRoot, error)

	// ResolvePath maps a PathRef to an absolute path under the profile
	// root. Paths escaping the root are rejected.
	ResolvePath(ctx context.Context, ref model.PathRef) (string, error)

	// Write stores data at the referenced location, sealing it when the
	// profile uses per-file encryption. Every call emits an audit record.
	Write(ctx context.Context, ref model.PathRef, data []byte) (*model.WriteResult, error)

	// Read loads and transparently decrypts the referenced file
	Read(ctx context.Context, ref model.PathRef) ([]byte, error)

	// Delete removes the referenced file; deleting a missing file is a
	// no-op success
	Delete(ctx context.Context, ref model.PathRef) error

	// Exists reports whether the referenced file is present
	Exists(ctx context.Context, ref model.PathRef) (bool, error)

	// List returns the file names directly under the referenced
	// directory, non-recursively
	List(ctx context.Context, ref model.PathRef) ([]string, error)

	// Status reports the resolved root, encryption policy and unlock
	// state of a profile
	Status(ctx context.Context, username string) (*model.StorageStatus, error)
}

// ProfileSource resolves the storage configuration of a profile. An unknown
// profile resolves to (nil, nil): the router then applies its internal
// default root with no encryption.
type ProfileSource interface {
	StorageConfig(ctx context.Context, username string) (*model.StorageProfile, error)
}
