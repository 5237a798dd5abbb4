package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors shared across the storage router, the event store and the
// vector index. Worker boundaries map these onto ErrorKind so a remote
// caller can choose its own user-facing message.
var (
	// ErrUnknownCategory: a storage category outside the closed set
	ErrUnknownCategory = goerr.New("unknown storage category")
	// ErrBadRequest: a structurally invalid request (missing fields,
	// unparsable payload)
	ErrBadRequest = goerr.New("malformed request")
	// ErrPathEscapesRoot: a relative path that would resolve outside the
	// profile root
	ErrPathEscapesRoot = goerr.New("path escapes profile root")

	// ErrStorageUnavailable: the profile's storage path cannot be used
	ErrStorageUnavailable = goerr.New("profile storage unavailable")
	// ErrReadOnlyStorage: the profile root is degraded to read-only
	ErrReadOnlyStorage = goerr.New("profile storage is read-only")

	// ErrProfileLocked: a per-file-aes profile with no cached key
	ErrProfileLocked = goerr.New("profile is locked, unlock it first")

	// ErrNotFound: the requested file does not exist
	ErrNotFound = goerr.New("not found")
	// ErrIndexNotFound: no vector index has been built for the
	// (profile, model) pair; callers may build on demand
	ErrIndexNotFound = goerr.New("vector index not found")

	// ErrCorruptData: a file exists but cannot be decoded
	ErrCorruptData = goerr.New("corrupt data")
	// ErrDecryptFailed: an envelope exists but decryption failed (wrong
	// key or tampered ciphertext)
	ErrDecryptFailed = goerr.New("decryption failed")
	// ErrCorruptIndex: the vector index artifact exists but cannot be
	// parsed. Deliberately distinct from ErrIndexNotFound so data loss is
	// visible instead of triggering a silent rebuild.
	ErrCorruptIndex = goerr.New("vector index is corrupt")

	// ErrProvider: the embedding provider call failed
	ErrProvider = goerr.New("embedding provider failure")
	// ErrProviderTimeout: the embedding provider call timed out; the
	// caller may retry, the service itself never does
	ErrProviderTimeout = goerr.New("embedding provider timeout")
)

// ErrorKind is the coarse error class carried across worker boundaries
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindAccess        ErrorKind = "access"
	KindLocked        ErrorKind = "locked_profile"
	KindNotFound      ErrorKind = "not_found"
	KindCorrupt       ErrorKind = "corrupt_data"
	KindProvider      ErrorKind = "provider"
	KindInternal      ErrorKind = "internal"
)

// KindOf classifies an error chain into its taxonomy class. Unrecognized
// errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrBadRequest), errors.Is(err, ErrPathEscapesRoot):
		return KindConfiguration
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrReadOnlyStorage):
		return KindAccess
	case errors.Is(err, ErrProfileLocked):
		return KindLocked
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIndexNotFound):
		return KindNotFound
	case errors.Is(err, ErrCorruptData), errors.Is(err, ErrDecryptFailed), errors.Is(err, ErrCorruptIndex):
		return KindCorrupt
	case errors.Is(err, ErrProvider), errors.Is(err, ErrProviderTimeout):
		return KindProvider
	default:
		return KindInternal
	}
}

// IsRetryableProvider reports whether a provider failure is worth retrying
// by the caller. Timeouts are; everything else is not.
func IsRetryableProvider(err error) bool {
	return errors.Is(err, ErrProviderTimeout)
}
