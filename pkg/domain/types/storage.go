package types

import "fmt"

// EncryptionType is the at-rest encryption policy of a profile
type EncryptionType string

const (
	// EncryptionNone stores plaintext files
	EncryptionNone EncryptionType = "none"
	// EncryptionPerFileAES seals every file into an AES-256-GCM envelope;
	// requires the profile to be unlocked for both reads and writes
	EncryptionPerFileAES EncryptionType = "per-file-aes"
	// EncryptionVolume relies on a transparently encrypted volume; file
	// I/O itself is plaintext from the router's point of view
	EncryptionVolume EncryptionType = "volume"
)

// IsValid checks if the encryption type is valid
func (e EncryptionType) IsValid() bool {
	switch e {
	case EncryptionNone, EncryptionPerFileAES, EncryptionVolume:
		return true
	default:
		return false
	}
}

// Normalize returns the encryption type, treating empty as EncryptionNone
func (e EncryptionType) Normalize() EncryptionType {
	if e == "" {
		return EncryptionNone
	}
	return e
}

// String returns the string representation of the encryption type
func (e EncryptionType) String() string {
	return string(e)
}

// ParseEncryptionType parses a string into an EncryptionType
func ParseEncryptionType(s string) (EncryptionType, error) {
	e := EncryptionType(s).Normalize()
	if !e.IsValid() {
		return "", fmt.Errorf("invalid encryption type: %s", s)
	}
	return e, nil
}

// FallbackBehavior decides what happens when a profile's configured external
// path is not available (not mounted, renamed, dead disk)
type FallbackBehavior string

const (
	// FallbackError fails the request outright
	FallbackError FallbackBehavior = "error"
	// FallbackReadOnly keeps the configured path but degrades the profile
	// to read-only until the path is reachable again
	FallbackReadOnly FallbackBehavior = "readonly"
)

// IsValid checks if the fallback behavior is valid
func (f FallbackBehavior) IsValid() bool {
	switch f {
	case FallbackError, FallbackReadOnly:
		return true
	default:
		return false
	}
}

// Normalize returns the fallback behavior, treating empty as FallbackError
func (f FallbackBehavior) Normalize() FallbackBehavior {
	if f == "" {
		return FallbackError
	}
	return f
}

// String returns the string representation of the fallback behavior
func (f FallbackBehavior) String() string {
	return string(f)
}

// StorageType reports which root a resolved path lives under
type StorageType string

const (
	// StorageInternal is the deterministic default root under the data dir
	StorageInternal StorageType = "internal"
	// StorageExternal is a profile-configured physical path
	StorageExternal StorageType = "external"
)

// String returns the string representation of the storage type
func (s StorageType) String() string {
	return string(s)
}

// EnvelopeFormat tags the on-disk container format of a stored file. The
// format is carried in the file header, never inferred from the file name.
type EnvelopeFormat string

const (
	// EnvelopePlain is a raw file with no envelope header
	EnvelopePlain EnvelopeFormat = "plain"
	// EnvelopeAES is a whole-file AES-256-GCM container
	EnvelopeAES EnvelopeFormat = "aes"
	// EnvelopeAESChunked is a framed AES-256-GCM container for large
	// payloads that need streaming decryption
	EnvelopeAESChunked EnvelopeFormat = "aes-chunked"
)

// String returns the string representation of the envelope format
func (f EnvelopeFormat) String() string {
	return string(f)
}
