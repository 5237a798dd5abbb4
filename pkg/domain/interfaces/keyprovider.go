package interfaces

// KeyProvider exposes the unlock state of profiles. Lifecycle (unlock,
// lock, TTL) is owned by an external session manager; the storage
// components only consume this read capability and never mutate it.
type KeyProvider interface {
	// IsUnlocked reports whether a symmetric key is cached for the profile
	IsUnlocked(username string) bool

	// Key returns the cached symmetric key, or false when locked
	Key(username string) ([]byte, bool)
}
