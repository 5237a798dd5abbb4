package keyring

import (
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for passphrase-derived AES-256 keys
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// Derive stretches a passphrase into a 32-byte AES key using scrypt. The
// salt comes from the profile configuration so the same passphrase yields
// the same key across processes.
func Derive(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, goerr.New("passphrase is empty")
	}
	if len(salt) == 0 {
		return nil, goerr.New("key salt is empty")
	}

	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to derive key")
	}
	return key, nil
}

type entry struct {
	key       []byte
	expiresAt time.Time
}

// Cache is the process-wide unlock state, keyed by profile. Unlock and Lock
// are driven by the external caller; the storage components only consume
// IsUnlocked and Key. Entries with a TTL expire lazily on read.
type Cache struct {
	mutex   sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache creates an empty key cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Unlock caches a symmetric key for the profile. A zero ttl means the key
// stays until Lock is called.
func (c *Cache) Unlock(username string, key []byte, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := entry{key: append([]byte(nil), key...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[username] = e
}

// Lock drops the cached key for the profile
func (c *Cache) Lock(username string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, username)
}

// IsUnlocked reports whether a non-expired key is cached for the profile
func (c *Cache) IsUnlocked(username string) bool {
	_, ok := c.Key(username)
	return ok
}

// Key returns the cached key for the profile, dropping it first if the TTL
// has passed
func (c *Cache) Key(username string) ([]byte, bool) {
	c.mutex.RLock()
	e, ok := c.entries[username]
	c.mutex.RUnlock()
	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mutex.Lock()
		// Re-check under the write lock: the entry may have been
		// replaced by a fresh Unlock.
		if cur, still := c.entries[username]; still && !cur.expiresAt.IsZero() && c.now().After(cur.expiresAt) {
			delete(c.entries, username)
		}
		c.mutex.Unlock()
		return nil, false
	}

	return append([]byte(nil), e.key...), true
}
