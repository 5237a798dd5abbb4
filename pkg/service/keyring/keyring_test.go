package keyring_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
)

func TestDerive(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key1, err := keyring.Derive("correct horse battery staple", salt)
	gt.NoError(t, err).Required()
	gt.Number(t, len(key1)).Equal(32)

	// Same passphrase and salt derive the same key
	key2, err := keyring.Derive("correct horse battery staple", salt)
	gt.NoError(t, err).Required()
	gt.Value(t, key2).Equal(key1)

	// Different salt derives a different key
	key3, err := keyring.Derive("correct horse battery staple", []byte("fedcba9876543210"))
	gt.NoError(t, err).Required()
	gt.Value(t, key3).NotEqual(key1)
}

func TestDeriveRejectsEmptyInput(t *testing.T) {
	_, err := keyring.Derive("", []byte("salt"))
	gt.Error(t, err)

	_, err = keyring.Derive("passphrase", nil)
	gt.Error(t, err)
}

func TestCacheUnlockAndLock(t *testing.T) {
	cache := keyring.NewCache()
	key := []byte("an example 32-byte aes key......")

	gt.Bool(t, cache.IsUnlocked("greg")).False()

	cache.Unlock("greg", key, 0)
	gt.Bool(t, cache.IsUnlocked("greg")).True()
	gt.Bool(t, cache.IsUnlocked("other")).False()

	got, ok := cache.Key("greg")
	gt.Bool(t, ok).True()
	gt.Value(t, got).Equal(key)

	cache.Lock("greg")
	gt.Bool(t, cache.IsUnlocked("greg")).False()
	_, ok = cache.Key("greg")
	gt.Bool(t, ok).False()
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := keyring.NewCache()
	cache.Unlock("greg", []byte("key"), 10*time.Millisecond)

	gt.Bool(t, cache.IsUnlocked("greg")).True()

	time.Sleep(20 * time.Millisecond)
	gt.Bool(t, cache.IsUnlocked("greg")).False()
}

func TestCacheReturnsCopy(t *testing.T) {
	cache := keyring.NewCache()
	cache.Unlock("greg", []byte("original"), 0)

	got, ok := cache.Key("greg")
	gt.Bool(t, ok).True()
	got[0] = 'X'

	again, ok := cache.Key("greg")
	gt.Bool(t, ok).True()
	gt.Value(t, string(again)).Equal("original")
}
