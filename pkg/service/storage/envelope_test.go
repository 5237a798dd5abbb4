package storage_test

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	gt.NoError(t, err).Required()
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`{"id":"abc","content":"a quiet morning walk"}`)

	sealed, err := storage.Seal(plaintext, key)
	gt.NoError(t, err).Required()
	gt.Bool(t, storage.IsSealed(sealed)).True()
	gt.Bool(t, bytes.Contains(sealed, []byte("quiet morning"))).False()

	opened, err := storage.Open(sealed, key)
	gt.NoError(t, err).Required()
	gt.Value(t, opened).Equal(plaintext)
}

func TestSealProducesDistinctCiphertext(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("same input")

	first, err := storage.Seal(plaintext, key)
	gt.NoError(t, err).Required()
	second, err := storage.Seal(plaintext, key)
	gt.NoError(t, err).Required()

	// Fresh nonce per seal
	gt.Value(t, first).NotEqual(second)
}

func TestOpenWrongKey(t *testing.T) {
	sealed, err := storage.Seal([]byte("secret"), testKey(t))
	gt.NoError(t, err).Required()

	_, err = storage.Open(sealed, testKey(t))
	gt.Error(t, err).Is(types.ErrDecryptFailed)
}

func TestOpenTamperedCiphertext(t *testing.T) {
	key := testKey(t)
	sealed, err := storage.Seal([]byte("secret"), key)
	gt.NoError(t, err).Required()

	sealed[len(sealed)-1] ^= 0xff
	_, err = storage.Open(sealed, key)
	gt.Error(t, err).Is(types.ErrDecryptFailed)
}

func TestOpenTruncatedHeader(t *testing.T) {
	_, err := storage.Open([]byte("MH"), testKey(t))
	gt.Error(t, err).Is(types.ErrCorruptData)
}

func TestChunkedRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := make([]byte, 300)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	sealed, err := storage.SealChunked(plaintext, key, 64)
	gt.NoError(t, err).Required()
	gt.Bool(t, storage.IsSealed(sealed)).True()

	opened, err := storage.Open(sealed, key)
	gt.NoError(t, err).Required()
	gt.Value(t, opened).Equal(plaintext)
}

func TestChunkedStreamRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := bytes.Repeat([]byte("episodic memory "), 1000)

	sealed, err := storage.SealChunked(plaintext, key, 512)
	gt.NoError(t, err).Required()

	var out bytes.Buffer
	gt.NoError(t, storage.OpenStream(bytes.NewReader(sealed), &out, key)).Required()
	gt.Value(t, out.Bytes()).Equal(plaintext)
}

func TestChunkedRejectsReorderedChunks(t *testing.T) {
	key := testKey(t)
	plaintext := make([]byte, 128)

	sealed, err := storage.SealChunked(plaintext, key, 64)
	gt.NoError(t, err).Required()

	// Swap the two chunk frames. Frame layout after the 17-byte prefix
	// (magic, format, chunk size, chunk count): [len ‖ nonce ‖ ct], each
	// 64-byte plaintext chunk producing an identical frame size.
	const prefix = 17
	frameLen := (len(sealed) - prefix) / 2
	swapped := append([]byte(nil), sealed[:prefix]...)
	swapped = append(swapped, sealed[prefix+frameLen:]...)
	swapped = append(swapped, sealed[prefix:prefix+frameLen]...)

	_, err = storage.Open(swapped, key)
	gt.Error(t, err).Is(types.ErrDecryptFailed)
}

func TestChunkedRejectsTruncation(t *testing.T) {
	key := testKey(t)
	sealed, err := storage.SealChunked(make([]byte, 200), key, 64)
	gt.NoError(t, err).Required()

	_, err = storage.Open(sealed[:len(sealed)-10], key)
	gt.Error(t, err).Is(types.ErrCorruptData)
}

func TestChunkedRejectsDroppedTrailingChunk(t *testing.T) {
	key := testKey(t)
	sealed, err := storage.SealChunked(make([]byte, 200), key, 64)
	gt.NoError(t, err).Required()

	// Walk the first three frames to find where the final frame starts,
	// then cut exactly there: every earlier frame stays intact.
	const prefix = 17
	offset := prefix
	for range 3 {
		frameLen := int(binary.BigEndian.Uint32(sealed[offset : offset+4]))
		offset += 4 + 12 + frameLen
	}
	gt.Bool(t, offset < len(sealed)).True()

	_, err = storage.Open(sealed[:offset], key)
	gt.Error(t, err).Is(types.ErrCorruptData)
}

func TestChunkedRejectsTrailingGarbage(t *testing.T) {
	key := testKey(t)
	sealed, err := storage.SealChunked(make([]byte, 200), key, 64)
	gt.NoError(t, err).Required()

	_, err = storage.Open(append(sealed, 0x00), key)
	gt.Error(t, err).Is(types.ErrCorruptData)
}

func TestSealSwitchesToChunkedAboveThreshold(t *testing.T) {
	key := testKey(t)
	plaintext := make([]byte, storage.ChunkThreshold+1)

	sealed, err := storage.Seal(plaintext, key)
	gt.NoError(t, err).Required()

	opened, err := storage.Open(sealed, key)
	gt.NoError(t, err).Required()
	gt.Value(t, opened).Equal(plaintext)
}
