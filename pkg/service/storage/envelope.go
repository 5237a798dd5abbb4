package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Encrypted files start with a tagged header instead of a filename suffix:
// 4 magic bytes and one format byte. Plain files carry no header and are
// stored as raw bytes, so format detection never depends on the path.
const (
	envelopeMagic = "MHE1"

	formatAES        byte = 0x01
	formatAESChunked byte = 0x02

	headerLen = len(envelopeMagic) + 1
	nonceLen  = 12

	// DefaultChunkSize is the plaintext chunk size of chunked envelopes
	DefaultChunkSize = 1 << 20

	// ChunkThreshold is the payload size above which Seal switches to the
	// chunked container so reads can decrypt as a stream
	ChunkThreshold = 4 << 20
)

// IsSealed reports whether data starts with an envelope header
func IsSealed(data []byte) bool {
	return len(data) >= headerLen && bytes.HasPrefix(data, []byte(envelopeMagic))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid encryption key")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize AES-GCM")
	}
	return gcm, nil
}

// Seal encrypts plaintext into an envelope with the given AES-256 key.
// Payloads above ChunkThreshold use the chunked container.
func Seal(plaintext, key []byte) ([]byte, error) {
	if len(plaintext) > ChunkThreshold {
		return SealChunked(plaintext, key, DefaultChunkSize)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, goerr.Wrap(err, "failed to generate nonce")
	}

	header := append([]byte(envelopeMagic), formatAES)
	ciphertext := gcm.Seal(nil, nonce, plaintext, header)

	out := make([]byte, 0, headerLen+nonceLen+len(ciphertext))
	out = append(out, header...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// SealChunked encrypts plaintext into the chunked container. Each chunk is
// sealed with its index and the total chunk count as additional data, so
// reordering, dropping or truncating chunks fails authentication, including
// clean cuts at a frame boundary.
func SealChunked(plaintext, key []byte, chunkSize int) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	count := uint64((len(plaintext) + chunkSize - 1) / chunkSize)
	if count == 0 {
		count = 1
	}

	var out bytes.Buffer
	out.WriteString(envelopeMagic)
	out.WriteByte(formatAESChunked)

	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(chunkSize))
	out.Write(sizeBuf[:])

	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], count)
	out.Write(countBuf[:])

	var index uint64
	for off := 0; off < len(plaintext) || (off == 0 && len(plaintext) == 0); off += chunkSize {
		end := min(off+chunkSize, len(plaintext))

		nonce := make([]byte, nonceLen)
		if _, err := rand.Read(nonce); err != nil {
			return nil, goerr.Wrap(err, "failed to generate nonce")
		}

		ciphertext := gcm.Seal(nil, nonce, plaintext[off:end], chunkAAD(index, count))

		binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(ciphertext)))
		out.Write(sizeBuf[:])
		out.Write(nonce)
		out.Write(ciphertext)

		index++
		if len(plaintext) == 0 {
			break
		}
	}

	return out.Bytes(), nil
}

// chunkAAD binds a chunk to its position and to the stream length
func chunkAAD(index, count uint64) []byte {
	aad := make([]byte, 16)
	binary.BigEndian.PutUint64(aad[:8], index)
	binary.BigEndian.PutUint64(aad[8:], count)
	return aad
}

// Open decrypts an envelope produced by Seal or SealChunked. Plain data
// without a header is a corrupt-data error: callers decide between plain
// and sealed with IsSealed before opening.
func Open(data, key []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, goerr.Wrap(types.ErrCorruptData, "missing envelope header")
	}

	format := data[headerLen-1]
	body := data[headerLen:]

	switch format {
	case formatAES:
		return openOneShot(data[:headerLen], body, key)

	case formatAESChunked:
		var out bytes.Buffer
		if err := openChunked(bytes.NewReader(body), &out, key); err != nil {
			return nil, err
		}
		return out.Bytes(), nil

	default:
		return nil, goerr.Wrap(types.ErrCorruptData, "unknown envelope format",
			goerr.V("format", format))
	}
}

// OpenStream decrypts an envelope read from r, writing plaintext to w. The
// chunked container decrypts one chunk at a time; the one-shot container is
// buffered.
func OpenStream(r io.Reader, w io.Writer, key []byte) error {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return goerr.Wrap(types.ErrCorruptData, "truncated envelope header")
	}
	if !bytes.HasPrefix(header, []byte(envelopeMagic)) {
		return goerr.Wrap(types.ErrCorruptData, "missing envelope header")
	}

	switch header[headerLen-1] {
	case formatAES:
		body, err := io.ReadAll(r)
		if err != nil {
			return goerr.Wrap(err, "failed to read envelope body")
		}
		plaintext, err := openOneShot(header, body, key)
		if err != nil {
			return err
		}
		_, err = w.Write(plaintext)
		return err

	case formatAESChunked:
		return openChunked(r, w, key)

	default:
		return goerr.Wrap(types.ErrCorruptData, "unknown envelope format",
			goerr.V("format", header[headerLen-1]))
	}
}

func openOneShot(header, body, key []byte) ([]byte, error) {
	if len(body) < nonceLen {
		return nil, goerr.Wrap(types.ErrCorruptData, "truncated envelope body")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, body[:nonceLen], body[nonceLen:], header)
	if err != nil {
		return nil, goerr.Wrap(types.ErrDecryptFailed, "envelope authentication failed")
	}
	return plaintext, nil
}

func openChunked(r io.Reader, w io.Writer, key []byte) error {
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return goerr.Wrap(types.ErrCorruptData, "truncated chunk size header")
	}

	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return goerr.Wrap(types.ErrCorruptData, "truncated chunk count header")
	}
	count := binary.BigEndian.Uint64(countBuf[:])
	if count == 0 {
		return goerr.Wrap(types.ErrCorruptData, "empty chunk count")
	}

	for index := uint64(0); index < count; index++ {
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return goerr.Wrap(types.ErrCorruptData, "missing chunk frame",
				goerr.V("chunk", index), goerr.V("expected", count))
		}
		frameLen := binary.BigEndian.Uint32(sizeBuf[:])

		frame := make([]byte, nonceLen+int(frameLen))
		if _, err := io.ReadFull(r, frame); err != nil {
			return goerr.Wrap(types.ErrCorruptData, "truncated chunk frame",
				goerr.V("chunk", index))
		}

		plaintext, err := gcm.Open(nil, frame[:nonceLen], frame[nonceLen:], chunkAAD(index, count))
		if err != nil {
			return goerr.Wrap(types.ErrDecryptFailed, "chunk authentication failed",
				goerr.V("chunk", index))
		}

		if _, err := w.Write(plaintext); err != nil {
			return goerr.Wrap(err, "failed to write decrypted chunk")
		}
	}

	// The declared count is authenticated by every chunk's AAD, so data
	// past the final frame cannot be a legitimate continuation
	var trailer [1]byte
	if _, err := io.ReadFull(r, trailer[:]); err != io.EOF {
		return goerr.Wrap(types.ErrCorruptData, "trailing data after final chunk")
	}
	return nil
}
