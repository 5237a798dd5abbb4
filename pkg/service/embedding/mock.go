package embedding

import (
	"context"
	"crypto/sha256"
)

// MockDimension is the vector length of the deterministic mock provider
const MockDimension = 256

// Mock is an in-process embedding provider for offline use. The vector is
// derived purely from a hash of the input text, so identical input always
// produces an identical vector, byte for byte.
type Mock struct {
	model string
}

// NewMock creates a mock embedder reporting the given model name
func NewMock(model string) *Mock {
	if model == "" {
		model = "mock-256"
	}
	return &Mock{model: model}
}

// Name returns the provider name
func (m *Mock) Name() string { return "mock" }

// Model returns the reported model name
func (m *Mock) Model() string { return m.model }

// Embed derives a 256-dimension vector by hash chaining: each 32-byte
// SHA-256 block contributes 32 components, and the next block hashes the
// previous digest. Byte values map linearly onto [-1, 1].
func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, 0, MockDimension)
	digest := sha256.Sum256([]byte(text))

	for len(vector) < MockDimension {
		for _, b := range digest {
			vector = append(vector, float32(b)/127.5-1)
			if len(vector) == MockDimension {
				break
			}
		}
		digest = sha256.Sum256(digest[:])
	}

	return vector, nil
}
