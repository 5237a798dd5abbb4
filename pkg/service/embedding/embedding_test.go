package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/embedding"
)

func TestMockDeterminism(t *testing.T) {
	ctx := context.Background()
	mock := embedding.NewMock("")

	first, err := mock.Embed(ctx, "the lighthouse keeper")
	gt.NoError(t, err).Required()
	gt.Array(t, first).Length(embedding.MockDimension)

	second, err := mock.Embed(ctx, "the lighthouse keeper")
	gt.NoError(t, err).Required()
	gt.Value(t, second).Equal(first)

	other, err := mock.Embed(ctx, "the lighthouse keeper.")
	gt.NoError(t, err).Required()
	gt.Value(t, other).NotEqual(first)
}

func TestMockValueRange(t *testing.T) {
	ctx := context.Background()
	vector, err := embedding.NewMock("").Embed(ctx, "bounds check")
	gt.NoError(t, err).Required()

	for _, v := range vector {
		gt.Bool(t, v >= -1 && v <= 1).True()
	}
}

func TestOllamaEmbed(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{0.1, 0.2, 0.3},
		}))
	}))
	defer server.Close()

	provider := embedding.NewOllama(server.URL, "nomic-embed-text")
	vector, err := provider.Embed(context.Background(), "hello")
	gt.NoError(t, err).Required()

	gt.Value(t, gotPath).Equal("/api/embeddings")
	gt.Value(t, gotBody["model"]).Equal("nomic-embed-text")
	gt.Value(t, gotBody["prompt"]).Equal("hello")
	gt.Array(t, vector).Length(3)
}

func TestOllamaServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := embedding.NewOllama(server.URL, "m").Embed(context.Background(), "x")
	gt.Error(t, err).Is(types.ErrProvider)
	gt.Bool(t, types.IsRetryableProvider(err)).False()
}

func TestOllamaTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	provider := embedding.NewOllama(server.URL, "m",
		embedding.WithTimeout(20*time.Millisecond))
	_, err := provider.Embed(context.Background(), "x")
	gt.Error(t, err).Is(types.ErrProviderTimeout)
	gt.Bool(t, types.IsRetryableProvider(err)).True()
}

func TestOllamaEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}}))
	}))
	defer server.Close()

	_, err := embedding.NewOllama(server.URL, "m").Embed(context.Background(), "x")
	gt.Error(t, err).Is(types.ErrProvider)
}

func TestFactory(t *testing.T) {
	factory := embedding.NewFactory(embedding.WithOllama("http://localhost:11434"))

	mock, err := factory.Embedder("mock", "")
	gt.NoError(t, err).Required()
	gt.Value(t, mock.Name()).Equal("mock")

	ollama, err := factory.Embedder("ollama", "nomic-embed-text")
	gt.NoError(t, err).Required()
	gt.Value(t, ollama.Name()).Equal("ollama")
	gt.Value(t, ollama.Model()).Equal("nomic-embed-text")

	_, err = factory.Embedder("gemini", "text-embedding-004")
	gt.Error(t, err).Is(types.ErrBadRequest)
}

func TestFactoryWithoutOllama(t *testing.T) {
	factory := embedding.NewFactory()
	_, err := factory.Embedder("ollama", "m")
	gt.Error(t, err).Is(types.ErrBadRequest)
}
