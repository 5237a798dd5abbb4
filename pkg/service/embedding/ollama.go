package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// DefaultOllamaTimeout bounds one embedding call. The provider never
// retries; a timeout is surfaced as a retryable provider failure for the
// caller to act on.
const DefaultOllamaTimeout = 30 * time.Second

// Ollama calls a local Ollama-compatible embedding service over HTTP
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// OllamaOption configures the Ollama provider
type OllamaOption func(*Ollama)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) OllamaOption {
	return func(o *Ollama) {
		o.client.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		o.client = c
	}
}

// NewOllama creates a provider for the embedding endpoint at baseURL
func NewOllama(baseURL, model string, opts ...OllamaOption) *Ollama {
	o := &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: DefaultOllamaTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the provider name
func (o *Ollama) Name() string { return "ollama" }

// Model returns the embedding model name
func (o *Ollama) Model() string { return o.model }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed posts the text to /api/embeddings and returns the vector. Failures
// propagate unmodified apart from classification; there is no retry here.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, goerr.Wrap(types.ErrProviderTimeout, "embedding call timed out",
				goerr.V("base_url", o.baseURL),
				goerr.V("model", o.model))
		}
		return nil, goerr.Wrap(types.ErrProvider, "embedding call failed",
			goerr.V("base_url", o.baseURL),
			goerr.V("model", o.model),
			goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.Wrap(types.ErrProvider, "embedding service returned an error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(payload)))
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(types.ErrProvider, "unparsable embedding response",
			goerr.V("cause", err.Error()))
	}
	if len(parsed.Embedding) == 0 {
		return nil, goerr.Wrap(types.ErrProvider, "embedding response is empty")
	}

	return parsed.Embedding, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
