package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/embedding"
)

// Embedding holds configuration for the embedding providers
type Embedding struct {
	provider      string
	model         string
	ollamaBaseURL string
	ollamaTimeout time.Duration

	geminiProject  string
	geminiLocation string
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embed-provider",
			Usage:       "Default embedding provider (mock, ollama, gemini)",
			Value:       "mock",
			Sources:     cli.EnvVars("MNEMO_EMBED_PROVIDER"),
			Destination: &e.provider,
		},
		&cli.StringFlag{
			Name:        "embed-model",
			Usage:       "Default embedding model name",
			Value:       "mock-256",
			Sources:     cli.EnvVars("MNEMO_EMBED_MODEL"),
			Destination: &e.model,
		},
		&cli.StringFlag{
			Name:        "ollama-base-url",
			Usage:       "Base URL of a local Ollama embedding service",
			Sources:     cli.EnvVars("MNEMO_OLLAMA_BASE_URL"),
			Destination: &e.ollamaBaseURL,
		},
		&cli.DurationFlag{
			Name:        "ollama-timeout",
			Usage:       "Per-request timeout for the Ollama provider",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("MNEMO_OLLAMA_TIMEOUT"),
			Destination: &e.ollamaTimeout,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for the Gemini embedding provider",
			Sources:     cli.EnvVars("MNEMO_GEMINI_PROJECT"),
			Destination: &e.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for the Gemini embedding provider",
			Value:       "us-central1",
			Sources:     cli.EnvVars("MNEMO_GEMINI_LOCATION"),
			Destination: &e.geminiLocation,
		},
	}
}

// LogAttrs returns log attributes for the embedding configuration
func (e *Embedding) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", e.provider),
		slog.String("model", e.model),
		slog.String("ollama_base_url", e.ollamaBaseURL),
		slog.String("gemini_project", e.geminiProject),
	}
}

// Provider returns the default provider name
func (e *Embedding) Provider() string {
	return e.provider
}

// Model returns the default model name
func (e *Embedding) Model() string {
	return e.model
}

// Configure builds the embedder factory. The mock provider is always
// available; Ollama and Gemini are enabled only when configured.
func (e *Embedding) Configure(ctx context.Context) (*embedding.Factory, error) {
	var opts []embedding.FactoryOption

	if e.ollamaBaseURL != "" {
		opts = append(opts, embedding.WithOllama(e.ollamaBaseURL,
			embedding.WithTimeout(e.ollamaTimeout)))
	}

	if e.geminiProject != "" {
		client, err := gemini.New(ctx, e.geminiProject, e.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		opts = append(opts, embedding.WithLLM("gemini", client, embedding.DefaultLLMDimension))
	}

	return embedding.NewFactory(opts...), nil
}
