package provider

import (
	"context"

	"github.com/paperchat/paperchat/config"
	"github.com/paperchat/paperchat/models"
	anthropic_provider "github.com/paperchat/paperchat/provider/anthropic"
	openai_provider "github.com/paperchat/paperchat/provider/openai"
	voyage_provider "github.com/paperchat/paperchat/provider/voyage"
)

// Generator is the capability interface over chat-model backends. Temperature
// is pinned to zero by every implementation; answers must be reproducible.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder maps text to dense vectors. EmbedDocuments is order-preserving:
// output[i] is the vector for texts[i]. Implementations sub-batch internally
// when the vendor's per-call input cap is exceeded.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// NewGenerator returns the chat backend selected by cfg.Kind. Model falls back
// to the configured default for the kind when unset.
func NewGenerator(cfg models.ProviderConfig, defaults config.ProvidersConfig) (Generator, error) {
	switch cfg.Kind {
	case models.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &models.AuthenticationError{Provider: "openai"}
		}
		model := cfg.Model
		if model == "" {
			model = defaults.OpenAI.CompletionModel
		}
		return openai_provider.NewClient(cfg.APIKey, model, defaults.OpenAI.EmbeddingModel, defaults.OpenAI.Timeout), nil
	case models.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, &models.AuthenticationError{Provider: "anthropic"}
		}
		model := cfg.Model
		if model == "" {
			model = defaults.Anthropic.CompletionModel
		}
		return anthropic_provider.NewClient(cfg.APIKey, model, defaults.Anthropic.Timeout), nil
	default:
		return nil, &models.GenerationError{Message: "unsupported provider kind: " + string(cfg.Kind)}
	}
}

// NewEmbedder returns the embedding backend matching cfg.Kind. The Anthropic
// family has no first-party embedding offering, so it requires the auxiliary
// Voyage key; its absence fails fast before any network call.
func NewEmbedder(cfg models.ProviderConfig, defaults config.ProvidersConfig) (Embedder, error) {
	switch cfg.Kind {
	case models.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &models.AuthenticationError{Provider: "openai"}
		}
		return openai_provider.NewClient(cfg.APIKey, defaults.OpenAI.CompletionModel, defaults.OpenAI.EmbeddingModel, defaults.OpenAI.Timeout), nil
	case models.ProviderAnthropic:
		if cfg.EmbeddingAPIKey == "" {
			return nil, &models.MissingEmbeddingCredentialsError{Kind: cfg.Kind}
		}
		return voyage_provider.NewClient(cfg.EmbeddingAPIKey, defaults.Voyage.EmbeddingModel, defaults.Voyage.Timeout), nil
	default:
		return nil, &models.EmbeddingProviderError{Message: "unsupported provider kind: " + string(cfg.Kind)}
	}
}
