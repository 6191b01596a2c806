package ai

import (
	"context"
	"fmt"

	"truthtube/shared/config"
)

// Model is a single chat completion backend.
type Model interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// NewModel builds the backend selected by cfg.Provider.
func NewModel(ctx context.Context, cfg *config.AIConfig) (Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.Model)
	case config.ProviderOpenAI:
		return NewOpenAIModel(ctx, cfg.BaseURL, cfg.OpenAIAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
