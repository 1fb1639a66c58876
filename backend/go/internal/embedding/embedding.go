package embedding

import (
	"context"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
)

// NewFromConfig builds the embedding model selected by cfg.Provider.
func NewFromConfig(ctx context.Context, cfg config.EmbeddingConfig) (Embedding, error) {
	switch ModelType(cfg.Provider) {
	case Google:
		return NewGoogleModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case OpenAI:
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	case Ollama:
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
