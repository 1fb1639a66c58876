package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
)

var (
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrNoModelAvailable is returned by Select when no candidate could be initialized.
	ErrNoModelAvailable = errors.New("no generation model available")
)

// LLM is a stateless text generator: one prompt in, one answer out.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Model is the identifier of the underlying model.
	Model() string
}

// Prober is implemented by clients that can check a model identifier
// without generating anything.
type Prober interface {
	Probe(ctx context.Context) error
}

// Factory builds a client for one model identifier.
type Factory func(ctx context.Context, model string) (LLM, error)

// NewFactory returns the Factory for the provider configured in cfg.
func NewFactory(cfg config.LLMConfig) (Factory, error) {
	switch cfg.Provider {
	case "gemini":
		return func(ctx context.Context, model string) (LLM, error) {
			return NewGemini(ctx, model, cfg.Gemini.APIKey)
		}, nil
	case "ollama":
		return func(ctx context.Context, model string) (LLM, error) {
			return NewOllama(model, cfg.Ollama.BaseURL)
		}, nil
	case "openai":
		return func(ctx context.Context, model string) (LLM, error) {
			return NewOpenAI(model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
