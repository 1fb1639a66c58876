package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama generates text with a model served by a local Ollama.
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama creates a client; baseURL defaults to http://localhost:11434.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

func (o *Ollama) Model() string {
	return o.model
}

// Probe asks Ollama whether the model has been pulled.
func (o *Ollama) Probe(ctx context.Context) error {
	if _, err := o.client.Show(ctx, &olla.ShowRequest{Model: o.model}); err != nil {
		return fmt.Errorf("ollama model %s unavailable: %w", o.model, err)
	}
	return nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var result string
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		result += resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate content with ollama: %w", err)
	}
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}
