package embedding

import "context"

// Embedding turns text into vectors for the vector index.
type Embedding interface {
	// Embed returns the vector of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType names an embedding vendor.
type ModelType string

const (
	Google ModelType = "gemini"
	OpenAI ModelType = "openai"
	Ollama ModelType = "ollama"
)
