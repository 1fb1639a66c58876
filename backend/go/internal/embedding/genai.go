package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// batchLimit is the maximum number of contents BatchEmbedContents accepts per call.
const batchLimit = 100

// GoogleModel embeds text with a Gemini embedding model.
type GoogleModel struct {
	model *genai.EmbeddingModel
}

// NewGoogleModel creates a client for modelName authenticated with apiKey.
func NewGoogleModel(ctx context.Context, apiKey, modelName string) (*GoogleModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding: api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleModel{model: client.EmbeddingModel(modelName)}, nil
}

func (m *GoogleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("gemini returned no embedding")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch splits texts into batches of batchLimit.
func (m *GoogleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchLimit {
		end := min(start+batchLimit, len(texts))

		batch := m.model.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}
		res, err := m.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, emb := range res.Embeddings {
			embeddings = append(embeddings, emb.Values)
		}
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(embeddings), len(texts))
	}
	return embeddings, nil
}
