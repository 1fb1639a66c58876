package interfaces

import (
	"context"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
)

// Loader extracts the text of a source file page by page.
type Loader interface {
	Load(ctx context.Context, path string) ([]schema.Page, error)
}

// Splitter cuts a text buffer into segments, in document order.
type Splitter interface {
	Split(text string) []string
}

// VectorIndex is the shared, persistent collection of segments.
// Implementations embed the text themselves and must be safe for concurrent use.
type VectorIndex interface {
	// Upsert writes all segments as one batch. Existing ids are overwritten.
	Upsert(ctx context.Context, segments []schema.Segment) error
	// Query returns at most topK segments ranked by similarity to text, best first.
	// An empty index yields an empty slice and no error.
	Query(ctx context.Context, text string, topK int) ([]schema.Match, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, ids []string) error
}

// LLM generates an answer for a fully assembled prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
