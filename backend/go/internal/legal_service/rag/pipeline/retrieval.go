package pipeline

import (
	"context"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
)

// DefaultTopK is how many segments ground one answer.
const DefaultTopK = 3

// RetrievalPipeline fetches the segments most similar to a question.
type RetrievalPipeline struct {
	index interfaces.VectorIndex
	topK  int
	log   *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline. A non-positive topK uses DefaultTopK.
func NewRetrievalPipeline(index interfaces.VectorIndex, topK int, log *logger.Logger) *RetrievalPipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalPipeline{index: index, topK: topK, log: log}
}

// Run returns at most topK matches in rank order, dropping hits with no text.
func (p *RetrievalPipeline) Run(ctx context.Context, question string) ([]schema.Match, error) {
	matches, err := p.index.Query(ctx, question, p.topK)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}
	if len(matches) > p.topK {
		matches = matches[:p.topK]
	}

	out := make([]schema.Match, 0, len(matches))
	for _, m := range matches {
		if m.Text != "" {
			out = append(out, m)
		}
	}
	p.log.Debug(fmt.Sprintf("retrieved %d segments", len(out)))
	return out, nil
}
