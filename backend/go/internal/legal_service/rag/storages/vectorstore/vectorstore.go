package vectorstore

import (
	"context"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	milvusdb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/milvus"
	qdrantdb "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/qdrant"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/embedding"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
)

// New builds the VectorIndex selected by cfg.VectorStore.Provider.
func New(ctx context.Context, cfg *config.AppConfig, embedder embedding.Embedding, log *logger.Logger) (interfaces.VectorIndex, error) {
	vs := cfg.VectorStore
	switch vs.Provider {
	case "chromem":
		return NewChromemStore(vs.Path, vs.Collection, vs.Compress, embedder, log)
	case "milvus":
		mc, err := milvusdb.GetClient(ctx, &cfg.Databases.Milvus)
		if err != nil {
			return nil, err
		}
		if err := mc.EnsureCollection(ctx, vs.Collection); err != nil {
			return nil, err
		}
		return NewMilvusStore(mc, vs.Collection, embedder, log)
	case "qdrant":
		qc, err := qdrantdb.GetClient(&cfg.Databases.Qdrant)
		if err != nil {
			return nil, err
		}
		return NewQdrantStore(qc, vs.Collection, embedder, log), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", vs.Provider)
	}
}

func embedTexts(ctx context.Context, embedder embedding.Embedding, segments []schema.Segment) ([][]float32, error) {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d segments: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding returned %d vectors for %d segments", len(vectors), len(texts))
	}
	return vectors, nil
}
