package vectorstore

import (
	"context"
	"fmt"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/embedding"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/philippgille/chromem-go"
)

// ChromemStore is the default VectorIndex: an embedded, optionally persistent
// collection that needs no external server.
type ChromemStore struct {
	log        *logger.Logger
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedding
}

// NewChromemStore opens (or creates) the collection name in the database persisted
// at path. An empty path keeps everything in memory.
func NewChromemStore(path, name string, compress bool, embedder embedding.Embedding, log *logger.Logger) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db at %s: %w", path, err)
		}
	}

	metadata := map[string]string{"hnsw:space": "cosine"}
	collection, err := db.GetOrCreateCollection(name, metadata, chromem.EmbeddingFunc(embedder.Embed))
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	return &ChromemStore{log: log, db: db, collection: collection, embedder: embedder}, nil
}

// Upsert embeds all segments in one batch call and adds them together.
func (s *ChromemStore) Upsert(ctx context.Context, segments []schema.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	vectors, err := embedTexts(ctx, s.embedder, segments)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(segments))
	for i, seg := range segments {
		docs[i] = chromem.Document{
			ID:        seg.ID,
			Content:   seg.Text,
			Embedding: vectors[i],
			Metadata:  map[string]string{schema.MetadataKeyDocumentID: seg.DocumentID},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add %d segments to chromem: %w", len(docs), err)
	}
	s.log.Debug(fmt.Sprintf("upserted %d segments into chromem collection %s", len(docs), s.collection.Name))
	return nil
}

// Query clamps topK to the collection size, since chromem rejects larger requests.
func (s *ChromemStore) Query(ctx context.Context, text string, topK int) ([]schema.Match, error) {
	n := min(topK, s.collection.Count())
	if n <= 0 {
		return []schema.Match{}, nil
	}
	results, err := s.collection.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query chromem: %w", err)
	}
	matches := make([]schema.Match, len(results))
	for i, r := range results {
		matches[i] = schema.Match{ID: r.ID, Text: r.Content, Score: r.Similarity}
	}
	return matches, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *ChromemStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete from chromem: %w", err)
	}
	return nil
}

var _ interfaces.VectorIndex = (*ChromemStore)(nil)
