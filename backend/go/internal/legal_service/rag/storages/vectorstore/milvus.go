package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/milvus"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/embedding"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// Fields of the Milvus collection. The configured schema must declare them.
	FieldID         = "id"
	FieldDocumentID = "document_id"
	FieldChunk      = "chunk"
	FieldEmbedding  = "embedding"
)

// MilvusStore keeps segments in a Milvus collection, embedding text on the way in
// and out with the configured embedding model.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
	metric     entity.MetricType
	indexType  string
	embedder   embedding.Embedding
}

// NewMilvusStore creates a store on top of the shared Milvus client.
func NewMilvusStore(milvusClient *milvus.MilvusClient, collectionName string, embedder embedding.Embedding, log *logger.Logger) (*MilvusStore, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	metric := entity.MetricType(milvusClient.Config.Schema.Index.MetricType)
	if metric == "" {
		metric = entity.COSINE
	}
	return &MilvusStore{
		log:        log,
		client:     milvusClient.Client,
		collection: collectionName,
		metric:     metric,
		indexType:  milvusClient.Config.Schema.Index.IndexType,
		embedder:   embedder,
	}, nil
}

// Upsert writes all segments as one columnar batch and flushes the collection.
func (s *MilvusStore) Upsert(ctx context.Context, segments []schema.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	vectors, err := embedTexts(ctx, s.embedder, segments)
	if err != nil {
		return err
	}

	ids := make([]string, len(segments))
	docIDs := make([]string, len(segments))
	chunks := make([]string, len(segments))
	for i, seg := range segments {
		ids[i] = seg.ID
		docIDs[i] = seg.DocumentID
		chunks[i] = seg.Text
	}
	dim := len(vectors[0])

	s.log.Info(fmt.Sprintf("upserting %d segments into Milvus collection %s", len(segments), s.collection))
	_, err = s.client.Upsert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldDocumentID, docIDs),
		entity.NewColumnVarChar(FieldChunk, chunks),
		entity.NewColumnFloatVector(FieldEmbedding, dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert into Milvus: %w", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("flush Milvus collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *MilvusStore) Query(ctx context.Context, text string, topK int) ([]schema.Match, error) {
	if topK <= 0 {
		return []schema.Match{}, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	searchParams, err := s.searchParam()
	if err != nil {
		return nil, err
	}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, "", []string{FieldID, FieldChunk},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, s.metric, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("search in Milvus: %w", err)
	}

	matches := []schema.Match{}
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(FieldID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Milvus search result is missing the id field, skipping")
			continue
		}
		chunkCol, ok := findColumn(FieldChunk).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Milvus search result is missing the chunk field, skipping")
			continue
		}
		ids, chunks := idCol.Data(), chunkCol.Data()
		for i := 0; i < res.ResultCount; i++ {
			matches = append(matches, schema.Match{ID: ids[i], Text: chunks[i], Score: res.Scores[i]})
		}
	}
	return matches, nil
}

func (s *MilvusStore) Count(ctx context.Context) (int, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("get Milvus statistics: %w", err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("parse Milvus row count %q: %w", stats["row_count"], err)
	}
	return n, nil
}

func (s *MilvusStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	expr := fmt.Sprintf("%s in [%s]", FieldID, strings.Join(quoted, ","))
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("delete from Milvus: %w", err)
	}
	return nil
}

func (s *MilvusStore) searchParam() (entity.SearchParam, error) {
	switch s.indexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlatSearchParam(10)
	case "HNSW":
		return entity.NewIndexHNSWSearchParam(64)
	default:
		return entity.NewIndexAUTOINDEXSearchParam(1)
	}
}

var _ interfaces.VectorIndex = (*MilvusStore)(nil)
