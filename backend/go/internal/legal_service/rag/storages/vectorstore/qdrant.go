package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/embedding"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore keeps segments as Qdrant points. Qdrant only accepts integer or UUID
// point ids, so each point is keyed by a UUIDv5 of the segment id and the segment id
// itself is kept in the payload.
type QdrantStore struct {
	log        *logger.Logger
	client     *qdrant.Client
	collection string
	embedder   embedding.Embedding

	mu    sync.Mutex
	ready bool
}

// NewQdrantStore creates a store. The collection is created on the first upsert,
// once the vector size is known.
func NewQdrantStore(client *qdrant.Client, collection string, embedder embedding.Embedding, log *logger.Logger) *QdrantStore {
	return &QdrantStore{log: log, client: client, collection: collection, embedder: embedder}
}

// PointID maps a segment id to its stable Qdrant point id.
func PointID(segmentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(segmentID)).String()
}

func (s *QdrantStore) Upsert(ctx context.Context, segments []schema.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	vectors, err := embedTexts(ctx, s.embedder, segments)
	if err != nil {
		return err
	}
	if err := s.ensureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(segments))
	for i, seg := range segments {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(PointID(seg.ID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				schema.MetadataKeySegmentID:  seg.ID,
				schema.MetadataKeyDocumentID: seg.DocumentID,
				schema.MetadataKeyText:       seg.Text,
			}),
		}
	}
	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upsert into Qdrant: %w", err)
	}
	s.log.Debug(fmt.Sprintf("upserted %d points into Qdrant collection %s", len(points), s.collection))
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, text string, topK int) ([]schema.Match, error) {
	if topK <= 0 {
		return []schema.Match{}, nil
	}
	exists, err := s.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []schema.Match{}, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query Qdrant: %w", err)
	}

	matches := make([]schema.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, schema.Match{
			ID:    p.Payload[schema.MetadataKeySegmentID].GetStringValue(),
			Text:  p.Payload[schema.MetadataKeyText].GetStringValue(),
			Score: p.Score,
		})
	}
	return matches, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exists, err := s.exists(ctx)
	if err != nil || !exists {
		return 0, err
	}
	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection, Exact: &exact})
	if err != nil {
		return 0, fmt.Errorf("count Qdrant points: %w", err)
	}
	return int(n), nil
}

func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(PointID(id))
	}
	wait := true
	if _, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	}); err != nil {
		return fmt.Errorf("delete from Qdrant: %w", err)
	}
	return nil
}

func (s *QdrantStore) exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return true, nil
	}
	ok, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, fmt.Errorf("check Qdrant collection %s: %w", s.collection, err)
	}
	s.ready = ok
	return ok, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, size uint64) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     size,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create Qdrant collection %s: %w", s.collection, err)
	}
	s.ready = true
	s.log.Info(fmt.Sprintf("created Qdrant collection %s with %d dimensions", s.collection, size))
	return nil
}

var _ interfaces.VectorIndex = (*QdrantStore)(nil)
