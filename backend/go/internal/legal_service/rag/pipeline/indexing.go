package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/loaders"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
)

var (
	// ErrDocumentNotFound means the file to ingest does not exist.
	ErrDocumentNotFound = loaders.ErrDocumentNotFound
	// ErrEmptyCorpus means no segment survived the length filter.
	ErrEmptyCorpus = errors.New("nothing to index")
)

// IngestResult reports what an ingestion did. For not_found and empty_corpus the
// index is untouched and Err holds the matching sentinel.
type IngestResult struct {
	DocumentID      string
	SegmentsIndexed int
	Status          models.IndexStatus
	Err             error
}

// IndexingPipeline loads a document, cuts it into segments and writes them to the
// shared vector index in a single batch.
type IndexingPipeline struct {
	loader   interfaces.Loader
	splitter interfaces.Splitter
	index    interfaces.VectorIndex
	log      *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(loader interfaces.Loader, splitter interfaces.Splitter, index interfaces.VectorIndex, log *logger.Logger) *IndexingPipeline {
	return &IndexingPipeline{loader: loader, splitter: splitter, index: index, log: log}
}

// Ingest indexes the file at path under documentID.
//
// A missing file and a document with no usable text are ordinary outcomes: they come
// back as a result with a nil error. Loader and index failures return an error and
// leave the index without a partial batch.
func (p *IndexingPipeline) Ingest(ctx context.Context, path, documentID string) (IngestResult, error) {
	result := IngestResult{DocumentID: documentID}
	log := p.log.WithPayload(map[string]interface{}{"document_id": documentID, "path": path})

	pages, err := p.loader.Load(ctx, path)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			log.Warn("document file not found, nothing indexed")
			result.Status, result.Err = models.IndexNotFound, err
			return result, nil
		}
		log.WithError(models.NewErrorInfo("load_error", err)).Error("failed to extract document text")
		result.Status, result.Err = models.IndexFailed, err
		return result, fmt.Errorf("load %s: %w", path, err)
	}

	var text strings.Builder
	for _, page := range pages {
		text.WriteString(page.Text)
	}

	chunks := p.splitter.Split(text.String())
	if len(chunks) == 0 {
		log.Warn("no segments survived filtering, nothing indexed")
		result.Status, result.Err = models.IndexEmptyCorpus, ErrEmptyCorpus
		return result, nil
	}

	segments := make([]schema.Segment, len(chunks))
	for i, chunk := range chunks {
		segments[i] = schema.Segment{
			ID:         schema.SegmentID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       chunk,
		}
	}

	if err := p.index.Upsert(ctx, segments); err != nil {
		log.WithError(models.NewErrorInfo("index_error", err)).Error("failed to write segments to the vector index")
		result.Status, result.Err = models.IndexFailed, err
		return result, fmt.Errorf("index document %s: %w", documentID, err)
	}

	result.Status, result.SegmentsIndexed = models.IndexIndexed, len(segments)
	log.Info(fmt.Sprintf("indexed %d segments from %d pages", len(segments), len(pages)))
	return result, nil
}
