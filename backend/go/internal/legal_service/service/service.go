package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/publisher"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/pipeline"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/storage"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/llm"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"gorm.io/datatypes"
)

var (
	// ErrNotFound is returned for folders and chats that do not exist or belong to someone else.
	ErrNotFound = store.ErrNotFound
	// ErrForbidden is returned when a chat is created in a folder the caller does not own.
	ErrForbidden = errors.New("folder does not exist or access is denied")
	// ErrInvalidInput is returned for empty names, questions or titles.
	ErrInvalidInput = errors.New("invalid input")
)

// Answerer produces the answer for one question. *pipeline.Engine implements it.
type Answerer interface {
	Run(ctx context.Context, question string) pipeline.Result
}

// Ingester indexes one stored file. *pipeline.IndexingPipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, path, documentID string) (pipeline.IngestResult, error)
}

// Options bounds the blocking calls made on behalf of a request.
type Options struct {
	AnswerTimeout time.Duration
	IngestTimeout time.Duration
}

// Service implements folders, chats, questions and law uploads.
type Service struct {
	log       *logger.Logger
	store     *store.Store
	engine    Answerer
	ingester  Ingester
	index     interfaces.VectorIndex
	blobs     storage.BlobStorage
	publisher publisher.Publisher
	selection llm.Selection
	opts      Options
	now       func() time.Time
}

// Deps are the collaborators built once at startup and shared by every request.
type Deps struct {
	Store     *store.Store
	Engine    Answerer
	Ingester  Ingester
	Index     interfaces.VectorIndex
	Blobs     storage.BlobStorage
	Publisher publisher.Publisher
	Selection llm.Selection
}

// New creates a Service. A nil publisher disables ingestion events.
func New(deps Deps, opts Options, log *logger.Logger) *Service {
	pub := deps.Publisher
	if pub == nil {
		pub = publisher.Noop{}
	}
	return &Service{
		log:       log,
		store:     deps.Store,
		engine:    deps.Engine,
		ingester:  deps.Ingester,
		index:     deps.Index,
		blobs:     deps.Blobs,
		publisher: pub,
		selection: deps.Selection,
		opts:      opts,
		now:       time.Now,
	}
}

// CreateFolder creates a folder for userID.
func (s *Service) CreateFolder(ctx context.Context, userID uint, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}
	return s.store.CreateFolder(ctx, userID, name)
}

// ListFolders returns the caller's folders with their chats, newest first.
func (s *Service) ListFolders(ctx context.Context, userID uint) ([]models.Folder, error) {
	return s.store.ListFolders(ctx, userID)
}

// ListFolderChats returns the chats of one folder owned by userID.
func (s *Service) ListFolderChats(ctx context.Context, userID, folderID uint) ([]models.Chat, error) {
	if _, err := s.store.GetFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.store.ListChats(ctx, userID, folderID)
}

// CreateChat opens a new conversation in a folder owned by userID.
func (s *Service) CreateChat(ctx context.Context, userID, folderID uint, name string) (*models.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: chat name is required", ErrInvalidInput)
	}
	if _, err := s.store.GetFolder(ctx, userID, folderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return s.store.CreateChat(ctx, folderID, name)
}

// ListChats returns every chat of userID across folders.
func (s *Service) ListChats(ctx context.Context, userID uint) ([]models.Chat, error) {
	return s.store.ListChats(ctx, userID, 0)
}

// ChatHistory returns the messages of a chat owned by userID, oldest first.
func (s *Service) ChatHistory(ctx context.Context, userID, chatID uint) ([]models.ChatMessage, error) {
	return s.store.ChatHistory(ctx, userID, chatID)
}

// Ask answers question in a chat owned by userID and stores the exchange.
// Answering itself never fails: engine failures are stored as the fallback text.
func (s *Service) Ask(ctx context.Context, userID, chatID uint, question string) (*models.ChatMessage, pipeline.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, pipeline.Result{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	chat, err := s.store.GetChat(ctx, userID, chatID)
	if err != nil {
		return nil, pipeline.Result{}, err
	}

	answerCtx, cancel := withTimeout(ctx, s.opts.AnswerTimeout)
	res := s.engine.Run(answerCtx, question)
	cancel()

	msg := &models.ChatMessage{
		ChatID:    chat.ID,
		Question:  question,
		Answer:    res.Text(),
		Timestamp: s.now(),
	}
	if len(res.Sources) > 0 {
		raw, err := json.Marshal(res.Sources)
		if err != nil {
			return nil, res, err
		}
		msg.Sources = datatypes.JSON(raw)
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, res, fmt.Errorf("store message: %w", err)
	}

	s.log.WithPayload(map[string]interface{}{
		"chat_id": chat.ID,
		"outcome": res.Outcome,
		"failure": res.FailureKind,
		"sources": len(res.Sources),
	}).Info("question answered")
	return msg, res, nil
}

// UploadResult is the stored document together with what ingestion made of it.
type UploadResult struct {
	Document models.DocumentMeta
	Ingest   pipeline.IngestResult
}

// UploadDocument stores a law file, records it and ingests it synchronously.
// NotFound and EmptyCorpus outcomes are reported in the result; a dependency
// failure is returned as an error after the document is marked failed.
func (s *Service) UploadDocument(ctx context.Context, userID uint, title, filename string, r io.Reader, size int64) (*UploadResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	location, err := s.blobs.Save(ctx, filename, r, size)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	doc := models.DocumentMeta{
		Title:        title,
		FilePath:     location,
		UploadedByID: userID,
		IndexStatus:  models.IndexPending,
	}
	if err := s.store.CreateDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	result, ingestErr := s.ingest(ctx, &doc)
	doc.IndexStatus = result.Status
	doc.SegmentsIndexed = result.SegmentsIndexed
	if err := s.store.UpdateDocumentIndex(ctx, doc.ID, doc.IndexStatus, doc.SegmentsIndexed); err != nil {
		return nil, fmt.Errorf("record ingestion status: %w", err)
	}
	s.publish(ctx, &doc)

	return &UploadResult{Document: doc, Ingest: result}, ingestErr
}

// ListDocuments returns every uploaded law.
func (s *Service) ListDocuments(ctx context.Context) ([]models.DocumentMeta, error) {
	return s.store.ListDocuments(ctx)
}

func (s *Service) ingest(ctx context.Context, doc *models.DocumentMeta) (pipeline.IngestResult, error) {
	path, cleanup, err := s.blobs.Resolve(ctx, doc.FilePath)
	if err != nil {
		return pipeline.IngestResult{DocumentID: doc.DocumentIDString(), Status: models.IndexFailed, Err: err},
			fmt.Errorf("resolve upload: %w", err)
	}
	defer cleanup()

	ingestCtx, cancel := withTimeout(ctx, s.opts.IngestTimeout)
	defer cancel()
	result, err := s.ingester.Ingest(ingestCtx, path, doc.DocumentIDString())
	if err != nil {
		result.Status = models.IndexFailed
		return result, fmt.Errorf("ingest document %d: %w", doc.ID, err)
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, doc *models.DocumentMeta) {
	event := models.DocumentIndexedEvent{
		DocumentID:      doc.ID,
		Title:           doc.Title,
		Status:          doc.IndexStatus,
		SegmentsIndexed: doc.SegmentsIndexed,
		UploadedBy:      doc.UploadedByID,
		OccurredAt:      s.now(),
	}
	if err := s.publisher.PublishIndexed(ctx, event); err != nil {
		s.log.WithError(models.NewErrorInfo("publish_error", err)).Warn("failed to publish document event")
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
