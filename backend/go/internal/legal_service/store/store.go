package store

import (
	"context"
	"errors"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist or is not owned by the caller.
var ErrNotFound = errors.New("record not found")

// Store is the data access layer for folders, chats, messages and law documents.
// Every read of user data is scoped by the owning user id.
type Store struct {
	db *gorm.DB
}

// New creates a new Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables this store uses.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Folder{}, &models.Chat{}, &models.ChatMessage{}, &models.DocumentMeta{})
}

// CreateFolder creates a folder owned by userID.
func (s *Store) CreateFolder(ctx context.Context, userID uint, name string) (*models.Folder, error) {
	folder := &models.Folder{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(folder).Error; err != nil {
		return nil, err
	}
	folder.Chats = []models.Chat{}
	return folder, nil
}

// ListFolders returns the folders of userID, newest first, with their chats.
func (s *Store) ListFolders(ctx context.Context, userID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Preload("Chats", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	var chats []*models.Chat
	for i := range folders {
		for j := range folders[i].Chats {
			chats = append(chats, &folders[i].Chats[j])
		}
	}
	if err := s.fillMessageCounts(ctx, chats); err != nil {
		return nil, err
	}
	return folders, nil
}

// GetFolder returns the folder if it belongs to userID.
func (s *Store) GetFolder(ctx context.Context, userID, folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &folder, nil
}

// CreateChat creates a chat in folderID. Ownership of the folder is checked by the caller.
func (s *Store) CreateChat(ctx context.Context, folderID uint, name string) (*models.Chat, error) {
	chat := &models.Chat{FolderID: folderID, Name: name}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats returns the chats of userID across all folders. A non-zero folderID
// restricts the list to that folder.
func (s *Store) ListChats(ctx context.Context, userID, folderID uint) ([]models.Chat, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN folders ON folders.id = chats.folder_id").
		Where("folders.user_id = ?", userID)
	if folderID != 0 {
		q = q.Where("chats.folder_id = ?", folderID)
	}

	var chats []models.Chat
	if err := q.Order("chats.created_at DESC, chats.id DESC").Find(&chats).Error; err != nil {
		return nil, err
	}
	ptrs := make([]*models.Chat, len(chats))
	for i := range chats {
		ptrs[i] = &chats[i]
	}
	if err := s.fillMessageCounts(ctx, ptrs); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChat returns the chat if its folder belongs to userID.
func (s *Store) GetChat(ctx context.Context, userID, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.WithContext(ctx).
		Joins("JOIN folders ON folders.id = chats.folder_id").
		Where("chats.id = ? AND folders.user_id = ?", chatID, userID).
		First(&chat).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// ChatHistory returns the messages of a chat owned by userID, oldest first.
// A chat the user does not own yields an empty history.
func (s *Store) ChatHistory(ctx context.Context, userID, chatID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Joins("JOIN chats ON chats.id = chat_messages.chat_id").
		Joins("JOIN folders ON folders.id = chats.folder_id").
		Where("chat_messages.chat_id = ? AND folders.user_id = ?", chatID, userID).
		Order("chat_messages.timestamp ASC, chat_messages.id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// CreateMessage stores one question and its answer.
func (s *Store) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// CreateDocument stores the metadata of an uploaded law.
func (s *Store) CreateDocument(ctx context.Context, doc *models.DocumentMeta) error {
	return s.db.WithContext(ctx).Create(doc).Error
}

// UpdateDocumentIndex records the ingestion outcome of a document.
func (s *Store) UpdateDocumentIndex(ctx context.Context, docID uint, status models.IndexStatus, segments int) error {
	res := s.db.WithContext(ctx).Model(&models.DocumentMeta{}).
		Where("id = ?", docID).
		Updates(map[string]interface{}{"index_status": status, "segments_indexed": segments})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDocuments returns every uploaded law, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]models.DocumentMeta, error) {
	var docs []models.DocumentMeta
	if err := s.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

func (s *Store) fillMessageCounts(ctx context.Context, chats []*models.Chat) error {
	if len(chats) == 0 {
		return nil
	}
	ids := make([]uint, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}

	var rows []struct {
		ChatID uint
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Select("chat_id, COUNT(*) AS count").
		Where("chat_id IN ?", ids).
		Group("chat_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ChatID] = r.Count
	}
	for _, c := range chats {
		c.MessageCount = counts[c.ID]
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
