package store

import (
	"context"
	"testing"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/sqlite"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlite.Open(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func TestFolders_ScopedAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older, err := s.CreateFolder(ctx, 1, "Radno pravo")
	require.NoError(t, err)
	newer, err := s.CreateFolder(ctx, 1, "Porodično pravo")
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, 2, "Tuđi folder")
	require.NoError(t, err)

	folders, err := s.ListFolders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, newer.ID, folders[0].ID)
	assert.Equal(t, older.ID, folders[1].ID)

	_, err = s.GetFolder(ctx, 2, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChats_OwnershipThroughFolder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mine, _ := s.CreateFolder(ctx, 1, "moj")
	theirs, _ := s.CreateFolder(ctx, 2, "tuđ")
	chat, err := s.CreateChat(ctx, mine.ID, "Otkaz")
	require.NoError(t, err)
	_, err = s.CreateChat(ctx, theirs.ID, "Nasledstvo")
	require.NoError(t, err)

	got, err := s.GetChat(ctx, 1, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Otkaz", got.Name)

	_, err = s.GetChat(ctx, 2, chat.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListChats(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, chat.ID, all[0].ID)

	inFolder, err := s.ListChats(ctx, 2, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, inFolder)
}

func TestChatHistory_OrderedAndCounted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	folder, _ := s.CreateFolder(ctx, 1, "f")
	chat, _ := s.CreateChat(ctx, folder.ID, "c")
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateMessage(ctx, &models.ChatMessage{ChatID: chat.ID, Question: "drugo", Answer: "b", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.CreateMessage(ctx, &models.ChatMessage{ChatID: chat.ID, Question: "prvo", Answer: "a", Timestamp: base}))

	history, err := s.ChatHistory(ctx, 1, chat.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "prvo", history[0].Question)
	assert.Equal(t, "drugo", history[1].Question)

	foreign, err := s.ChatHistory(ctx, 2, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	folders, err := s.ListFolders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, folders[0].Chats, 1)
	assert.Equal(t, int64(2), folders[0].Chats[0].MessageCount)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := &models.DocumentMeta{Title: "Zakon o radu", FilePath: "laws/zakon.pdf", UploadedByID: 1, IndexStatus: models.IndexPending}
	require.NoError(t, s.CreateDocument(ctx, doc))
	assert.NotZero(t, doc.ID)

	require.NoError(t, s.UpdateDocumentIndex(ctx, doc.ID, models.IndexIndexed, 12))
	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.IndexIndexed, docs[0].IndexStatus)
	assert.Equal(t, 12, docs[0].SegmentsIndexed)

	assert.ErrorIs(t, s.UpdateDocumentIndex(ctx, 999, models.IndexFailed, 0), ErrNotFound)
	assert.NoError(t, s.Ping(ctx))
}
