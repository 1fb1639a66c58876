package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/sqlite"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/loaders"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/pipeline"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/splitters"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/storages/vectorstore"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/service"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/storage"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/llm"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	userapi "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/api"
	userservice "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/service"
	userstore "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v, nil
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / math.Sqrt(norm))
	}
	return v, nil
}

func (e letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

type scriptedLLM struct {
	answer  string
	err     error
	prompts []string
}

func (m *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

func (m *scriptedLLM) Model() string { return "test-model" }

type env struct {
	router *gin.Engine
	users  *userservice.Service
	model  *scriptedLLM
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logger.Discard()

	db, err := sqlite.Open(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	us := userstore.NewStore(db)
	require.NoError(t, us.Migrate())
	ls := store.New(db)
	require.NoError(t, ls.Migrate())

	users := userservice.NewService(us, "secret", time.Hour, 24*time.Hour)
	_, err = users.EnsureAdmin(ctx, "admin", "admin@example.rs", "admin-lozinka")
	require.NoError(t, err)

	index, err := vectorstore.NewChromemStore("", "zakoni", false, letterEmbedder{}, log)
	require.NoError(t, err)
	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	model := &scriptedLLM{answer: "Prema zakonu, imate pravo na godišnji odmor."}

	svc := service.New(service.Deps{
		Store:     ls,
		Engine:    pipeline.NewEngine(index, model, pipeline.DefaultTopK, log),
		Ingester:  pipeline.NewIndexingPipeline(loaders.NewRegistry(), splitters.NewFixedSplitter(0, -1), index, log),
		Index:     index,
		Blobs:     blobs,
		Selection: llm.Selection{Model: "test-model"},
	}, service.Options{AnswerTimeout: time.Minute, IngestTimeout: time.Minute}, log)

	r := gin.New()
	api := r.Group("/api")
	userapi.RegisterRoutes(api, userapi.NewHandler(users))
	RegisterRoutes(api, NewHandler(svc, 1<<20, log), userapi.AuthMiddleware(users), userapi.AdminOnly())
	RegisterHealth(r, NewHandler(svc, 0, log))
	return &env{router: r, users: users, model: model}
}

func (e *env) token(t *testing.T, username, password string) string {
	t.Helper()
	res, err := e.users.Login(context.Background(), username, password)
	require.NoError(t, err)
	return res.Access
}

func (e *env) citizen(t *testing.T, username string) string {
	t.Helper()
	_, err := e.users.Register(context.Background(), username, username+"@example.rs", "lozinka123")
	require.NoError(t, err)
	return e.token(t, username, "lozinka123")
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) upload(t *testing.T, token, title, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	fw, err := mw.CreateFormFile("file_path", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createChat(t *testing.T, e *env, token string) uint {
	t.Helper()
	w := e.do(http.MethodPost, "/api/folders/", token, gin.H{"name": "Radno pravo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	folder := decode[models.Folder](t, w)

	w = e.do(http.MethodPost, "/api/chats/", token, gin.H{"name": "Odmor", "folder_id": folder.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Chat](t, w).ID
}

const lawText = "Član 68. Zaposleni ima pravo na godišnji odmor u svakoj kalendarskoj godini " +
	"u trajanju utvrđenom opštim aktom i ugovorom o radu, a najmanje 20 radnih dana."

func TestUploadThenAsk(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin", "admin-lozinka")

	w := e.upload(t, admin, "Zakon o radu", "zakon.txt", lawText)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[models.DocumentMeta](t, w)
	assert.Equal(t, models.IndexIndexed, doc.IndexStatus)
	assert.Equal(t, 1, doc.SegmentsIndexed)

	user := e.citizen(t, "milica")
	chatID := createChat(t, e, user)

	w = e.do(http.MethodPost, "/api/chat/", user, gin.H{"chat_id": chatID, "question": "Koliko traje godišnji odmor?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Prema zakonu, imate pravo na godišnji odmor.", decode[map[string]string](t, w)["answer"])
	require.Len(t, e.model.prompts, 1)
	assert.Contains(t, e.model.prompts[0], "KONTEKST: "+lawText)

	w = e.do(http.MethodGet, "/api/chats/"+itoa(chatID)+"/history/", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.ChatMessage](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, "Koliko traje godišnji odmor?", history[0].Question)

	w = e.do(http.MethodGet, "/api/folders/", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	folders := decode[[]models.Folder](t, w)
	require.Len(t, folders, 1)
	require.Len(t, folders[0].Chats, 1)
	assert.Equal(t, int64(1), folders[0].Chats[0].MessageCount)
}

func TestAsk_EmptyIndexReturnsNoInfo(t *testing.T) {
	e := newEnv(t)
	user := e.citizen(t, "jovan")
	chatID := createChat(t, e, user)

	w := e.do(http.MethodPost, "/api/chat/", user, gin.H{"chat_id": chatID, "question": "Šta kaže zakon?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pipeline.NoInfoMessage, decode[map[string]string](t, w)["answer"])
	assert.Empty(t, e.model.prompts)
}

func TestAsk_ModelFailureReturnsFallback(t *testing.T) {
	e := newEnv(t)
	e.model.err = errors.New("quota exceeded")
	admin := e.token(t, "admin", "admin-lozinka")
	require.Equal(t, http.StatusCreated, e.upload(t, admin, "Zakon o radu", "zakon.txt", lawText).Code)

	user := e.citizen(t, "ana")
	chatID := createChat(t, e, user)

	w := e.do(http.MethodPost, "/api/chat/", user, gin.H{"chat_id": itoa(chatID), "question": "Godišnji odmor?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pipeline.FallbackMessage, decode[map[string]string](t, w)["answer"])
}

func TestAsk_Validation(t *testing.T) {
	e := newEnv(t)
	user := e.citizen(t, "petar")
	other := e.citizen(t, "marko")
	chatID := createChat(t, e, other)

	tests := []struct {
		name string
		body gin.H
		code int
		msg  string
	}{
		{"missing question", gin.H{"chat_id": chatID}, http.StatusBadRequest, msgMissingChatOrQuestion},
		{"missing chat", gin.H{"question": "Pitanje?"}, http.StatusBadRequest, msgMissingChatOrQuestion},
		{"blank question", gin.H{"chat_id": chatID, "question": "   "}, http.StatusBadRequest, msgMissingChatOrQuestion},
		{"foreign chat", gin.H{"chat_id": chatID, "question": "Pitanje?"}, http.StatusNotFound, msgChatNotFound},
		{"unknown chat", gin.H{"chat_id": 9999, "question": "Pitanje?"}, http.StatusNotFound, msgChatNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/chat/", user, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.msg, decode[map[string]string](t, w)["error"])
		})
	}
	assert.Empty(t, e.model.prompts)
}

func TestChats_Ownership(t *testing.T) {
	e := newEnv(t)
	owner := e.citizen(t, "vesna")
	intruder := e.citizen(t, "goran")

	w := e.do(http.MethodPost, "/api/folders/", owner, gin.H{"name": "Nasledstvo"})
	require.Equal(t, http.StatusCreated, w.Code)
	folder := decode[models.Folder](t, w)

	w = e.do(http.MethodPost, "/api/chats/", intruder, gin.H{"name": "Upad", "folder_id": folder.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, msgFolderForbidden, decode[map[string]string](t, w)["error"])

	w = e.do(http.MethodGet, "/api/folders/"+itoa(folder.ID)+"/chats/", intruder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/chats/", intruder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Chat](t, w))
}

func TestUpload_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	user := e.citizen(t, "citizen")

	w := e.upload(t, user, "Zakon", "zakon.txt", lawText)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/folders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload_EmptyCorpus(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin", "admin-lozinka")

	w := e.upload(t, admin, "Kratko", "kratko.txt", "Prekratak tekst.")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.IndexEmptyCorpus, decode[models.DocumentMeta](t, w).IndexStatus)

	w = e.do(http.MethodGet, "/api/admin/documents/", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.DocumentMeta](t, w), 1)
}

func TestUpload_MissingTitle(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "admin", "admin-lozinka")

	w := e.upload(t, admin, "", "zakon.txt", lawText)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[service.HealthReport](t, w)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "test-model", report.Model.Model)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "12", "c": null}`), &v))
	assert.Equal(t, ID(7), v.A)
	assert.Equal(t, ID(12), v.B)
	assert.Equal(t, ID(0), v.C)
	assert.Error(t, json.Unmarshal([]byte(`{"a": "x"}`), &v))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
