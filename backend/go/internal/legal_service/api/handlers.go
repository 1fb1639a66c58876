package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/service"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	userapi "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/api"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	msgMissingChatOrQuestion = "Nedostaju chat_id ili question"
	msgChatNotFound          = "Razgovor nije pronađen"
	msgFolderForbidden       = "Folder ne postoji ili nemate pristup."
)

// Handler holds the folder, chat and document endpoints.
type Handler struct {
	service        *service.Service
	log            *logger.Logger
	maxUploadBytes int64
}

// NewHandler creates a new Handler. maxUploadBytes <= 0 disables the upload size limit.
func NewHandler(s *service.Service, maxUploadBytes int64, log *logger.Logger) *Handler {
	return &Handler{service: s, log: log, maxUploadBytes: maxUploadBytes}
}

// ID is a numeric identifier accepted both as a JSON number and as a numeric string.
type ID uint

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", data)
	}
	*id = ID(v)
	return nil
}

// CreateFolderRequest is the body of POST /api/folders/.
type CreateFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListFolders handles GET /api/folders/.
func (h *Handler) ListFolders(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	folders, err := h.service.ListFolders(c.Request.Context(), userID)
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

// CreateFolder handles POST /api/folders/.
func (h *Handler) CreateFolder(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	folder, err := h.service.CreateFolder(c.Request.Context(), userID, req.Name)
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// ListFolderChats handles GET /api/folders/:folder_id/chats/.
func (h *Handler) ListFolderChats(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	folderID, err := pathID(c, "folder_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chats, err := h.service.ListFolderChats(c.Request.Context(), userID, folderID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
		return
	}
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CreateChatRequest is the body of POST /api/chats/.
type CreateChatRequest struct {
	Name     string `json:"name" binding:"required"`
	FolderID ID     `json:"folder_id"`
}

// ListChats handles GET /api/chats/.
func (h *Handler) ListChats(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	chats, err := h.service.ListChats(c.Request.Context(), userID)
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CreateChat handles POST /api/chats/.
func (h *Handler) CreateChat(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat, err := h.service.CreateChat(c.Request.Context(), userID, uint(req.FolderID), req.Name)
	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msgFolderForbidden})
		return
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// ChatHistory handles GET /api/chats/:chat_id/history/.
func (h *Handler) ChatHistory(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	chatID, err := pathID(c, "chat_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msgs, err := h.service.ChatHistory(c.Request.Context(), userID, chatID)
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// AskRequest is the body of POST /api/chat/.
type AskRequest struct {
	ChatID   ID     `json:"chat_id"`
	Question string `json:"question"`
}

// Ask handles POST /api/chat/. The answer is always 200 once the chat is found;
// engine failures come back as the fallback text.
func (h *Handler) Ask(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req AskRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil || req.ChatID == 0 || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingChatOrQuestion})
		return
	}

	msg, _, err := h.service.Ask(c.Request.Context(), userID, uint(req.ChatID), req.Question)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgChatNotFound})
		return
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingChatOrQuestion})
		return
	case err != nil:
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": msg.Answer})
}

// Upload handles POST /api/admin/upload/ with a multipart "title" and "file_path".
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := userapi.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	title := c.PostForm("title")
	header, err := c.FormFile("file_path")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_path: " + err.Error()})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	res, err := h.service.UploadDocument(c.Request.Context(), userID, title, header.Filename, file, header.Size)
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, res.Document)
}

// ListDocuments handles GET /api/admin/documents/.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context())
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	report, err := h.service.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) internal(c *gin.Context, err error) {
	h.log.WithError(models.NewErrorInfo("handler_error", err)).Error(c.Request.Method + " " + c.FullPath() + " failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}
