package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/sqlite"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/service"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := sqlite.Open(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	st := store.NewStore(db)
	require.NoError(t, st.Migrate())
	svc := service.NewService(st, "secret", time.Hour, 24*time.Hour)

	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(svc))
	protected := r.Group("/api", AuthMiddleware(svc))
	protected.GET("/me/", func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	protected.GET("/admin/ping/", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, svc
}

func do(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, username, password string) map[string]interface{} {
	t.Helper()
	w := do(r, http.MethodPost, "/api/login/", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/register/", "", gin.H{"username": "milan", "email": "milan@example.rs", "password": "lozinka123"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/register/", "", gin.H{"username": "milan", "email": "milan@example.rs", "password": "lozinka123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/register/", "", gin.H{"username": "x", "email": "not-an-email", "password": "lozinka123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/login/", "", gin.H{"username": "milan", "password": "pogresna"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body := login(t, r, "milan", "lozinka123")
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "milan", user["username"])
	assert.Equal(t, "Citizen", user["role"])
	assert.Equal(t, "milan@example.rs", user["email"])

	access := body["access"].(string)
	w = do(r, http.MethodGet, "/api/me/", access, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/admin/ping/", access, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/api/token/refresh/", "", gin.H{"refresh": body["refresh"]})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access")
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me/", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me/", "bogus", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me/", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	r, svc := newTestRouter(t)
	_, err := svc.EnsureAdmin(t.Context(), "admin", "admin@example.rs", "adminadmin")
	require.NoError(t, err)

	access := login(t, r, "admin", "adminadmin")["access"].(string)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/api/admin/ping/", access, nil).Code)
}
