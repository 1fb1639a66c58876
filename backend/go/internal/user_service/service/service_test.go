package service

import (
	"context"
	"testing"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/database/sqlite"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	st := store.NewStore(db)
	require.NoError(t, st.Migrate())
	return NewService(st, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	user, err := s.Register(ctx, "marko", "marko@example.rs", "lozinka123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.NotEqual(t, "lozinka123", user.Password)

	_, err = s.Register(ctx, "marko", "drugi@example.rs", "lozinka123")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = s.Register(ctx, "drugi", "marko@example.rs", "lozinka123")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = s.Register(ctx, "ana", "ana@example.rs", "kratka")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	_, err := s.Register(ctx, "jelena", "jelena@example.rs", "lozinka123")
	require.NoError(t, err)

	_, err = s.Login(ctx, "jelena", "pogresna")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nepostojeci", "lozinka123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := s.Login(ctx, "jelena", "lozinka123")
	require.NoError(t, err)
	assert.Equal(t, "jelena", res.User.Username)
	assert.Equal(t, models.RoleCitizen, res.User.Role)

	claims, err := s.VerifyAccessToken(res.Access)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, models.RoleCitizen, claims.Role)

	_, err = s.VerifyAccessToken(res.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "a refresh token must not authenticate requests")
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	_, err := s.EnsureAdmin(ctx, "admin", "admin@example.rs", "adminadmin")
	require.NoError(t, err)
	res, err := s.Login(ctx, "admin", "adminadmin")
	require.NoError(t, err)

	access, err := s.Refresh(ctx, res.Refresh)
	require.NoError(t, err)
	claims, err := s.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = s.Refresh(ctx, res.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	_, err := s.Register(ctx, "petar", "petar@example.rs", "lozinka123")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	res, err := s.Login(ctx, "petar", "lozinka123")
	require.NoError(t, err)

	_, err = s.VerifyAccessToken(res.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	first, err := s.EnsureAdmin(ctx, "admin", "admin@example.rs", "adminadmin")
	require.NoError(t, err)
	second, err := s.EnsureAdmin(ctx, "admin", "admin@example.rs", "adminadmin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsAdmin())
}
