package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/user_service/store"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer   = "legal_assistant_user_service"
	audience = "legal_assistant_clients"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrUserExists         = errors.New("a user with that username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid registration data")
)

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID uint
	Role   models.Role
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    models.UserView `json:"user"`
}

// Service holds the account business logic.
type Service struct {
	store      *store.Store
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(s *store.Store, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		store:      s,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Register creates an account. Public sign-up always yields a citizen; admins are
// created with EnsureAdmin.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.create(ctx, username, email, password, models.RoleCitizen)
}

// EnsureAdmin creates the admin account if no user with that username exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.create(ctx, username, email, password, models.RoleAdmin)
}

func (s *Service) create(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || len(password) < 8 || !role.Valid() {
		return nil, ErrInvalidInput
	}

	exists, err := s.store.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hashed), Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password and issues an access and a refresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	access, err := s.sign(user, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Access: access, Refresh: refresh, User: user.View()}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// The role is re-read so a changed role takes effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", ErrInvalidToken
	}
	return s.sign(user, tokenTypeAccess, s.accessTTL)
}

// VerifyAccessToken returns the identity carried by an access token.
func (s *Service) VerifyAccessToken(token string) (*Claims, error) {
	return s.parse(token, tokenTypeAccess)
}

func (s *Service) sign(user *models.User, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"typ":  typ,
		"iss":  issuer,
		"aud":  audience,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *Service) parse(tokenString, typ string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != typ {
		return nil, ErrInvalidToken
	}
	// JWT numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return &Claims{UserID: uint(sub), Role: models.Role(role)}, nil
}
