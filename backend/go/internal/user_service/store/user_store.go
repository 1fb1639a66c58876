package store

import (
	"context"
	"errors"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found")

// Store wraps every database operation of the user service.
type Store struct {
	DB *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Migrate creates or updates the users table.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(&models.User{})
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

// GetUserByUsername looks a user up by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.first(ctx, "username = ?", username)
}

// GetUserByEmail looks a user up by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

// GetUserByID looks a user up by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

// ExistsByUsernameOrEmail reports whether either value is already taken.
func (s *Store) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

// UpdateUser saves every field of user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *Store) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
