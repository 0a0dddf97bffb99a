package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/rememberme/config"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyTaken = errors.New("email is already registered")
)

// Store persists users. FindBy* methods return ErrUserNotFound when nothing
// matches; any other error is a storage fault.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRememberMeToken(ctx context.Context, token string) (*User, error)
	UpdateRememberMeToken(ctx context.Context, u *User) error
	UpdatePasswordHash(ctx context.Context, u *User) error
}

type gormStore struct {
	db              *gorm.DB
	tokenColumn     string
	expiresAtColumn string
}

// NewGormStore reads and writes the remember-me fields through the column
// names configured in cfg, which Validate has already restricted to plain
// identifiers.
func NewGormStore(db *gorm.DB, cfg config.RememberMeConfig) Store {
	return &gormStore{
		db:              db,
		tokenColumn:     cfg.TokenAttribute,
		expiresAtColumn: cfg.ExpiresAtAttribute,
	}
}

func (s *gormStore) selectColumns() string {
	return "id, email, password_hash, created_at, updated_at, " +
		s.tokenColumn + " AS remember_me_token, " +
		s.expiresAtColumn + " AS remember_me_token_expires_at"
}

func (s *gormStore) findOne(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Model(&User{}).
		Select(s.selectColumns()).
		Where(query, args...).
		Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) Create(ctx context.Context, u *User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailAlreadyTaken
	}

	if err := s.db.WithContext(ctx).Omit("RememberMeToken", "RememberMeTokenExpiresAt").Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *gormStore) FindByID(ctx context.Context, id uint) (*User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *gormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *gormStore) FindByRememberMeToken(ctx context.Context, token string) (*User, error) {
	return s.findOne(ctx, s.tokenColumn+" = ?", token)
}

func (s *gormStore) UpdateRememberMeToken(ctx context.Context, u *User) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			s.tokenColumn:     u.RememberMeToken,
			s.expiresAtColumn: u.RememberMeTokenExpiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update remember me token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *gormStore) UpdatePasswordHash(ctx context.Context, u *User) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", u.ID).
		Update("password_hash", u.PasswordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
