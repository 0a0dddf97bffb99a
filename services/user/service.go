package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/zap"
)

var ErrEmailRequired = errors.New("email is required")

type Service struct {
	store  Store
	config config.RememberMeConfig
	logger *logging.Service
	now    func() time.Time
}

func NewService(store Store, cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		store:  store,
		config: cfg.RememberMe,
		logger: logger.Named("user"),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for token expiry.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	u := &User{Email: email, PasswordHash: passwordHash}
	if err := s.store.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrEmailAlreadyTaken) {
			s.logger.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("user created", zap.Uint("user_id", u.ID))
	return u, nil
}

func (s *Service) FindByID(ctx context.Context, id uint) (*User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.FindByEmail(ctx, normalizeEmail(email))
}

func (s *Service) FindByRememberMeToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return s.store.FindByRememberMeToken(ctx, token)
}

func (s *Service) UpdatePasswordHash(ctx context.Context, u *User, passwordHash string) error {
	previous := u.PasswordHash
	u.PasswordHash = passwordHash
	if err := s.store.UpdatePasswordHash(ctx, u); err != nil {
		u.PasswordHash = previous
		return err
	}
	return nil
}

// HasValidRememberMeToken reports whether u holds a token that has not yet expired.
func (s *Service) HasValidRememberMeToken(u *User) bool {
	if u == nil || u.RememberMeToken == nil || u.RememberMeTokenExpiresAt == nil {
		return false
	}
	return s.now().Before(*u.RememberMeTokenExpiresAt)
}

// IssueRememberMeToken stores a token valid for the configured expiry. With
// PersistGlobally a still-valid token keeps its value so other devices
// holding it stay signed in; otherwise a fresh token replaces it.
func (s *Service) IssueRememberMeToken(ctx context.Context, u *User) error {
	token := ""
	if s.config.PersistGlobally && s.HasValidRememberMeToken(u) {
		token = *u.RememberMeToken
	} else {
		generated, err := s.generateToken()
		if err != nil {
			return err
		}
		token = generated
	}

	if err := s.storeToken(ctx, u, token); err != nil {
		return err
	}

	s.logger.Info("remember me token issued",
		zap.Uint("user_id", u.ID),
		zap.Time("expires_at", *u.RememberMeTokenExpiresAt))
	return nil
}

// ExtendRememberMeToken pushes the expiry of the current token forward
// without changing its value. A user without a valid token gets a new one.
func (s *Service) ExtendRememberMeToken(ctx context.Context, u *User) error {
	if !s.HasValidRememberMeToken(u) {
		return s.IssueRememberMeToken(ctx, u)
	}

	if err := s.storeToken(ctx, u, *u.RememberMeToken); err != nil {
		return err
	}

	s.logger.Debug("remember me token extended",
		zap.Uint("user_id", u.ID),
		zap.Time("expires_at", *u.RememberMeTokenExpiresAt))
	return nil
}

// ClearRememberMeToken removes the stored token. The write always happens,
// since u may predate a token issued elsewhere.
func (s *Service) ClearRememberMeToken(ctx context.Context, u *User) error {
	cleared := *u
	cleared.RememberMeToken = nil
	cleared.RememberMeTokenExpiresAt = nil
	if err := s.store.UpdateRememberMeToken(ctx, &cleared); err != nil {
		s.logger.Error("failed to clear remember me token", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}

	u.RememberMeToken = nil
	u.RememberMeTokenExpiresAt = nil
	s.logger.Info("remember me token cleared", zap.Uint("user_id", u.ID))
	return nil
}

func (s *Service) storeToken(ctx context.Context, u *User, token string) error {
	expiresAt := s.now().Add(s.config.Expiry)

	updated := *u
	updated.RememberMeToken = &token
	updated.RememberMeTokenExpiresAt = &expiresAt
	if err := s.store.UpdateRememberMeToken(ctx, &updated); err != nil {
		s.logger.Error("failed to store remember me token", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}

	u.RememberMeToken = updated.RememberMeToken
	u.RememberMeTokenExpiresAt = updated.RememberMeTokenExpiresAt
	return nil
}

func (s *Service) generateToken() (string, error) {
	bytes := make([]byte, s.config.TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
