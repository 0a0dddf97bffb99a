package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrWeakPassword          = errors.New("password does not meet requirements")
)

type Passwords struct {
	config config.AuthConfig
	logger *logging.Service
}

func NewPasswords(cfg config.AuthConfig, logger *logging.Service) *Passwords {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Passwords{config: cfg, logger: logger.Named("passwords")}
}

func (p *Passwords) Validate(password string) error {
	if len(password) < p.config.MinLength {
		p.logger.Debug("password validation failed: insufficient length",
			zap.Int("length", len(password)),
			zap.Int("min_required", p.config.MinLength))
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, p.config.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var missing []string
	if p.config.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if p.config.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if p.config.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if p.config.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		p.logger.Debug("password validation failed: missing requirements",
			zap.Strings("missing_requirements", missing))
		return fmt.Errorf("%w: must contain at least %s", ErrWeakPassword, strings.Join(missing, ", "))
	}
	return nil
}

// Hash validates password strength before hashing.
func (p *Passwords) Hash(password string) (string, error) {
	if err := p.Validate(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.config.BcryptCost)
	if err != nil {
		p.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (p *Passwords) Verify(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		p.logger.Debug("password verification failed", zap.Error(err))
		return ErrInvalidCredentials
	}
	return nil
}
