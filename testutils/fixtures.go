package testutils

import (
	"time"

	"github.com/tech-arch1tect/rememberme/config"
	"golang.org/x/crypto/bcrypt"
)

const TestCookieSecret = "test-cookie-secret-that-is-long-enough-0123456789"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Session: config.SessionConfig{
			Store:    "memory",
			Name:     "test_session",
			MaxAge:   time.Hour,
			HttpOnly: true,
			SameSite: "lax",
			Path:     "/",
		},
		Cookie: config.CookieConfig{
			Domain:  "",
			Secrets: []string{TestCookieSecret},
		},
		RememberMe: config.RememberMeConfig{
			Enabled:            true,
			CookieName:         "remember_me_token",
			HttpOnly:           true,
			Secure:             false,
			SameSite:           "lax",
			Expiry:             14 * 24 * time.Hour,
			TokenLength:        32,
			PersistGlobally:    true,
			TokenAttribute:     "remember_me_token",
			ExpiresAtAttribute: "remember_me_token_expires_at",
		},
		Auth: config.AuthConfig{
			MinLength:      8,
			RequireUpper:   true,
			RequireLower:   true,
			RequireNumber:  true,
			RequireSpecial: false,
			BcryptCost:     bcrypt.MinCost,
		},
	}
}

var TestPasswords = struct {
	Valid       string
	TooShort    string
	NoUpper     string
	NoLower     string
	NoNumber    string
	WithSpecial string
}{
	Valid:       "Password123",
	TooShort:    "Pass1",
	NoUpper:     "password123",
	NoLower:     "PASSWORD123",
	NoNumber:    "Password",
	WithSpecial: "Password123!",
}

var TestUsers = struct {
	Alice struct {
		Email    string
		Password string
	}
	Bob struct {
		Email    string
		Password string
	}
}{
	Alice: struct {
		Email    string
		Password string
	}{
		Email:    "alice@example.com",
		Password: "Password123",
	},
	Bob: struct {
		Email    string
		Password string
	}{
		Email:    "bob@example.com",
		Password: "Password456",
	},
}

// Clock is a settable time source for expiry tests.
type Clock struct {
	current time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	return c.current
}

func (c *Clock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
