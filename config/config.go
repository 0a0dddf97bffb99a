package config

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	MinCookieSecretLength = 32

	DefaultTokenAttribute     = "remember_me_token"
	DefaultExpiresAtAttribute = "remember_me_token_expires_at"
)

var (
	ErrNoCookieSecret          = errors.New("at least one cookie secret is required")
	ErrCookieSecretTooShort    = errors.New("cookie secret is too short")
	ErrInvalidRememberMe       = errors.New("invalid remember me configuration")
	ErrInvalidAttributeName    = errors.New("invalid remember me attribute name")
	ErrUnsupportedSameSite     = errors.New("unsupported same site mode")
	ErrUnsupportedSessionStore = errors.New("unsupported session store")
)

var attributeNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Database   DatabaseConfig   `envPrefix:"DATABASE_"`
	Session    SessionConfig    `envPrefix:"SESSION_"`
	Cookie     CookieConfig     `envPrefix:"COOKIE_"`
	RememberMe RememberMeConfig `envPrefix:"REMEMBER_ME_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"rememberme Application"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"app.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Store    string        `env:"STORE" envDefault:"memory"`
	Name     string        `env:"NAME" envDefault:"session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"24h"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN" envDefault:""`
}

// CookieConfig is shared by every signed cookie the application writes.
// The first secret signs; all of them verify.
type CookieConfig struct {
	Domain  string   `env:"DOMAIN" envDefault:""`
	Secrets []string `env:"SECRETS" envSeparator:","`
}

type RememberMeConfig struct {
	Enabled    bool          `env:"ENABLED" envDefault:"true"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"remember_me_token"`
	HttpOnly   bool          `env:"HTTP_ONLY" envDefault:"true"`
	Secure     bool          `env:"SECURE" envDefault:"false"`
	SameSite   string        `env:"SAME_SITE" envDefault:"lax"`
	Expiry     time.Duration `env:"EXPIRY" envDefault:"336h"`

	// TokenLength is the number of random bytes; the stored token is hex encoded.
	TokenLength int `env:"TOKEN_LENGTH" envDefault:"32"`

	// PersistGlobally keeps one stored token shared by every device. Logging
	// out then only clears the local cookie, and issuing while a valid token
	// exists extends it instead of replacing it.
	PersistGlobally bool `env:"PERSIST_GLOBALLY" envDefault:"true"`

	TokenAttribute     string `env:"TOKEN_ATTRIBUTE" envDefault:"remember_me_token"`
	ExpiresAtAttribute string `env:"EXPIRES_AT_ATTRIBUTE" envDefault:"remember_me_token_expires_at"`
}

type AuthConfig struct {
	MinLength      int  `env:"MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool `env:"REQUIRE_UPPER" envDefault:"true"`
	RequireLower   bool `env:"REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool `env:"REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `env:"REQUIRE_SPECIAL" envDefault:"false"`
	BcryptCost     int  `env:"BCRYPT_COST" envDefault:"10"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if len(c.Cookie.Secrets) == 0 {
		return ErrNoCookieSecret
	}
	for i, secret := range c.Cookie.Secrets {
		if len(secret) < MinCookieSecretLength {
			return fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrCookieSecretTooShort, i, len(secret), MinCookieSecretLength)
		}
	}

	switch c.Session.Store {
	case "memory", "database":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSessionStore, c.Session.Store)
	}

	for _, mode := range []string{c.Session.SameSite, c.RememberMe.SameSite} {
		switch mode {
		case "strict", "lax", "none":
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedSameSite, mode)
		}
	}

	rm := c.RememberMe
	if rm.CookieName == "" {
		return fmt.Errorf("%w: cookie name is empty", ErrInvalidRememberMe)
	}
	if rm.Expiry <= 0 {
		return fmt.Errorf("%w: expiry must be positive, got %s", ErrInvalidRememberMe, rm.Expiry)
	}
	if rm.TokenLength < 16 {
		return fmt.Errorf("%w: token length must be at least 16 bytes, got %d", ErrInvalidRememberMe, rm.TokenLength)
	}
	for _, name := range []string{rm.TokenAttribute, rm.ExpiresAtAttribute} {
		if !attributeNamePattern.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidAttributeName, name)
		}
	}
	if rm.TokenAttribute == rm.ExpiresAtAttribute {
		return fmt.Errorf("%w: token and expiry attributes must differ", ErrInvalidAttributeName)
	}
	// AutoMigrate creates the columns under the default names only.
	customColumns := rm.TokenAttribute != DefaultTokenAttribute || rm.ExpiresAtAttribute != DefaultExpiresAtAttribute
	if customColumns && c.Database.AutoMigrate {
		return fmt.Errorf("%w: custom attribute names need an externally managed schema, disable DATABASE_AUTO_MIGRATE", ErrInvalidAttributeName)
	}

	return nil
}
