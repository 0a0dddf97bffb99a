package session

import (
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/cookie"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
}

type Options struct {
	Store scs.Store
}

func ProvideSessionManager(cfg *config.Config, opts *Options, db *gorm.DB, logger *logging.Service) (*Manager, error) {
	sessionManager := scs.New()

	var store scs.Store
	var err error

	if opts != nil && opts.Store != nil {
		store = opts.Store
	} else {
		switch cfg.Session.Store {
		case "memory":
			store = NewMemoryStore()
		case "database":
			if db == nil {
				return nil, fmt.Errorf("database store requires database to be enabled")
			}
			store, err = NewDatabaseStore(db)
			if err != nil {
				return nil, fmt.Errorf("failed to create database session store: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
		}
	}

	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Session.MaxAge
	sessionManager.IdleTimeout = cfg.Session.MaxAge
	sessionManager.Cookie.Name = cfg.Session.Name
	sessionManager.Cookie.Path = cfg.Session.Path
	sessionManager.Cookie.Domain = cfg.Session.Domain
	sessionManager.Cookie.Secure = cfg.Session.Secure
	sessionManager.Cookie.HttpOnly = cfg.Session.HttpOnly
	sessionManager.Cookie.SameSite = cookie.ParseSameSite(cfg.Session.SameSite)

	logger.Info("session manager configured",
		zap.String("store", cfg.Session.Store),
		zap.Duration("max_age", cfg.Session.MaxAge))

	return &Manager{
		SessionManager: sessionManager,
		config:         cfg.Session,
	}, nil
}

type managerParams struct {
	fx.In
	Config  *config.Config
	Options *Options         `optional:"true"`
	DB      *gorm.DB         `optional:"true"`
	Logger  *logging.Service `optional:"true"`
}

func provideSessionManagerFx(p managerParams) (*Manager, error) {
	return ProvideSessionManager(p.Config, p.Options, p.DB, p.Logger)
}

var Module = fx.Module("session",
	fx.Provide(provideSessionManagerFx),
)
