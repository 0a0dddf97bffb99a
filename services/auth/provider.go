package auth

import (
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/fx"
)

func ProvidePasswords(cfg *config.Config, logger *logging.Service) *Passwords {
	return NewPasswords(cfg.Auth, logger)
}

// Module provides Passwords. The Coordinator is assembled by the application
// because its source and hook lists are ordered.
var Module = fx.Options(
	fx.Provide(ProvidePasswords),
)
