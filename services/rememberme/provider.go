package rememberme

import (
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/cookie"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"go.uber.org/fx"
)

func ProvideService(users *user.Service, cookies *cookie.Manager, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(users, cookies, cfg, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideService),
)
