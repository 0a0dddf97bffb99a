package cookie

import (
	"github.com/tech-arch1tect/rememberme/config"
	"go.uber.org/fx"
)

func ProvideManager(cfg *config.Config) (*Manager, error) {
	return New(cfg.Cookie.Secrets)
}

var Module = fx.Options(
	fx.Provide(ProvideManager),
)
