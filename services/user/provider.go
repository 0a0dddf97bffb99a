package user

import (
	"github.com/tech-arch1tect/rememberme/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(db *gorm.DB, cfg *config.Config) Store {
	return NewGormStore(db, cfg.RememberMe)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(NewService),
)
