package audit

import (
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideService),
)
