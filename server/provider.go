package server

import (
	"context"

	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(New),
)

// Lifecycle starts the server with the application and shuts it down on stop.
var Lifecycle = fx.Invoke(func(lc fx.Lifecycle, srv *Server, logger *logging.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
})
