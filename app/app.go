package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/server"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

// New assembles the application. A nil cfg is loaded from the environment.
// Extra options are appended after the built-in modules.
func New(cfg *config.Config, opts ...fx.Option) (*App, error) {
	a := &App{}

	options := append(modules(cfg),
		fx.NopLogger,
		fx.Populate(&a.config, &a.logger, &a.db, &a.server),
	)
	options = append(options, opts...)

	a.fx = fx.New(options...)
	if err := a.fx.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
	}
}

// Echo exposes the HTTP handler, also for serving requests in tests
// without starting the listener.
func (a *App) Echo() *echo.Echo {
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}
