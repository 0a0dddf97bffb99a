package app

import (
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/cookie"
	"github.com/tech-arch1tect/rememberme/database"
	"github.com/tech-arch1tect/rememberme/handlers"
	"github.com/tech-arch1tect/rememberme/middleware/currentuser"
	"github.com/tech-arch1tect/rememberme/server"
	"github.com/tech-arch1tect/rememberme/services/audit"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/rememberme"
	"github.com/tech-arch1tect/rememberme/services/user"
	"github.com/tech-arch1tect/rememberme/session"
	"go.uber.org/fx"
)

func modules(cfg *config.Config) []fx.Option {
	return []fx.Option{
		config.NewProvider(cfg),
		logging.Module,
		fx.Supply(database.WithModels(&user.User{}, &audit.LoginEvent{})),
		database.Module,
		cookie.Module,
		session.Module,
		user.Module,
		auth.Module,
		rememberme.Module,
		audit.Module,
		server.Module,
		handlers.Module,
		fx.Provide(provideRememberSource, provideCoordinator),
		fx.Invoke(registerRoutes),
		server.Lifecycle,
	}
}

func provideRememberSource(service *rememberme.Service, auditService *audit.Service, logger *logging.Service) *rememberme.Source {
	return rememberme.NewSource(service, []rememberme.AfterLoginHook{auditService.AfterRememberLogin}, logger)
}

// provideCoordinator fixes the order in which login sources are tried and
// logout hooks run.
func provideCoordinator(users *user.Service, passwords *auth.Passwords, rememberService *rememberme.Service, source *rememberme.Source, logger *logging.Service) *auth.Coordinator {
	return auth.NewCoordinator(
		users,
		passwords,
		rememberService,
		[]auth.LoginSource{source},
		[]auth.LogoutHook{rememberService},
		logger,
	)
}

func registerRoutes(srv *server.Server, sessions *session.Manager, coordinator *auth.Coordinator, h *handlers.Handler, logger *logging.Service) {
	srv.Use(session.Middleware(sessions))
	srv.Use(currentuser.Middleware(currentuser.Config{
		Resolver:  coordinator,
		Logger:    logger,
		SkipPaths: []string{server.HealthPath},
	}))
	h.Routes(srv.Echo())
}
