package currentuser

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"go.uber.org/zap"
)

const authRequiredMessage = "authentication required"

type Resolver interface {
	CurrentUser(c echo.Context) (auth.Outcome, error)
}

type Config struct {
	Resolver Resolver
	Logger   *logging.Service

	// SkipPaths are served without resolving a user.
	SkipPaths []string
}

// Middleware resolves the request's user through the session and the login
// sources and binds it to the context. An unauthenticated request continues
// without a user; a resolver fault ends it with 500.
func Middleware(cfg Config) echo.MiddlewareFunc {
	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Resolver == nil || skipMap[c.Request().URL.Path] {
				return next(c)
			}

			outcome, err := cfg.Resolver.CurrentUser(c)
			if err != nil {
				cfg.Logger.Error("failed to resolve current user",
					zap.String("path", c.Request().URL.Path),
					zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
			}

			if outcome.Authenticated() {
				auth.SetCurrentUser(c, outcome.User)
			}
			return next(c)
		}
	}
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.CurrentUser(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, authRequiredMessage)
			}
			return next(c)
		}
	}
}
