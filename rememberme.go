// Package rememberme is a web application with persistent "remember me"
// login: a signed, long-lived cookie that signs a user back in after the
// session is gone, until the token expires or is revoked.
package rememberme

import (
	"github.com/tech-arch1tect/rememberme/app"
	"github.com/tech-arch1tect/rememberme/config"
	"go.uber.org/fx"
)

type App = app.App

// New builds the application. A nil cfg is loaded from the environment.
func New(cfg *config.Config, opts ...fx.Option) (*App, error) {
	return app.New(cfg, opts...)
}
