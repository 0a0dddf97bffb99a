package rememberme

import (
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"github.com/tech-arch1tect/rememberme/session"
	"go.uber.org/zap"
)

const SourceName = "remember_me"

// AfterLoginHook runs after a remember-me login has established a session.
type AfterLoginHook func(c echo.Context, u *user.User)

// Source logs a request in from its remember cookie when it has no session.
type Source struct {
	service *Service
	hooks   []AfterLoginHook
	logger  *logging.Service
}

func NewSource(service *Service, hooks []AfterLoginHook, logger *logging.Service) *Source {
	return &Source{
		service: service,
		hooks:   hooks,
		logger:  logger.Named("remember_me"),
	}
}

func (s *Source) Name() string {
	return SourceName
}

func (s *Source) Attempt(c echo.Context) (auth.Outcome, error) {
	if !s.service.Enabled() {
		return auth.Unauthenticated(), nil
	}

	token, ok := s.service.PresentedToken(c)
	if !ok {
		return auth.Unauthenticated(), nil
	}

	result, err := s.service.Validate(c.Request().Context(), token)
	if err != nil {
		return auth.Unauthenticated(), err
	}

	if result.Status != StatusValid {
		s.logger.Debug("discarding remember me cookie", zap.Stringer("status", result.Status))
		if err := s.service.Revoke(c, nil, false); err != nil {
			return auth.Unauthenticated(), err
		}
		return auth.Unauthenticated(), nil
	}

	u := result.User
	if err := s.service.Refresh(c, u); err != nil {
		return auth.Unauthenticated(), err
	}
	if err := session.Login(c, u.ID); err != nil {
		return auth.Unauthenticated(), err
	}

	for _, hook := range s.hooks {
		hook(c, u)
	}

	s.logger.Info("user logged in from remember me cookie", zap.Uint("user_id", u.ID))
	return auth.Authenticated(u, SourceName), nil
}
