package rememberme

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/config"
	"github.com/tech-arch1tect/rememberme/cookie"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"go.uber.org/zap"
)

var (
	ErrRememberMeDisabled = errors.New("remember me functionality is disabled")
	ErrPersistenceFailure = errors.New("remember me persistence failure")
)

type Status int

const (
	StatusNotFound Status = iota
	StatusInvalid
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "not_found"
	}
}

// Result carries the user only when Status is StatusValid.
type Result struct {
	Status Status
	User   *user.User
}

type Users interface {
	FindByRememberMeToken(ctx context.Context, token string) (*user.User, error)
	IssueRememberMeToken(ctx context.Context, u *user.User) error
	ExtendRememberMeToken(ctx context.Context, u *user.User) error
	ClearRememberMeToken(ctx context.Context, u *user.User) error
	HasValidRememberMeToken(u *user.User) bool
}

type Cookies interface {
	ReadSigned(c echo.Context, name string) (string, bool, error)
	WriteSigned(c echo.Context, name, value string, attrs cookie.Attributes)
	Delete(c echo.Context, name, domain string)
}

// Service issues, validates and revokes remember-me tokens. The token lives
// on the user record; the client holds it in a signed cookie.
type Service struct {
	users   Users
	cookies Cookies
	config  config.RememberMeConfig
	domain  string
	logger  *logging.Service
}

func NewService(users Users, cookies Cookies, cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		users:   users,
		cookies: cookies,
		config:  cfg.RememberMe,
		domain:  cfg.Cookie.Domain,
		logger:  logger.Named("remember_me"),
	}
}

func (s *Service) Enabled() bool {
	return s.config.Enabled
}

// Remember issues or extends the user's token and writes the cookie.
func (s *Service) Remember(c echo.Context, u *user.User) error {
	if !s.config.Enabled {
		return ErrRememberMeDisabled
	}

	if err := s.users.IssueRememberMeToken(c.Request().Context(), u); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	s.writeCookie(c, u)
	return nil
}

// Refresh slides the expiry of the current token forward and rewrites the
// cookie. The token value does not change.
func (s *Service) Refresh(c echo.Context, u *user.User) error {
	if !s.config.Enabled {
		return ErrRememberMeDisabled
	}

	if err := s.users.ExtendRememberMeToken(c.Request().Context(), u); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	s.writeCookie(c, u)
	return nil
}

// Validate checks a presented token against the stored one. Absence and
// expiry are results, not errors; only storage faults return an error.
func (s *Service) Validate(ctx context.Context, token string) (Result, error) {
	if !s.config.Enabled || token == "" {
		return Result{Status: StatusNotFound}, nil
	}

	u, err := s.users.FindByRememberMeToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Debug("remember me token not found")
			return Result{Status: StatusNotFound}, nil
		}
		s.logger.Error("remember me token lookup failed", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	if u.RememberMeToken == nil || subtle.ConstantTimeCompare([]byte(*u.RememberMeToken), []byte(token)) != 1 {
		return Result{Status: StatusNotFound}, nil
	}

	if !s.users.HasValidRememberMeToken(u) {
		s.logger.Debug("remember me token expired", zap.Uint("user_id", u.ID))
		return Result{Status: StatusInvalid}, nil
	}

	return Result{Status: StatusValid, User: u}, nil
}

// Revoke always deletes the cookie. With globally set it also clears the
// stored token so every copy of the cookie stops working. A nil user only
// loses the cookie.
func (s *Service) Revoke(c echo.Context, u *user.User, globally bool) error {
	s.cookies.Delete(c, s.config.CookieName, s.domain)

	if !globally || u == nil {
		return nil
	}

	if err := s.users.ClearRememberMeToken(c.Request().Context(), u); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	s.logger.Info("remember me token revoked", zap.Uint("user_id", u.ID))
	return nil
}

// ForceRevoke invalidates the stored token regardless of PersistGlobally.
func (s *Service) ForceRevoke(c echo.Context, u *user.User) error {
	return s.Revoke(c, u, true)
}

// ForgetMe is the ordinary logout revocation. The stored token survives when
// PersistGlobally is set.
func (s *Service) ForgetMe(c echo.Context, u *user.User) error {
	return s.Revoke(c, u, !s.config.PersistGlobally)
}

func (s *Service) BeforeLogout(c echo.Context, u *user.User) error {
	return s.ForgetMe(c, u)
}

// PresentedToken returns the token from a verified remember cookie. A cookie
// that fails verification counts as absent.
func (s *Service) PresentedToken(c echo.Context) (string, bool) {
	token, ok, err := s.cookies.ReadSigned(c, s.config.CookieName)
	if err != nil {
		s.logger.Warn("rejected remember me cookie",
			zap.String("remote_ip", c.RealIP()),
			zap.Error(err))
		return "", false
	}
	return token, ok && token != ""
}

func (s *Service) writeCookie(c echo.Context, u *user.User) {
	s.cookies.WriteSigned(c, s.config.CookieName, *u.RememberMeToken, cookie.Attributes{
		Expires:  *u.RememberMeTokenExpiresAt,
		HttpOnly: s.config.HttpOnly,
		Secure:   s.config.Secure,
		Domain:   s.domain,
		SameSite: cookie.ParseSameSite(s.config.SameSite),
	})
}
