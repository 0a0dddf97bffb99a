package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"github.com/tech-arch1tect/rememberme/session"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginSource is consulted, in order, when a request carries no
// authenticated session. A source that does not apply returns an
// unauthenticated Outcome; an error aborts the chain.
type LoginSource interface {
	Name() string
	Attempt(c echo.Context) (Outcome, error)
}

// LogoutHook runs before the session is torn down.
type LogoutHook interface {
	BeforeLogout(c echo.Context, u *user.User) error
}

type Rememberer interface {
	Enabled() bool
	Remember(c echo.Context, u *user.User) error
	ForceRevoke(c echo.Context, u *user.User) error
}

type Users interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePasswordHash(ctx context.Context, u *user.User, passwordHash string) error
}

type Coordinator struct {
	users      Users
	passwords  *Passwords
	rememberer Rememberer
	sources    []LoginSource
	hooks      []LogoutHook
	logger     *logging.Service
}

func NewCoordinator(users Users, passwords *Passwords, rememberer Rememberer, sources []LoginSource, hooks []LogoutHook, logger *logging.Service) *Coordinator {
	return &Coordinator{
		users:      users,
		passwords:  passwords,
		rememberer: rememberer,
		sources:    sources,
		hooks:      hooks,
		logger:     logger.Named("auth"),
	}
}

// CurrentUser resolves the request's identity from the session, falling back
// to each login source in order.
func (a *Coordinator) CurrentUser(c echo.Context) (Outcome, error) {
	if session.IsAuthenticated(c) {
		outcome, err := a.sessionUser(c)
		if err != nil || outcome.Authenticated() {
			return outcome, err
		}
	}

	for _, source := range a.sources {
		outcome, err := source.Attempt(c)
		if err != nil {
			return Unauthenticated(), fmt.Errorf("login source %s: %w", source.Name(), err)
		}
		if outcome.Authenticated() {
			a.logger.Debug("login source authenticated request",
				zap.String("source", source.Name()),
				zap.Uint("user_id", outcome.User.ID))
			return outcome, nil
		}
	}

	return Unauthenticated(), nil
}

func (a *Coordinator) sessionUser(c echo.Context) (Outcome, error) {
	id := session.GetUserID(c)
	u, err := a.users.FindByID(c.Request().Context(), id)
	switch {
	case err == nil:
		return Authenticated(u, SourceSession), nil
	case errors.Is(err, user.ErrUserNotFound):
		a.logger.Debug("session refers to missing user, discarding session", zap.Uint("user_id", id))
		if err := session.Logout(c); err != nil {
			return Unauthenticated(), err
		}
		return Unauthenticated(), nil
	default:
		return Unauthenticated(), fmt.Errorf("failed to load session user: %w", err)
	}
}

// Login is the primary password login. Unknown email and wrong password both
// yield ErrInvalidCredentials.
func (a *Coordinator) Login(c echo.Context, email, password string, remember bool) (Outcome, error) {
	u, err := a.users.FindByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			a.logger.Debug("login failed: unknown email")
			return Unauthenticated(), ErrInvalidCredentials
		}
		return Unauthenticated(), fmt.Errorf("failed to look up user: %w", err)
	}

	if err := a.passwords.Verify(u.PasswordHash, password); err != nil {
		a.logger.Debug("login failed: wrong password", zap.Uint("user_id", u.ID))
		return Unauthenticated(), ErrInvalidCredentials
	}

	if err := a.AutoLogin(c, u, remember); err != nil {
		return Unauthenticated(), err
	}

	a.logger.Info("user logged in", zap.Uint("user_id", u.ID), zap.Bool("remember", remember))
	return Authenticated(u, SourcePassword), nil
}

// AutoLogin establishes a session for an already authenticated user and, when
// asked to, issues the remember-me credential once. If issuing fails the
// session is destroyed again so the caller is left logged out.
func (a *Coordinator) AutoLogin(c echo.Context, u *user.User, remember bool) error {
	if err := session.Login(c, u.ID); err != nil {
		return err
	}

	if !remember {
		return nil
	}
	if a.rememberer == nil || !a.rememberer.Enabled() {
		a.logger.Debug("remember me requested but disabled", zap.Uint("user_id", u.ID))
		return nil
	}
	if err := a.rememberer.Remember(c, u); err != nil {
		a.logger.Error("failed to issue remember me token", zap.Uint("user_id", u.ID), zap.Error(err))
		if logoutErr := session.Logout(c); logoutErr != nil {
			return errors.Join(err, logoutErr)
		}
		return err
	}
	return nil
}

// Logout runs every logout hook, then destroys the session even if a hook
// failed. Hook errors are joined into the result.
func (a *Coordinator) Logout(c echo.Context, u *user.User) error {
	var errs []error
	for _, hook := range a.hooks {
		if err := hook.BeforeLogout(c, u); err != nil {
			a.logger.Error("logout hook failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if err := session.Logout(c); err != nil {
		errs = append(errs, err)
	}

	if u != nil {
		a.logger.Info("user logged out", zap.Uint("user_id", u.ID))
	}
	return errors.Join(errs...)
}

func (a *Coordinator) Register(c echo.Context, email, password string) (*user.User, error) {
	hash, err := a.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(c.Request().Context(), email, hash)
}

// ChangePassword replaces the password and invalidates every remember-me
// credential of u before re-establishing the current session.
func (a *Coordinator) ChangePassword(c echo.Context, u *user.User, current, next string) error {
	if err := a.passwords.Verify(u.PasswordHash, current); err != nil {
		return err
	}

	hash, err := a.passwords.Hash(next)
	if err != nil {
		return err
	}
	if err := a.users.UpdatePasswordHash(c.Request().Context(), u, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if a.rememberer != nil {
		if err := a.rememberer.ForceRevoke(c, u); err != nil {
			return err
		}
	}

	a.logger.Info("password changed", zap.Uint("user_id", u.ID))
	return session.Login(c, u.ID)
}
