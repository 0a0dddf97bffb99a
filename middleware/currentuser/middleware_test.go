package currentuser

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/user"
)

type resolverFunc func(c echo.Context) (auth.Outcome, error)

func (f resolverFunc) CurrentUser(c echo.Context) (auth.Outcome, error) {
	return f(c)
}

func newContext() echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), httptest.NewRecorder())
}

func TestMiddleware(t *testing.T) {
	alice := &user.User{ID: 1, Email: "alice@example.com"}

	t.Run("binds authenticated user", func(t *testing.T) {
		c := newContext()
		mw := Middleware(Config{Resolver: resolverFunc(func(echo.Context) (auth.Outcome, error) {
			return auth.Authenticated(alice, "remember_me"), nil
		})})

		var seen *user.User
		err := mw(func(c echo.Context) error {
			seen = auth.CurrentUser(c)
			return nil
		})(c)

		require.NoError(t, err)
		assert.Equal(t, alice, seen)
	})

	t.Run("unauthenticated continues without user", func(t *testing.T) {
		c := newContext()
		mw := Middleware(Config{Resolver: resolverFunc(func(echo.Context) (auth.Outcome, error) {
			return auth.Unauthenticated(), nil
		})})

		called := false
		err := mw(func(c echo.Context) error {
			called = true
			assert.Nil(t, auth.CurrentUser(c))
			return nil
		})(c)

		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("resolver fault is a server error", func(t *testing.T) {
		c := newContext()
		boom := errors.New("persistence failure")
		mw := Middleware(Config{Resolver: resolverFunc(func(echo.Context) (auth.Outcome, error) {
			return auth.Unauthenticated(), boom
		})})

		called := false
		err := mw(func(echo.Context) error {
			called = true
			return nil
		})(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
		assert.ErrorIs(t, httpErr.Internal, boom)
		assert.False(t, called)
	})

	t.Run("skipped path never resolves", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), httptest.NewRecorder())
		resolved := false
		mw := Middleware(Config{
			Resolver: resolverFunc(func(echo.Context) (auth.Outcome, error) {
				resolved = true
				return auth.Authenticated(alice, "remember_me"), nil
			}),
			SkipPaths: []string{"/health"},
		})

		err := mw(func(c echo.Context) error {
			assert.Nil(t, auth.CurrentUser(c))
			return nil
		})(c)

		require.NoError(t, err)
		assert.False(t, resolved)
	})

	t.Run("nil resolver", func(t *testing.T) {
		c := newContext()

		err := Middleware(Config{})(func(echo.Context) error { return nil })(c)

		assert.NoError(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("without user", func(t *testing.T) {
		err := RequireAuth()(func(echo.Context) error { return nil })(newContext())

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "authentication required", httpErr.Message)
	})

	t.Run("with user", func(t *testing.T) {
		c := newContext()
		auth.SetCurrentUser(c, &user.User{ID: 1})

		err := RequireAuth()(func(echo.Context) error { return nil })(c)

		assert.NoError(t, err)
	})
}
