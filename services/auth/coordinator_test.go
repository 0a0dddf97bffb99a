package auth_test

import (
	"errors"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/user"
	"github.com/tech-arch1tect/rememberme/session"
	"github.com/tech-arch1tect/rememberme/testutils"
)

type stubSource struct {
	name    string
	outcome auth.Outcome
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Attempt(echo.Context) (auth.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

type recordingHook struct {
	name  string
	log   *[]string
	err   error
	users []*user.User
}

func (h *recordingHook) BeforeLogout(_ echo.Context, u *user.User) error {
	*h.log = append(*h.log, h.name)
	h.users = append(h.users, u)
	return h.err
}

type fakeRememberer struct {
	enabled    bool
	remembered int
	revoked    int
	err        error
}

func (r *fakeRememberer) Enabled() bool { return r.enabled }

func (r *fakeRememberer) Remember(echo.Context, *user.User) error {
	r.remembered++
	return r.err
}

func (r *fakeRememberer) ForceRevoke(echo.Context, *user.User) error {
	r.revoked++
	return r.err
}

type fixture struct {
	users      *user.Service
	rememberer *fakeRememberer
	sessions   *session.Manager
	alice      *user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t, &user.User{})
	users := user.NewService(user.NewGormStore(db, cfg.RememberMe), cfg, nil)

	passwords := auth.NewPasswords(cfg.Auth, nil)
	hash, err := passwords.Hash(testutils.TestUsers.Alice.Password)
	require.NoError(t, err)

	c, _ := testutils.NewEchoContext()
	alice, err := users.Create(c.Request().Context(), testutils.TestUsers.Alice.Email, hash)
	require.NoError(t, err)

	return &fixture{
		users:      users,
		rememberer: &fakeRememberer{enabled: true},
		sessions:   testutils.NewSessionManager(t),
		alice:      alice,
	}
}

func (f *fixture) coordinator(sources []auth.LoginSource, hooks []auth.LogoutHook) *auth.Coordinator {
	cfg := testutils.GetTestConfig()
	return auth.NewCoordinator(f.users, auth.NewPasswords(cfg.Auth, nil), f.rememberer, sources, hooks, nil)
}

func (f *fixture) serve(t *testing.T, handler echo.HandlerFunc) {
	t.Helper()
	c, _ := testutils.NewEchoContext()
	require.NoError(t, testutils.ServeWithSession(f.sessions, c, handler))
}

func TestCoordinator_CurrentUser(t *testing.T) {
	t.Run("no session and no sources", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			outcome, err := coordinator.CurrentUser(c)
			require.NoError(t, err)
			assert.False(t, outcome.Authenticated())
			return nil
		})
	})

	t.Run("sources are consulted in order until one authenticates", func(t *testing.T) {
		f := setup(t)
		declining := &stubSource{name: "first", outcome: auth.Unauthenticated()}
		accepting := &stubSource{name: "second", outcome: auth.Authenticated(f.alice, "second")}
		unreached := &stubSource{name: "third", outcome: auth.Authenticated(f.alice, "third")}
		coordinator := f.coordinator([]auth.LoginSource{declining, accepting, unreached}, nil)

		f.serve(t, func(c echo.Context) error {
			outcome, err := coordinator.CurrentUser(c)
			require.NoError(t, err)
			assert.True(t, outcome.Authenticated())
			assert.Equal(t, "second", outcome.Source)
			return nil
		})

		assert.Equal(t, 1, declining.calls)
		assert.Equal(t, 1, accepting.calls)
		assert.Equal(t, 0, unreached.calls)
	})

	t.Run("source error aborts the chain", func(t *testing.T) {
		f := setup(t)
		boom := errors.New("store down")
		failing := &stubSource{name: "failing", err: boom}
		unreached := &stubSource{name: "next", outcome: auth.Authenticated(f.alice, "next")}
		coordinator := f.coordinator([]auth.LoginSource{failing, unreached}, nil)

		f.serve(t, func(c echo.Context) error {
			outcome, err := coordinator.CurrentUser(c)
			assert.ErrorIs(t, err, boom)
			assert.False(t, outcome.Authenticated())
			return nil
		})
		assert.Equal(t, 0, unreached.calls)
	})

	t.Run("session takes precedence over sources", func(t *testing.T) {
		f := setup(t)
		source := &stubSource{name: "source"}
		coordinator := f.coordinator([]auth.LoginSource{source}, nil)

		f.serve(t, func(c echo.Context) error {
			require.NoError(t, session.Login(c, f.alice.ID))

			outcome, err := coordinator.CurrentUser(c)
			require.NoError(t, err)
			assert.Equal(t, auth.SourceSession, outcome.Source)
			assert.Equal(t, f.alice.ID, outcome.User.ID)
			return nil
		})
		assert.Equal(t, 0, source.calls)
	})

	t.Run("session of a deleted user falls through to sources", func(t *testing.T) {
		f := setup(t)
		source := &stubSource{name: "source"}
		coordinator := f.coordinator([]auth.LoginSource{source}, nil)

		f.serve(t, func(c echo.Context) error {
			require.NoError(t, session.Login(c, 9999))

			outcome, err := coordinator.CurrentUser(c)
			require.NoError(t, err)
			assert.False(t, outcome.Authenticated())
			assert.False(t, session.IsAuthenticated(c))
			return nil
		})
		assert.Equal(t, 1, source.calls)
	})
}

func TestCoordinator_Login(t *testing.T) {
	t.Run("with remember issues the credential once", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			outcome, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, testutils.TestUsers.Alice.Password, true)
			require.NoError(t, err)
			assert.Equal(t, auth.SourcePassword, outcome.Source)
			assert.Equal(t, f.alice.ID, session.GetUserID(c))
			return nil
		})
		assert.Equal(t, 1, f.rememberer.remembered)
	})

	t.Run("without remember", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			_, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, testutils.TestUsers.Alice.Password, false)
			require.NoError(t, err)
			return nil
		})
		assert.Equal(t, 0, f.rememberer.remembered)
	})

	t.Run("remember requested while disabled", func(t *testing.T) {
		f := setup(t)
		f.rememberer.enabled = false
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			_, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, testutils.TestUsers.Alice.Password, true)
			require.NoError(t, err)
			return nil
		})
		assert.Equal(t, 0, f.rememberer.remembered)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			_, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, "WrongPassword1", true)
			testutils.AssertErrorType(t, auth.ErrInvalidCredentials, err)

			_, err = coordinator.Login(c, "nobody@example.com", testutils.TestUsers.Alice.Password, true)
			testutils.AssertErrorType(t, auth.ErrInvalidCredentials, err)

			assert.False(t, session.IsAuthenticated(c))
			return nil
		})
		assert.Equal(t, 0, f.rememberer.remembered)
	})

	t.Run("remember failure is returned and leaves no session", func(t *testing.T) {
		f := setup(t)
		f.rememberer.err = errors.New("cannot persist")
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			outcome, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, testutils.TestUsers.Alice.Password, true)
			assert.ErrorIs(t, err, f.rememberer.err)
			assert.False(t, outcome.Authenticated())
			assert.False(t, session.IsAuthenticated(c))
			assert.Zero(t, session.GetUserID(c))
			return nil
		})
	})
}

func TestCoordinator_Logout(t *testing.T) {
	t.Run("runs hooks in order before destroying the session", func(t *testing.T) {
		f := setup(t)
		var calls []string
		first := &recordingHook{name: "first", log: &calls}
		second := &recordingHook{name: "second", log: &calls}
		coordinator := f.coordinator(nil, []auth.LogoutHook{first, second})

		f.serve(t, func(c echo.Context) error {
			require.NoError(t, session.Login(c, f.alice.ID))

			require.NoError(t, coordinator.Logout(c, f.alice))
			assert.False(t, session.IsAuthenticated(c))
			return nil
		})

		assert.Equal(t, []string{"first", "second"}, calls)
		assert.Equal(t, f.alice.ID, first.users[0].ID)
	})

	t.Run("hook failure still destroys the session", func(t *testing.T) {
		f := setup(t)
		var calls []string
		boom := errors.New("hook failed")
		failing := &recordingHook{name: "failing", log: &calls, err: boom}
		after := &recordingHook{name: "after", log: &calls}
		coordinator := f.coordinator(nil, []auth.LogoutHook{failing, after})

		f.serve(t, func(c echo.Context) error {
			require.NoError(t, session.Login(c, f.alice.ID))

			err := coordinator.Logout(c, f.alice)
			assert.ErrorIs(t, err, boom)
			assert.False(t, session.IsAuthenticated(c))
			return nil
		})
		assert.Equal(t, []string{"failing", "after"}, calls)
	})
}

func TestCoordinator_ChangePassword(t *testing.T) {
	t.Run("force revokes remember me and keeps the session", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)
		next := "NewPassword456"

		f.serve(t, func(c echo.Context) error {
			require.NoError(t, session.Login(c, f.alice.ID))

			require.NoError(t, coordinator.ChangePassword(c, f.alice, testutils.TestUsers.Alice.Password, next))
			assert.Equal(t, f.alice.ID, session.GetUserID(c))
			return nil
		})
		assert.Equal(t, 1, f.rememberer.revoked)

		f.serve(t, func(c echo.Context) error {
			_, err := coordinator.Login(c, testutils.TestUsers.Alice.Email, next, false)
			assert.NoError(t, err)
			return nil
		})
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			err := coordinator.ChangePassword(c, f.alice, "WrongPassword1", "NewPassword456")
			testutils.AssertErrorType(t, auth.ErrInvalidCredentials, err)
			return nil
		})
		assert.Equal(t, 0, f.rememberer.revoked)
	})

	t.Run("weak new password", func(t *testing.T) {
		f := setup(t)
		coordinator := f.coordinator(nil, nil)

		f.serve(t, func(c echo.Context) error {
			err := coordinator.ChangePassword(c, f.alice, testutils.TestUsers.Alice.Password, testutils.TestPasswords.NoNumber)
			testutils.AssertErrorType(t, auth.ErrWeakPassword, err)
			return nil
		})
		assert.Equal(t, 0, f.rememberer.revoked)
	})
}

func TestCoordinator_Register(t *testing.T) {
	f := setup(t)
	coordinator := f.coordinator(nil, nil)

	f.serve(t, func(c echo.Context) error {
		bob, err := coordinator.Register(c, testutils.TestUsers.Bob.Email, testutils.TestUsers.Bob.Password)
		require.NoError(t, err)
		assert.NotZero(t, bob.ID)
		assert.NotEqual(t, testutils.TestUsers.Bob.Password, bob.PasswordHash)

		_, err = coordinator.Register(c, testutils.TestUsers.Bob.Email, testutils.TestUsers.Bob.Password)
		testutils.AssertErrorType(t, user.ErrEmailAlreadyTaken, err)

		_, err = coordinator.Register(c, "carol@example.com", testutils.TestPasswords.TooShort)
		testutils.AssertErrorType(t, auth.ErrWeakPassword, err)
		return nil
	})
}
