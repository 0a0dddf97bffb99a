package audit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberme/services/audit"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"github.com/tech-arch1tect/rememberme/testutils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newContext(userAgent string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("User-Agent", userAgent)
	req.RemoteAddr = "203.0.113.7:51234"
	return e.NewContext(req, httptest.NewRecorder())
}

func TestService_AfterRememberLogin(t *testing.T) {
	db := testutils.SetupTestDB(t, &audit.LoginEvent{})
	core, logs := observer.New(zapcore.InfoLevel)
	service := audit.NewService(db, logging.NewFromZap(zap.New(core)))
	alice := &user.User{ID: 42, Email: testutils.TestUsers.Alice.Email}

	service.AfterRememberLogin(newContext(chromeOnMac), alice)

	events, err := service.RecentEvents(context.Background(), alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	event := events[0]
	assert.Len(t, event.EventID, 36)
	assert.Equal(t, "remember_me", event.Source)
	assert.Equal(t, "203.0.113.7", event.IPAddress)
	assert.Contains(t, event.Browser, "Chrome")
	assert.Equal(t, "Desktop", event.DeviceType)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, event.EventID, fields["event_id"])
	assert.Equal(t, uint64(42), fields["user_id"])
}

func TestService_StorageFailureIsLogged(t *testing.T) {
	db := testutils.SetupTestDB(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	service := audit.NewService(db, logging.NewFromZap(zap.New(core)))

	assert.NotPanics(t, func() {
		service.AfterRememberLogin(newContext(chromeOnMac), &user.User{ID: 1})
	})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to store login event", logs.All()[0].Message)
}

func TestService_WithoutDatabase(t *testing.T) {
	service := audit.NewService(nil, nil)

	assert.NotPanics(t, func() {
		service.AfterRememberLogin(newContext(""), &user.User{ID: 1})
	})
}

func TestService_RecentEventsNewestFirst(t *testing.T) {
	db := testutils.SetupTestDB(t, &audit.LoginEvent{})
	service := audit.NewService(db, nil)

	for _, source := range []string{"remember_me", "password", "remember_me"} {
		service.Record(newContext(chromeOnMac), &user.User{ID: 7}, source)
	}
	service.Record(newContext(chromeOnMac), &user.User{ID: 8}, "password")

	events, err := service.RecentEvents(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Greater(t, events[0].ID, events[1].ID)
	for _, e := range events {
		assert.Equal(t, uint(7), e.UserID)
	}
}

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		deviceType string
		browser    string
	}{
		{"empty", "", "Unknown", "Unknown Browser"},
		{"desktop chrome", chromeOnMac, "Desktop", "Chrome"},
		{
			"iphone safari",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"Mobile",
			"Safari",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := audit.ParseDevice(tt.userAgent)
			assert.Equal(t, tt.deviceType, info.DeviceType)
			assert.Contains(t, info.Browser, tt.browser)
		})
	}
}
