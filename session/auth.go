package session

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
)

var ErrNoSession = errors.New("session is not available for this request")

// Login binds userID to the session under a fresh session token.
func Login(c echo.Context, userID uint) error {
	manager := GetManager(c)
	if manager == nil {
		return ErrNoSession
	}
	ctx := c.Request().Context()

	if err := manager.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	manager.Put(ctx, UserIDKey, userID)
	manager.Put(ctx, AuthenticatedKey, true)
	return nil
}

func Logout(c echo.Context) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	if err := manager.Destroy(c.Request().Context()); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func GetUserID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}
	ctx := c.Request().Context()

	switch v := manager.Get(ctx, UserIDKey).(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case uint64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	return manager.GetBool(c.Request().Context(), AuthenticatedKey)
}
