package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/services/user"
)

const currentUserKey = "current_user"

func SetCurrentUser(c echo.Context, u *user.User) {
	c.Set(currentUserKey, u)
}

// CurrentUser returns the user bound to the request, or nil.
func CurrentUser(c echo.Context) *user.User {
	if u, ok := c.Get(currentUserKey).(*user.User); ok {
		return u
	}
	return nil
}
