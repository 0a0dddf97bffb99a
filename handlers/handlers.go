package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/middleware/currentuser"
	"github.com/tech-arch1tect/rememberme/services/audit"
	"github.com/tech-arch1tect/rememberme/services/auth"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"go.uber.org/zap"
)

const recentLoginsLimit = 20

type Handler struct {
	coordinator *auth.Coordinator
	audit       *audit.Service
	logger      *logging.Service
}

func New(coordinator *auth.Coordinator, auditService *audit.Service, logger *logging.Service) *Handler {
	return &Handler{
		coordinator: coordinator,
		audit:       auditService,
		logger:      logger.Named("handlers"),
	}
}

// Routes mounts the handlers. They expect the session and current user
// middleware to run first.
func (h *Handler) Routes(e *echo.Echo) {
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	requireAuth := currentuser.RequireAuth()
	e.GET("/me", h.Me, requireAuth)
	e.GET("/me/logins", h.RecentLogins, requireAuth)
	e.POST("/password", h.ChangePassword, requireAuth)
}

type credentialsRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

type userResponse struct {
	User *user.User `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	u, err := h.coordinator.Register(c, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, user.ErrEmailRequired):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, user.ErrEmailAlreadyTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}

	if err := h.coordinator.AutoLogin(c, u, req.RememberMe); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: u})
}

func (h *Handler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	outcome, err := h.coordinator.Login(c, req.Email, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: outcome.User})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.coordinator.Logout(c, auth.CurrentUser(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, userResponse{User: auth.CurrentUser(c)})
}

func (h *Handler) RecentLogins(c echo.Context) error {
	u := auth.CurrentUser(c)
	events, err := h.audit.RecentEvents(c.Request().Context(), u.ID, recentLoginsLimit)
	if err != nil {
		h.logger.Error("failed to load login events", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"logins": events})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	err := h.coordinator.ChangePassword(c, auth.CurrentUser(c), req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"message": "password changed"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "current password is incorrect")
	case errors.Is(err, auth.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
