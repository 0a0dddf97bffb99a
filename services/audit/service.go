package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberme/services/logging"
	"github.com/tech-arch1tect/rememberme/services/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service records logins that did not go through the password form.
// Recording is best effort and never fails the login.
type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger.Named("audit")}
}

func (s *Service) AfterRememberLogin(c echo.Context, u *user.User) {
	s.Record(c, u, "remember_me")
}

func (s *Service) Record(c echo.Context, u *user.User, source string) {
	userAgent := c.Request().UserAgent()
	device := ParseDevice(userAgent)
	event := LoginEvent{
		EventID:    uuid.New().String(),
		UserID:     u.ID,
		Source:     source,
		IPAddress:  c.RealIP(),
		UserAgent:  userAgent,
		Browser:    device.Browser,
		OS:         device.OS,
		DeviceType: device.DeviceType,
		Device:     device.Device,
	}

	s.logger.Info("login recorded",
		zap.String("event_id", event.EventID),
		zap.Uint("user_id", u.ID),
		zap.String("source", source),
		zap.String("ip_address", event.IPAddress),
		zap.String("browser", event.Browser),
		zap.String("device", event.Device))

	if s.db == nil {
		return
	}
	if err := s.db.WithContext(c.Request().Context()).Create(&event).Error; err != nil {
		s.logger.Error("failed to store login event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}

func (s *Service) RecentEvents(ctx context.Context, userID uint, limit int) ([]LoginEvent, error) {
	var events []LoginEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
