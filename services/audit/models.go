package audit

import "time"

type LoginEvent struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	EventID    string    `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Source     string    `gorm:"size:32;not null" json:"source"`
	IPAddress  string    `gorm:"size:45" json:"ip_address"`
	UserAgent  string    `gorm:"type:text" json:"-"`
	Browser    string    `gorm:"size:128" json:"browser"`
	OS         string    `gorm:"size:128" json:"os"`
	DeviceType string    `gorm:"size:32" json:"device_type"`
	Device     string    `gorm:"size:128" json:"device"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LoginEvent) TableName() string {
	return "login_events"
}
