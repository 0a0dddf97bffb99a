package user

import "time"

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`

	// RememberMeToken and RememberMeTokenExpiresAt are always written together.
	RememberMeToken          *string    `json:"-" gorm:"uniqueIndex;size:255"`
	RememberMeTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
