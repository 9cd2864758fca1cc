package models

import "time"

// SessionModel represents the database persistence model for refresh-token
// records.
type SessionModel struct {
	ID        string    `gorm:"primarykey;size:32"`
	UserID    uint      `gorm:"not null;index"`
	UserSID   string    `gorm:"not null;size:32;index"`
	Token     string    `gorm:"not null;size:1024"`
	IPAddress string    `gorm:"size:45"`
	UserAgent string    `gorm:"size:512"`
	IsRevoked bool      `gorm:"not null;default:false;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}
