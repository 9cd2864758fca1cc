package models

import (
	"time"
)

// UserModel represents the database persistence model for users
// This is the anti-corruption layer between domain and database
type UserModel struct {
	ID                     uint    `gorm:"primarykey"`
	SID                    string  `gorm:"uniqueIndex;not null;size:32"`
	Email                  string  `gorm:"uniqueIndex;not null;size:255"`
	Username               string  `gorm:"uniqueIndex;not null;size:32"`
	Forename               string  `gorm:"size:100"`
	Surname                string  `gorm:"size:100"`
	PasswordHash           string  `gorm:"not null;size:255"`
	Role                   string  `gorm:"not null;default:user;size:20"`
	IsActive               bool    `gorm:"not null;default:true"`
	IsEmailVerified        bool    `gorm:"not null;default:false"`
	EmailVerificationToken *string `gorm:"size:255;index:idx_email_verification_token"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
