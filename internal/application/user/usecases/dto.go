package usecases

import (
	"time"

	"github.com/entry-inc/entry/internal/domain/user"
)

// UserDTO is the redacted user projection returned to clients. It never
// carries the password hash or the verification token.
type UserDTO struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	Forename        string    `json:"forename"`
	Surname         string    `json:"surname"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"isActive"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SessionDTO is the redacted session projection. The stored refresh token
// never leaves the store through a listing.
type SessionDTO struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUserDTO converts a domain user to its redacted projection
func ToUserDTO(u *user.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.SID(),
		Email:           u.Email(),
		Username:        u.Username(),
		Forename:        u.Forename(),
		Surname:         u.Surname(),
		Role:            u.Role().String(),
		IsActive:        u.IsActive(),
		IsEmailVerified: u.IsEmailVerified(),
		CreatedAt:       u.CreatedAt(),
		UpdatedAt:       u.UpdatedAt(),
	}
}

// ToSessionDTO converts a session record to its redacted projection
func ToSessionDTO(s *user.Session, currentSessionID string) *SessionDTO {
	if s == nil {
		return nil
	}
	return &SessionDTO{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		Current:   s.ID == currentSessionID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
