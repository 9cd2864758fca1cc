package user

import (
	"fmt"
	"time"

	"github.com/entry-inc/entry/internal/shared/id"
)

// Session is a refresh-token record: one row per issued refresh token,
// carrying the audit metadata captured at issuance. A session is live until
// it is revoked (consumed by rotation, logged out, or administratively
// revoked) or expires.
type Session struct {
	ID        string
	UserID    uint
	UserSID   string
	Token     string
	IPAddress string
	UserAgent string
	IsRevoked bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session record for a freshly issued refresh token.
// The client IP is mandatory audit metadata.
func NewSession(userID uint, userSID, token, ipAddress, userAgent string, expiresAt time.Time) (*Session, error) {
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	return NewSessionWithID(sessionID, userID, userSID, token, ipAddress, userAgent, expiresAt)
}

// NewSessionWithID builds a session record around a pre-generated ID.
// Token issuance embeds the session ID in the claims, so the ID must exist
// before the token that the record stores.
func NewSessionWithID(sessionID string, userID uint, userSID, token, ipAddress, userAgent string, expiresAt time.Time) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if token == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	if ipAddress == "" {
		return nil, fmt.Errorf("client IP is required")
	}

	now := time.Now().UTC()
	return &Session{
		ID:        sessionID,
		UserID:    userID,
		UserSID:   userSID,
		Token:     token,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsLive reports whether the session can still be used for rotation
func (s *Session) IsLive() bool {
	return !s.IsRevoked && !s.IsExpired()
}
