package usecases

import (
	"time"

	"github.com/entry-inc/entry/internal/shared/authorization"
)

// TokenPair is a freshly minted access/refresh credential pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenClaims is the subset of verified claims the use cases act on
type TokenClaims struct {
	UserSID   string
	SessionID string
	Role      authorization.UserRole
}

// TokenService issues and verifies token pairs
type TokenService interface {
	Generate(userSID string, sessionID string, role authorization.UserRole) (*TokenPair, error)
	VerifyRefresh(token string) (*TokenClaims, error)
	RefreshExpiry() time.Time
	AccessExpMinutes() int
	RefreshExpDays() int
}

// PasswordHasher hashes and verifies credentials. Verify fails closed: any
// reason for mismatch reports as a single opaque error.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}
