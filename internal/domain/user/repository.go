package user

import "context"

// Repository defines the interface for user data operations
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by internal ID
	GetByID(ctx context.Context, id uint) (*User, error)

	// GetBySID retrieves a user by external SID
	GetBySID(ctx context.Context, sid string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByVerificationToken retrieves a user by email verification token
	GetByVerificationToken(ctx context.Context, token string) (*User, error)

	// ExistsByEmail checks if a user exists by email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername checks if a user exists by username
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete removes a user by internal ID
	Delete(ctx context.Context, id uint) error

	// List retrieves a paginated list of users
	List(ctx context.Context, filter ListFilter) ([]*User, int64, error)
}

// ListFilter represents filtering and pagination options for user list
type ListFilter struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// SessionRepository persists refresh-token records.
type SessionRepository interface {
	// Create stores a new session record
	Create(ctx context.Context, session *Session) error

	// GetByID retrieves a session by its external ID
	GetByID(ctx context.Context, sessionID string) (*Session, error)

	// GetActiveByUserID retrieves all live (non-revoked, non-expired)
	// sessions belonging to a user
	GetActiveByUserID(ctx context.Context, userID uint) ([]*Session, error)

	// Revoke flips a live session to revoked with a single conditional
	// write. It reports whether THIS call performed the flip: false means
	// the record was already revoked or does not exist, which callers on
	// the rotation path must treat as token reuse.
	Revoke(ctx context.Context, sessionID string) (bool, error)

	// RevokeAllByUserID revokes every live session belonging to a user
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes session rows past their expiry
	DeleteExpired(ctx context.Context) error
}
