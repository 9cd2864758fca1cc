package user

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/entry-inc/entry/internal/shared/authorization"
	"github.com/entry-inc/entry/internal/shared/id"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_.-]{3,32}$`)

// User represents the user aggregate root (pure domain model without persistence concerns)
type User struct {
	id                     uint
	sid                    string
	email                  string
	username               string
	forename               string
	surname                string
	passwordHash           string
	role                   authorization.UserRole
	isActive               bool
	isEmailVerified        bool
	emailVerificationToken *string
	createdAt              time.Time
	updatedAt              time.Time
}

// NewUser creates a new user aggregate. Email and username arrive already
// normalized; hashing happens in the use case layer, so passwordHash is the
// finished hash, never a plaintext password.
func NewUser(email, username, forename, surname, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}

	sid, err := id.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	now := time.Now().UTC()
	return &User{
		sid:             sid,
		email:           email,
		username:        username,
		forename:        NormalizeName(forename),
		surname:         NormalizeName(surname),
		passwordHash:    passwordHash,
		role:            authorization.RoleUser,
		isActive:        true,
		isEmailVerified: false,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructUser rebuilds a user from persistence without re-running
// creation-time invariants.
func ReconstructUser(
	userID uint,
	sid, email, username, forename, surname, passwordHash string,
	role authorization.UserRole,
	isActive, isEmailVerified bool,
	emailVerificationToken *string,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("user SID is required")
	}

	return &User{
		id:                     userID,
		sid:                    sid,
		email:                  email,
		username:               username,
		forename:               forename,
		surname:                surname,
		passwordHash:           passwordHash,
		role:                   role,
		isActive:               isActive,
		isEmailVerified:        isEmailVerified,
		emailVerificationToken: emailVerificationToken,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}, nil
}

func (u *User) ID() uint           { return u.id }
func (u *User) SID() string        { return u.sid }
func (u *User) Email() string      { return u.email }
func (u *User) Username() string   { return u.username }
func (u *User) Forename() string   { return u.forename }
func (u *User) Surname() string    { return u.surname }
func (u *User) FullName() string   { return strings.TrimSpace(u.forename + " " + u.surname) }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() authorization.UserRole { return u.role }
func (u *User) IsActive() bool     { return u.isActive }
func (u *User) IsEmailVerified() bool { return u.isEmailVerified }
func (u *User) EmailVerificationToken() *string { return u.emailVerificationToken }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// SetID assigns the persistence-generated primary key after the first insert
func (u *User) SetID(userID uint) {
	u.id = userID
}

// SetPasswordHash replaces the stored credential hash
func (u *User) SetPasswordHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("password hash is required")
	}
	u.passwordHash = hash
	u.touch()
	return nil
}

// SetEmailVerificationToken stages a pending verification token
func (u *User) SetEmailVerificationToken(token string) {
	u.emailVerificationToken = &token
	u.touch()
}

// VerifyEmail marks the address verified and clears the pending token.
func (u *User) VerifyEmail() error {
	if u.isEmailVerified {
		return fmt.Errorf("email already verified")
	}
	u.isEmailVerified = true
	u.emailVerificationToken = nil
	u.touch()
	return nil
}

// ChangeEmail replaces the address and resets verification state. The caller
// has already normalized the address and checked uniqueness.
func (u *User) ChangeEmail(email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	u.email = email
	u.isEmailVerified = false
	u.touch()
	return nil
}

// Deactivate blocks the account from authenticating
func (u *User) Deactivate() {
	u.isActive = false
	u.touch()
}

// Activate re-enables a deactivated account
func (u *User) Activate() {
	u.isActive = true
	u.touch()
}

// ChangeRole sets the account role
func (u *User) ChangeRole(role authorization.UserRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	u.role = role
	u.touch()
	return nil
}

// UpdateName replaces forename and surname, capitalized
func (u *User) UpdateName(forename, surname string) {
	u.forename = NormalizeName(forename)
	u.surname = NormalizeName(surname)
	u.touch()
}

// UpdateUsername replaces the username; the caller has already normalized it
// and checked uniqueness.
func (u *User) UpdateUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.username = username
	u.touch()
	return nil
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
}

// NormalizeEmail lowercases and trims an email address. Normalization is an
// explicit pre-persistence step, not a save-time hook.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername lowercases and trims a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeName trims a name part and capitalizes it: first letter upper,
// the rest lower
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ValidateEmail checks basic address syntax
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ValidateUsername enforces the allowed charset and length
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("invalid username: %s", username)
	}
	return nil
}
