package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12

	// SessionIDLength is longer since session IDs are bearer-adjacent: they
	// point at a server-side refresh token record.
	SessionIDLength = 22
)

// Prefixes for different entity types (Stripe-style)
const (
	PrefixUser    = "usr"
	PrefixSession = "ses"
)

// Generate creates a random short ID with the specified length using Base62
// encoding. The generated ID is cryptographically random and URL-safe.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates a prefixed ID in the format "prefix_randomstring".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}

// ParsePrefixedID extracts the prefix and short ID from a prefixed ID string.
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// Validate checks that the prefixed ID carries the expected prefix and that
// the random part uses only the Base62 alphabet. Cookie values pass through
// here before they are trusted as identifiers.
func Validate(prefixedID, expectedPrefix string) error {
	prefix, shortID, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	for i := 0; i < len(shortID); i++ {
		if !strings.ContainsRune(alphabet, rune(shortID[i])) {
			return fmt.Errorf("invalid character in ID: %q", shortID[i])
		}
	}
	return nil
}

// NewUserID generates a new prefixed user ID.
func NewUserID() (string, error) {
	return GenerateWithPrefix(PrefixUser, DefaultLength)
}

// NewSessionID generates a new prefixed session record ID.
func NewSessionID() (string, error) {
	return GenerateWithPrefix(PrefixSession, SessionIDLength)
}

// IsValidUserID reports whether s looks like a user ID.
func IsValidUserID(s string) bool {
	return Validate(s, PrefixUser) == nil
}

// IsValidSessionID reports whether s looks like a session record ID.
func IsValidSessionID(s string) bool {
	return Validate(s, PrefixSession) == nil
}
