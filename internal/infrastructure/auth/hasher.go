package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/entry-inc/entry/internal/shared/config"
)

const (
	argonSaltLength uint32 = 16
	argonKeyLength  uint32 = 32
)

// Argon2PasswordHasher hashes passwords with argon2id, encoding parameters
// into the PHC string so stored hashes stay verifiable after tuning changes.
type Argon2PasswordHasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

func NewArgon2PasswordHasher(cfg config.PasswordConfig) *Argon2PasswordHasher {
	memory := cfg.Memory
	if memory == 0 {
		memory = 64 * 1024
	}
	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = 3
	}
	parallelism := cfg.Parallelism
	if parallelism == 0 {
		parallelism = 2
	}
	return &Argon2PasswordHasher{
		memory:      memory,
		iterations:  iterations,
		parallelism: parallelism,
	}
}

func (h *Argon2PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, argonKeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.iterations,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// Verify fails closed: any malformed hash or internal failure reports as a
// plain mismatch so callers cannot distinguish the causes.
func (h *Argon2PasswordHasher) Verify(password, encodedHash string) error {
	memory, iterations, parallelism, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return fmt.Errorf("password verification failed")
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(hash)))
	if subtle.ConstantTimeCompare(hash, computed) != 1 {
		return fmt.Errorf("password verification failed")
	}
	return nil
}

func decodeHash(encodedHash string) (memory, iterations uint32, parallelism uint8, salt, hash []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed hash version")
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("incompatible argon2 version")
	}

	var p uint8
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &p); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed hash parameters")
	}
	parallelism = p

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed salt")
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed hash digest")
	}

	return memory, iterations, parallelism, salt, hash, nil
}
