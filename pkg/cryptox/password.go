package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Configuration for PBKDF2-HMAC-SHA256 hashing.
const (
	SaltLength = 32          // Length of a per-account salt
	HashLength = sha256.Size // Length of the derived credential (digest size)

	// DefaultIterations follows the OWASP recommendation for PBKDF2-HMAC-SHA256.
	DefaultIterations = 600_000

	// MinIterations is the lowest count accepted outside of dev/test.
	MinIterations = 100_000
)

var (
	ErrInvalidSalt       = errors.New("cryptox: salt must be 32 bytes")
	ErrInvalidIterations = errors.New("cryptox: iteration count must be positive")
)

// PBKDF2 derives fixed-length credentials from a password and salt.
// The zero value uses DefaultIterations.
type PBKDF2 struct {
	Iterations int
}

func (p PBKDF2) iterations() int {
	if p.Iterations == 0 {
		return DefaultIterations
	}
	return p.Iterations
}

// DeriveHash runs PBKDF2-HMAC-SHA256 over password with salt and returns a
// HashLength byte credential.
func (p PBKDF2) DeriveHash(password, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrInvalidSalt
	}
	iters := p.iterations()
	if iters < 0 {
		return nil, ErrInvalidIterations
	}
	return pbkdf2.Key(password, salt, iters, HashLength, sha256.New), nil
}

// Verify recomputes the credential for password and compares it to expected
// in constant time. Any malformed input simply fails verification.
func (p PBKDF2) Verify(password, salt, expected []byte) bool {
	computed, err := p.DeriveHash(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// GenerateSalt returns SaltLength bytes from the system CSPRNG. There is no
// fallback source: if the CSPRNG fails, the error is returned.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate salt: %w", err)
	}
	return salt, nil
}
