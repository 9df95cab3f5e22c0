package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the smallest HMAC key accepted (256 bits).
const MinKeySize = 32

var ErrShortKey = errors.New("jwtx: signing key must be at least 32 bytes")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with HMAC-SHA256 under a server-held key.
type HS256Signer struct {
	key []byte
}

// NewHS256Signer copies key so later mutation by the caller has no effect.
func NewHS256Signer(key []byte) (*HS256Signer, error) {
	if len(key) < MinKeySize {
		return nil, ErrShortKey
	}
	return &HS256Signer{key: append([]byte(nil), key...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}
