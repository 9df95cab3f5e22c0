package jwtx

import (
	"time"

	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default sliding lifetime of a session token.
const DefaultSessionTTL = 15 * time.Minute

// Claims are session-token claims. Subject carries the authenticated email.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, stable across refreshes of the same login.
	SID string `json:"sid"`
}

// NewSessionClaims builds minimally-correct claims for a session token.
func NewSessionClaims(
	subject, sid string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID: sid,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	// crypto/rand does not fail on supported platforms
	id, _ := cryptox.GenerateToken(cryptox.TokenSize128)
	return id
}

// Expiry returns the absolute expiry time, or the zero time if unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
