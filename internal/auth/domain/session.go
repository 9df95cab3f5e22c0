package domain

import "time"

// Session is the decoded content of a valid session token.
type Session struct {
	Email     string
	ID        string // stable across refreshes
	TokenID   string // jti, new on every refresh
	IssuedAt  time.Time
	ExpiresAt time.Time
}
