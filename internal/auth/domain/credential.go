package domain

import "time"

// Credential is the secret half of an account. It is created once at
// registration and never mutated.
type Credential struct {
	ID        string // ULID
	Email     string // unique, normalised
	Salt      []byte // 32 bytes, duplicated on the matching Profile
	Hash      []byte // PBKDF2-HMAC-SHA256(password, Salt)
	CreatedAt time.Time
}
