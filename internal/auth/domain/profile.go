package domain

import "time"

// Profile is the public half of an account.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Salt      []byte // must equal Credential.Salt for the same email
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile is the client-facing view of a Profile. Internal ids and the
// salt are never exposed.
type PublicProfile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p Profile) Public() PublicProfile {
	return PublicProfile{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}
