package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Credentials and profiles live in two independent tables
// with no transaction spanning both; the unique index on email in each is the
// only arbiter of concurrent registrations.
type Store interface {
	Credentials() Credentials
	Profiles() Profiles

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Credentials interface {
	// GetCredentialByEmail is used during login.
	GetCredentialByEmail(ctx context.Context, email string) (domain.Credential, error)

	// CredentialExists is the registration fast-path check.
	CredentialExists(ctx context.Context, email string) (bool, error)

	// CreateCredential inserts a credential (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateCredential(ctx context.Context, c domain.Credential) error

	// DeleteCredential removes the credential only if both email and salt
	// match, so a rollback can never remove another registration's row.
	// Returns ErrNotFound when nothing matched.
	DeleteCredential(ctx context.Context, email string, salt []byte) error

	// ListOrphanedCredentials returns credentials with no profile that were
	// created before olderThan.
	ListOrphanedCredentials(ctx context.Context, olderThan time.Time) ([]domain.Credential, error)

	// ListSaltMismatches returns emails whose credential and profile salts
	// differ.
	ListSaltMismatches(ctx context.Context) ([]string, error)
}

type Profiles interface {
	// GetProfileByEmail is used by login and profile fetch.
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error)

	// ProfileExists is the registration fast-path check.
	ProfileExists(ctx context.Context, email string) (bool, error)

	// CreateProfile inserts a profile. Returns ErrAlreadyExists when the email
	// is taken.
	CreateProfile(ctx context.Context, p domain.Profile) error
}
