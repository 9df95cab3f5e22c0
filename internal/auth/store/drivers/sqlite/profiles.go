package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
)

const (
	getProfileByEmail = `SELECT id, email, first_name, last_name, salt, created_at, updated_at FROM profiles WHERE email = ?`
	profileExists     = `SELECT EXISTS (SELECT 1 FROM profiles WHERE email = ?)`
	createProfile     = `
INSERT INTO profiles (id, email, first_name, last_name, salt, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
)

type profilesRepo struct {
	db *sql.DB
}

func (r *profilesRepo) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, getProfileByEmail, email).
		Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Salt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) ProfileExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, profileExists, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, createProfile,
		p.ID, p.Email, p.FirstName, p.LastName, p.Salt, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return mapInsertError(err)
}
