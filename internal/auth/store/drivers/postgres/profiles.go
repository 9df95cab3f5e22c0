package postgres

import (
	"context"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
)

const (
	getProfileByEmail = `SELECT id, email, first_name, last_name, salt, created_at, updated_at FROM profiles WHERE email = $1`
	profileExists     = `SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)`
	createProfile     = `
INSERT INTO profiles (id, email, first_name, last_name, salt, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

type profilesRepo struct {
	pool pool
}

func (r *profilesRepo) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx, getProfileByEmail, email).
		Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Salt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) ProfileExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, profileExists, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.pool.Exec(ctx, createProfile,
		p.ID, p.Email, p.FirstName, p.LastName, p.Salt, p.CreatedAt, p.UpdatedAt)
	return mapInsertError(err)
}
