package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

const (
	getCredentialByEmail = `SELECT id, email, salt, hash, created_at FROM credentials WHERE email = $1`
	credentialExists     = `SELECT EXISTS (SELECT 1 FROM credentials WHERE email = $1)`
	createCredential     = `INSERT INTO credentials (id, email, salt, hash, created_at) VALUES ($1, $2, $3, $4, $5)`
	deleteCredential     = `DELETE FROM credentials WHERE email = $1 AND salt = $2`

	listOrphanedCredentials = `
SELECT c.id, c.email, c.salt, c.hash, c.created_at
FROM credentials c
WHERE c.created_at < $1
  AND NOT EXISTS (SELECT 1 FROM profiles p WHERE p.email = c.email)
ORDER BY c.created_at
LIMIT $2`

	listSaltMismatches = `
SELECT c.email
FROM credentials c
JOIN profiles p ON p.email = c.email
WHERE c.salt <> p.salt
ORDER BY c.email`
)

type credentialsRepo struct {
	pool pool
}

func (r *credentialsRepo) GetCredentialByEmail(ctx context.Context, email string) (domain.Credential, error) {
	var c domain.Credential
	err := r.pool.QueryRow(ctx, getCredentialByEmail, email).
		Scan(&c.ID, &c.Email, &c.Salt, &c.Hash, &c.CreatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) CredentialExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, credentialExists, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	_, err := r.pool.Exec(ctx, createCredential, c.ID, c.Email, c.Salt, c.Hash, c.CreatedAt)
	return mapInsertError(err)
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, email string, salt []byte) error {
	tag, err := r.pool.Exec(ctx, deleteCredential, email, salt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialsRepo) ListOrphanedCredentials(ctx context.Context, olderThan time.Time) ([]domain.Credential, error) {
	rows, err := r.pool.Query(ctx, listOrphanedCredentials, olderThan, orphanScanLimit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Credential, error) {
		var c domain.Credential
		err := row.Scan(&c.ID, &c.Email, &c.Salt, &c.Hash, &c.CreatedAt)
		return c, err
	})
}

func (r *credentialsRepo) ListSaltMismatches(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listSaltMismatches)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
