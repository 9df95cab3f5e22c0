package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
)

const (
	getCredentialByEmail = `SELECT id, email, salt, hash, created_at FROM credentials WHERE email = ?`
	credentialExists     = `SELECT EXISTS (SELECT 1 FROM credentials WHERE email = ?)`
	createCredential     = `INSERT INTO credentials (id, email, salt, hash, created_at) VALUES (?, ?, ?, ?, ?)`
	deleteCredential     = `DELETE FROM credentials WHERE email = ? AND salt = ?`

	listOrphanedCredentials = `
SELECT c.id, c.email, c.salt, c.hash, c.created_at
FROM credentials c
WHERE c.created_at < ?
  AND NOT EXISTS (SELECT 1 FROM profiles p WHERE p.email = c.email)
ORDER BY c.created_at
LIMIT ?`

	listSaltMismatches = `
SELECT c.email
FROM credentials c
JOIN profiles p ON p.email = c.email
WHERE c.salt <> p.salt
ORDER BY c.email`
)

type credentialsRepo struct {
	db *sql.DB
}

func (r *credentialsRepo) GetCredentialByEmail(ctx context.Context, email string) (domain.Credential, error) {
	var c domain.Credential
	err := r.db.QueryRowContext(ctx, getCredentialByEmail, email).
		Scan(&c.ID, &c.Email, &c.Salt, &c.Hash, &c.CreatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) CredentialExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, credentialExists, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	_, err := r.db.ExecContext(ctx, createCredential,
		c.ID, c.Email, c.Salt, c.Hash, c.CreatedAt.UTC())
	return mapInsertError(err)
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, email string, salt []byte) error {
	res, err := r.db.ExecContext(ctx, deleteCredential, email, salt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *credentialsRepo) ListOrphanedCredentials(ctx context.Context, olderThan time.Time) ([]domain.Credential, error) {
	rows, err := r.db.QueryContext(ctx, listOrphanedCredentials, olderThan.UTC(), orphanScanLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.ID, &c.Email, &c.Salt, &c.Hash, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) ListSaltMismatches(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listSaltMismatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
