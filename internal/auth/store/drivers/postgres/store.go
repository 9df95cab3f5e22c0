package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orphanScanLimit = 500

// pool is the subset of *pgxpool.Pool the repos use, so pgxmock can stand in.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool pool
	url  string
}

// NewStore connects a pgx pool to databaseURL.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{pool: p, url: databaseURL}, nil
}

func newStoreWithPool(p pool) *Store {
	return &Store{pool: p}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Credentials() store.Credentials { return &credentialsRepo{pool: s.pool} }
func (s *Store) Profiles() store.Profiles       { return &profilesRepo{pool: s.pool} }

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapInsertError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %w", store.ErrAlreadyExists, err)
	}
	return err
}
