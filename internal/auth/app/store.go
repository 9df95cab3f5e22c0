package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store/drivers/sqlite"
)

// OpenStore connects to the store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case DriverSQLite:
		db, err := sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverPostgres:
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, cfg.StoreDriver)
	}
}

// Migrate opens the configured store, applies all migrations and closes it.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return nil
}
