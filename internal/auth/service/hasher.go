package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher runs PBKDF2 derivations through a bounded pool so CPU-bound
// hashing cannot starve request handling.
type PasswordHasher struct {
	KDF cryptox.PBKDF2

	sem       *semaphore.Weighted
	dummySalt []byte
}

// NewPasswordHasher creates a hasher allowing at most concurrency derivations
// at once. A non-positive concurrency defaults to GOMAXPROCS.
func NewPasswordHasher(kdf cryptox.PBKDF2, concurrency int) (*PasswordHasher, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{
		KDF:       kdf,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		dummySalt: salt,
	}, nil
}

// Derive computes the stored hash for password under salt.
func (h *PasswordHasher) Derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	start := time.Now()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)
	defer func() { metrics.RecordPasswordHash(time.Since(start)) }()

	hash, err := h.KDF.DeriveHash([]byte(password), salt)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	return hash, nil
}

// Verify reports whether password derives to expected under salt.
func (h *PasswordHasher) Verify(ctx context.Context, password string, salt, expected []byte) (bool, error) {
	start := time.Now()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	defer func() { metrics.RecordPasswordHash(time.Since(start)) }()

	return h.KDF.Verify([]byte(password), salt, expected), nil
}

// Burn performs one derivation whose result is discarded, so a login for an
// unknown email costs the same as one with a wrong password.
func (h *PasswordHasher) Burn(ctx context.Context, password string) {
	_, _ = h.Derive(ctx, password, h.dummySalt)
}
