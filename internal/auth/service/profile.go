package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
)

// ProfileService reads profiles for authenticated sessions.
type ProfileService struct {
	Store        store.Store
	StoreTimeout time.Duration
}

// GetProfile returns the profile behind an authenticated session. A session
// whose profile no longer exists is no longer authenticated.
func (s *ProfileService) GetProfile(ctx context.Context, email string) (domain.Profile, error) {
	c, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	prof, err := s.Store.Profiles().GetProfileByEmail(c, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("session refers to missing profile", slog.String("email", email))
			return domain.Profile{}, ErrUnauthenticated
		}
		slogx.FromContext(ctx).Error("failed to fetch profile", slog.String("email", email), slog.Any("error", err))
		return domain.Profile{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return prof, nil
}
