package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
)

// DefaultOrphanGracePeriod is how long a credential may exist without a
// profile before the sweep treats it as abandoned. It must comfortably exceed
// the time a registration needs between its two inserts.
const DefaultOrphanGracePeriod = 10 * time.Minute

// HousekeepingService periodically prunes the session revocation list, removes
// credentials orphaned by failed registration rollbacks and reports accounts
// whose credential and profile salts disagree.
type HousekeepingService struct {
	Store        store.Store
	Sessions     *SessionService
	Logger       *slog.Logger
	Interval     time.Duration
	OrphanGrace  time.Duration
	StoreTimeout time.Duration

	// Internal channels for lifecycle management
	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(
	store store.Store,
	sessions *SessionService,
	logger *slog.Logger,
	interval, orphanGrace time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if orphanGrace <= 0 {
		orphanGrace = DefaultOrphanGracePeriod
	}

	return &HousekeepingService{
		Store:       store,
		Sessions:    sessions,
		Logger:      logger,
		Interval:    interval,
		OrphanGrace: orphanGrace,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
		s.Logger.Info("housekeeping service started", "interval", s.Interval)
	})
}

// Stop blocks until the worker has finished any in-progress cleanup. It is a
// no-op when Start was never called and safe to call more than once.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if !s.started.Load() {
			return
		}
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does not
// stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	s.Logger.Debug("starting housekeeping cleanup")

	pruned := 0
	if s.Sessions != nil {
		pruned = s.Sessions.PruneRevocations()
	}

	removed, err := s.sweepOrphans(ctx)
	if err != nil {
		s.Logger.Error("failed to sweep orphaned credentials", "error", err)
	}

	if err := s.checkSalts(ctx); err != nil {
		s.Logger.Error("failed to check salt consistency", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"revocations_pruned", pruned,
		"orphans_removed", removed,
	)
}

func (s *HousekeepingService) sweepOrphans(ctx context.Context) (int, error) {
	listCtx, cancel := storeCtx(ctx, s.StoreTimeout)
	orphans, err := s.Store.Credentials().ListOrphanedCredentials(listCtx, time.Now().Add(-s.OrphanGrace))
	cancel()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, c := range orphans {
		delCtx, cancel := storeCtx(ctx, s.StoreTimeout)
		err := s.Store.Credentials().DeleteCredential(delCtx, c.Email, c.Salt)
		cancel()
		switch {
		case err == nil:
			removed++
			s.Logger.Warn("removed orphaned credential", "email", c.Email, "created_at", c.CreatedAt)
		case errors.Is(err, store.ErrNotFound):
		default:
			s.Logger.Error("failed to remove orphaned credential", "email", c.Email, "error", err)
		}
	}

	metrics.RecordOrphansRemoved(removed)
	return removed, nil
}

func (s *HousekeepingService) checkSalts(ctx context.Context) error {
	c, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	emails, err := s.Store.Credentials().ListSaltMismatches(c)
	if err != nil {
		return err
	}
	for _, email := range emails {
		s.Logger.Error("credential and profile salts differ", "email", email)
	}
	return nil
}
