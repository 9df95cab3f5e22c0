package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/pkg/idx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHousekeeping_SweepsOrphans(t *testing.T) {
	st := newTestStore(t)
	env := newTestEnv(t, st)
	ctx := context.Background()

	require.NoError(t, env.register.Register(ctx, validInput("full@example.com")))
	require.NoError(t, st.Credentials().CreateCredential(ctx, domain.Credential{
		ID: idx.New().String(), Email: "orphan@example.com",
		Salt: make([]byte, 32), Hash: make([]byte, 32),
		CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, st.Credentials().CreateCredential(ctx, domain.Credential{
		ID: idx.New().String(), Email: "inflight@example.com",
		Salt: make([]byte, 32), Hash: make([]byte, 32),
		CreatedAt: time.Now(),
	}))

	hk := NewHousekeepingService(st, env.sessions, discardLogger(), time.Hour, 10*time.Minute)
	hk.Cleanup(ctx)

	creds, _ := countRows(t, st, "orphan@example.com")
	require.Zero(t, creds)
	creds, _ = countRows(t, st, "inflight@example.com")
	require.Equal(t, 1, creds, "within grace period")
	creds, profs := countRows(t, st, "full@example.com")
	require.Equal(t, 1, creds)
	require.Equal(t, 1, profs)

	// a swept email can register again
	require.NoError(t, env.register.Register(ctx, validInput("orphan@example.com")))
}

func TestHousekeeping_PrunesRevocations(t *testing.T) {
	clock := newTestClock(time.Now())
	sessions := newTestSessions(t, clock.Now)
	ctx := context.Background()

	issued, err := sessions.Issue(ctx, "ada@example.com")
	require.NoError(t, err)
	sessions.Revoke(ctx, issued.Session)
	clock.Advance(sessions.MaxAge + DefaultRevocationGrace + time.Second)

	hk := NewHousekeepingService(newTestStore(t), sessions, discardLogger(), time.Hour, 0)
	hk.Cleanup(ctx)
	require.Zero(t, sessions.revoked.size())
}

func TestHousekeeping_StartStop(t *testing.T) {
	st := newTestStore(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hk := NewHousekeepingService(st, nil, discardLogger(), 10*time.Millisecond, 0)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
	hk.Stop()
}

func TestHousekeeping_ConcurrentStartStop(t *testing.T) {
	st := newTestStore(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hk := NewHousekeepingService(st, nil, discardLogger(), time.Hour, 0)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() { defer wg.Done(); hk.Start() }()
		go func() { defer wg.Done(); hk.Stop() }()
	}
	wg.Wait()
	require.True(t, hk.started.Load())
}

func TestHousekeeping_StopWithoutStart(t *testing.T) {
	hk := NewHousekeepingService(nil, nil, discardLogger(), time.Hour, 0)

	done := make(chan struct{})
	go func() {
		hk.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running worker")
	}
}

func TestNewHousekeepingService_Defaults(t *testing.T) {
	hk := NewHousekeepingService(nil, nil, discardLogger(), 0, 0)
	require.Equal(t, time.Minute, hk.Interval)
	require.Equal(t, DefaultOrphanGracePeriod, hk.OrphanGrace)
}
