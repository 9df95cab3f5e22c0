package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testIssuer = "treasuremind-test"

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(cryptox.PBKDF2{Iterations: 1000}, 4)
	require.NoError(t, err)
	return h
}

type testClock struct{ now atomic.Int64 }

func newTestClock(t time.Time) *testClock {
	c := &testClock{}
	c.Set(t)
	return c
}

func (c *testClock) Now() time.Time          { return time.Unix(0, c.now.Load()).UTC() }
func (c *testClock) Set(t time.Time)         { c.now.Store(t.UnixNano()) }
func (c *testClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

func newTestSessions(t *testing.T, now func() time.Time) *SessionService {
	t.Helper()
	s, err := NewSessionService(SessionConfig{
		Key:    cryptox.MustGenerateKey(),
		Issuer: testIssuer,
		MaxAge: 15 * time.Minute,
		Now:    now,
	})
	require.NoError(t, err)
	return s
}

type testEnv struct {
	store    store.Store
	hasher   *PasswordHasher
	sessions *SessionService
	register *RegistrationService
	login    *LoginService
	profiles *ProfileService
}

func newTestEnv(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	hasher := newTestHasher(t)
	sessions := newTestSessions(t, nil)
	return &testEnv{
		store:    st,
		hasher:   hasher,
		sessions: sessions,
		register: &RegistrationService{Store: st, Hasher: hasher},
		login:    &LoginService{Store: st, Hasher: hasher, Sessions: sessions},
		profiles: &ProfileService{Store: st},
	}
}

func validInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct horse battery staple",
	}
}

// faultyStore wraps a real store and lets tests inject failures per call.
type faultyStore struct {
	store.Store

	createCredentialErr error
	createProfileErr    error
	deleteCredentialErr error
	getCredentialErr    error
	getProfileErr       error
	existsErr           error

	deleteCalls atomic.Int32
}

func (f *faultyStore) Credentials() store.Credentials {
	return &faultyCredentials{Credentials: f.Store.Credentials(), f: f}
}

func (f *faultyStore) Profiles() store.Profiles {
	return &faultyProfiles{Profiles: f.Store.Profiles(), f: f}
}

type faultyCredentials struct {
	store.Credentials
	f *faultyStore
}

func (c *faultyCredentials) CreateCredential(ctx context.Context, cred domain.Credential) error {
	if c.f.createCredentialErr != nil {
		return c.f.createCredentialErr
	}
	return c.Credentials.CreateCredential(ctx, cred)
}

func (c *faultyCredentials) DeleteCredential(ctx context.Context, email string, salt []byte) error {
	c.f.deleteCalls.Add(1)
	if c.f.deleteCredentialErr != nil {
		return c.f.deleteCredentialErr
	}
	return c.Credentials.DeleteCredential(ctx, email, salt)
}

func (c *faultyCredentials) GetCredentialByEmail(ctx context.Context, email string) (domain.Credential, error) {
	if c.f.getCredentialErr != nil {
		return domain.Credential{}, c.f.getCredentialErr
	}
	return c.Credentials.GetCredentialByEmail(ctx, email)
}

func (c *faultyCredentials) CredentialExists(ctx context.Context, email string) (bool, error) {
	if c.f.existsErr != nil {
		return false, c.f.existsErr
	}
	return c.Credentials.CredentialExists(ctx, email)
}

type faultyProfiles struct {
	store.Profiles
	f *faultyStore
}

func (p *faultyProfiles) CreateProfile(ctx context.Context, prof domain.Profile) error {
	if p.f.createProfileErr != nil {
		return p.f.createProfileErr
	}
	return p.Profiles.CreateProfile(ctx, prof)
}

func (p *faultyProfiles) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	if p.f.getProfileErr != nil {
		return domain.Profile{}, p.f.getProfileErr
	}
	return p.Profiles.GetProfileByEmail(ctx, email)
}

// slowStore blocks profile reads until the context is done.
type slowStore struct {
	store.Store
}

func (s *slowStore) Profiles() store.Profiles { return &slowProfiles{Profiles: s.Store.Profiles()} }

type slowProfiles struct {
	store.Profiles
}

func (p *slowProfiles) GetProfileByEmail(ctx context.Context, _ string) (domain.Profile, error) {
	<-ctx.Done()
	return domain.Profile{}, ctx.Err()
}

func countRows(t *testing.T, st store.Store, email string) (creds, profs int) {
	t.Helper()
	ctx := context.Background()
	if ok, err := st.Credentials().CredentialExists(ctx, email); err == nil && ok {
		creds = 1
	} else {
		require.NoError(t, err)
	}
	if ok, err := st.Profiles().ProfileExists(ctx, email); err == nil && ok {
		profs = 1
	} else {
		require.NoError(t, err)
	}
	return creds, profs
}
