package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Profile domain.PublicProfile
	Session IssuedSession
}

// LoginService checks credentials and starts sessions.
type LoginService struct {
	Store        store.Store
	Hasher       *PasswordHasher
	Sessions     *SessionService
	StoreTimeout time.Duration
}

// Login checks email and password and opens a session. Unknown emails, missing
// profiles and wrong passwords are indistinguishable to the caller.
func (s *LoginService) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	defer func() { metrics.RecordLogin(loginResult(err)) }()

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidRequest
	}

	log := slogx.FromContext(ctx).With(slog.String("email", email))

	cred, prof, err := s.lookup(ctx, email)
	if err != nil {
		log.Error("login lookup failed", slog.Any("error", err))
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if cred == nil {
		s.Hasher.Burn(ctx, password)
		log.Info("login failed", slog.String("reason", "no_credential"))
		return LoginResult{}, ErrInvalidCredentials
	}

	if prof != nil && !bytes.Equal(cred.Salt, prof.Salt) {
		log.Error("credential and profile salts differ")
		return LoginResult{}, ErrStoreInconsistent
	}

	ok, err := s.Hasher.Verify(ctx, password, cred.Salt, cred.Hash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if prof == nil {
		log.Info("login failed", slog.String("reason", "no_profile"))
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		log.Info("login failed", slog.String("reason", "bad_password"))
		return LoginResult{}, ErrInvalidCredentials
	}

	sess, err := s.Sessions.Issue(ctx, email)
	if err != nil {
		log.Error("failed to issue session", slog.Any("error", err))
		return LoginResult{}, err
	}

	log.Info("login succeeded", slog.String("sid", sess.ID))
	return LoginResult{Profile: prof.Public(), Session: sess}, nil
}

// lookup fetches both halves of the account concurrently. A missing half is
// reported as nil, not as an error.
func (s *LoginService) lookup(ctx context.Context, email string) (*domain.Credential, *domain.Profile, error) {
	var (
		cred *domain.Credential
		prof *domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, cancel := storeCtx(gctx, s.StoreTimeout)
		defer cancel()
		found, err := s.Store.Credentials().GetCredentialByEmail(c, email)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cred = &found
		return nil
	})
	g.Go(func() error {
		c, cancel := storeCtx(gctx, s.StoreTimeout)
		defer cancel()
		found, err := s.Store.Profiles().GetProfileByEmail(c, email)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		prof = &found
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cred, prof, nil
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrInvalidRequest):
		return metrics.ResultInvalid
	case errors.Is(err, ErrInvalidCredentials):
		return metrics.ResultBadLogin
	case errors.Is(err, ErrStoreInconsistent):
		return metrics.ResultInconsistent
	default:
		return metrics.ResultError
	}
}
