package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/aussiebroadwan/treasuremind/pkg/idx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const (
	rollbackAttempts = 3
	rollbackBackoff  = 50 * time.Millisecond
)

// RegisterInput is a registration request as received from the client.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// RegistrationService creates the credential and profile of a new account.
type RegistrationService struct {
	Store        store.Store
	Hasher       *PasswordHasher
	StoreTimeout time.Duration

	// GenerateSalt overrides salt generation, for tests.
	GenerateSalt func() ([]byte, error)
}

// Register creates the credential and profile for a new account. Both rows
// share one freshly generated salt. The unique index on email decides races;
// a profile insert that loses one undoes this call's credential.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (err error) {
	defer func() { metrics.RecordRegistration(registrationResult(err)) }()

	email := NormalizeEmail(in.Email)
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if email == "" || first == "" || last == "" || in.Password == "" {
		return ErrInvalidRequest
	}

	log := slogx.FromContext(ctx).With(slog.String("email", email))

	// 1. Fast path; the inserts below are authoritative
	if err := s.precheck(ctx, email); err != nil {
		if errors.Is(err, ErrStoreInconsistent) {
			log.Error("registration found credential without profile")
		}
		return err
	}

	// 2. Salt and hash
	genSalt := s.GenerateSalt
	if genSalt == nil {
		genSalt = cryptox.GenerateSalt
	}
	salt, err := genSalt()
	if err != nil {
		log.Error("failed to generate salt", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	hash, err := s.Hasher.Derive(ctx, in.Password, salt)
	if err != nil {
		log.Error("failed to derive password hash", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	now := time.Now().UTC()

	// 3. Credential
	cred := domain.Credential{
		ID:        idx.New().String(),
		Email:     email,
		Salt:      salt,
		Hash:      hash,
		CreatedAt: now,
	}
	if err := s.createCredential(ctx, cred); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("registration lost race on credential insert")
			return ErrEmailExists
		}
		log.Error("failed to create credential", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}

	// 4. Profile
	prof := domain.Profile{
		ID:        idx.New().String(),
		Email:     email,
		FirstName: first,
		LastName:  last,
		Salt:      salt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.createProfile(ctx, prof); err != nil {
		s.rollback(ctx, email, salt)
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Error("profile already present for new credential")
			return fmt.Errorf("%w: %w", ErrStoreInconsistent, err)
		}
		log.Error("failed to create profile", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}

	log.Info("account registered")
	return nil
}

func (s *RegistrationService) precheck(ctx context.Context, email string) error {
	var credExists, profExists bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, cancel := storeCtx(gctx, s.StoreTimeout)
		defer cancel()
		var err error
		credExists, err = s.Store.Credentials().CredentialExists(c, email)
		return err
	})
	g.Go(func() error {
		c, cancel := storeCtx(gctx, s.StoreTimeout)
		defer cancel()
		var err error
		profExists, err = s.Store.Profiles().ProfileExists(c, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	switch {
	case profExists:
		return ErrEmailExists
	case credExists:
		return ErrStoreInconsistent
	default:
		return nil
	}
}

func (s *RegistrationService) createCredential(ctx context.Context, c domain.Credential) error {
	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	return s.Store.Credentials().CreateCredential(ctx, c)
}

func (s *RegistrationService) createProfile(ctx context.Context, p domain.Profile) error {
	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	return s.Store.Profiles().CreateProfile(ctx, p)
}

// rollback deletes the credential this call inserted. A failure leaves an
// incomplete account for the orphan sweep.
func (s *RegistrationService) rollback(ctx context.Context, email string, salt []byte) {
	log := slogx.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	backoff := retry.WithMaxRetries(rollbackAttempts, retry.NewExponential(rollbackBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, cancel := storeCtx(ctx, s.StoreTimeout)
		defer cancel()
		err := s.Store.Credentials().DeleteCredential(c, email, salt)
		switch {
		case err == nil, errors.Is(err, store.ErrNotFound):
			return nil
		default:
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		log.Error("registration rollback failed, account left incomplete",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return
	}
	log.Info("registration rolled back credential", slog.String("email", email))
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrInvalidRequest):
		return metrics.ResultInvalid
	case errors.Is(err, ErrEmailExists):
		return metrics.ResultExists
	case errors.Is(err, ErrStoreInconsistent):
		return metrics.ResultInconsistent
	default:
		return metrics.ResultError
	}
}
