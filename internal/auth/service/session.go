package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/metrics"
	"github.com/aussiebroadwan/treasuremind/pkg/idx"
	"github.com/aussiebroadwan/treasuremind/pkg/jwtx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
)

// DefaultRevocationGrace is added to a revocation window so that a refresh
// already in flight when the session is revoked cannot outlive the entry.
const DefaultRevocationGrace = time.Minute

// SessionConfig configures a SessionService.
type SessionConfig struct {
	// Key is the HMAC signing key, at least 32 bytes. It is copied at
	// construction and never changes afterwards.
	Key    []byte
	Issuer string
	MaxAge time.Duration

	// RevocationGrace extends every revocation entry past MaxAge.
	RevocationGrace time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// IssuedSession is a session together with its signed token.
type IssuedSession struct {
	domain.Session
	Token string
}

// SessionService issues, validates, refreshes and revokes stateless session
// tokens.
type SessionService struct {
	MaxAge time.Duration

	issuer          string
	signer          jwtx.Signer
	verifier        jwtx.Verifier
	revoked         *RevocationList
	revocationGrace time.Duration
	now             func() time.Time
}

// NewSessionService builds a SessionService from cfg. The key must be at
// least jwtx.MinKeySize bytes.
func NewSessionService(cfg SessionConfig) (*SessionService, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = jwtx.DefaultSessionTTL
	}
	grace := cfg.RevocationGrace
	if grace <= 0 {
		grace = DefaultRevocationGrace
	}

	signer, err := jwtx.NewHS256Signer(cfg.Key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewHS256Verifier(cfg.Key, cfg.Issuer, now)
	if err != nil {
		return nil, err
	}

	return &SessionService{
		MaxAge:          maxAge,
		issuer:          cfg.Issuer,
		signer:          signer,
		verifier:        verifier,
		revoked:         NewRevocationList(),
		revocationGrace: grace,
		now:             now,
	}, nil
}

// Issue starts a new session for email.
func (s *SessionService) Issue(ctx context.Context, email string) (IssuedSession, error) {
	out, err := s.sign(email, idx.New().String())
	if err != nil {
		return IssuedSession{}, err
	}
	metrics.RecordSession(metrics.EventIssued)
	slogx.FromContext(ctx).Debug("session issued", slog.String("email", email), slog.String("sid", out.ID))
	return out, nil
}

// Validate checks a presented token. Every failure is reported as
// ErrUnauthenticated; the cause is only logged.
func (s *SessionService) Validate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		metrics.RecordSession(metrics.EventRejected)
		slogx.FromContext(ctx).Info("session rejected", slog.String("reason", reasonFor(err)))
		return domain.Session{}, ErrUnauthenticated
	}
	if s.revoked.IsRevoked(claims.SID, s.now()) {
		metrics.RecordSession(metrics.EventRejected)
		slogx.FromContext(ctx).Info("session rejected", slog.String("reason", "revoked"), slog.String("sid", claims.SID))
		return domain.Session{}, ErrUnauthenticated
	}

	return domain.Session{
		Email:     claims.Subject,
		ID:        claims.SID,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.Expiry(),
	}, nil
}

// Refresh re-issues a validated session with the same session id and a
// renewed expiry. A session revoked since it was validated is rejected with
// ErrUnauthenticated.
func (s *SessionService) Refresh(ctx context.Context, sess domain.Session) (IssuedSession, error) {
	if s.revoked.IsRevoked(sess.ID, s.now()) {
		metrics.RecordSession(metrics.EventRejected)
		slogx.FromContext(ctx).Info("session refresh rejected", slog.String("reason", "revoked"), slog.String("sid", sess.ID))
		return IssuedSession{}, ErrUnauthenticated
	}

	out, err := s.sign(sess.Email, sess.ID)
	if err != nil {
		return IssuedSession{}, err
	}
	metrics.RecordSession(metrics.EventRefreshed)
	return out, nil
}

// Revoke invalidates every token of the session, including ones already
// handed out by earlier refreshes.
func (s *SessionService) Revoke(ctx context.Context, sess domain.Session) {
	s.revoked.Revoke(sess.ID, s.now().Add(s.MaxAge+s.revocationGrace))
	metrics.RecordSession(metrics.EventRevoked)
	slogx.FromContext(ctx).Info("session revoked", slog.String("email", sess.Email), slog.String("sid", sess.ID))
}

// PruneRevocations drops revocation entries that can no longer match a live
// token.
func (s *SessionService) PruneRevocations() int {
	return s.revoked.Prune(s.now())
}

func (s *SessionService) sign(email, sid string) (IssuedSession, error) {
	now := s.now().UTC().Truncate(time.Second)
	claims := jwtx.NewSessionClaims(email, sid, s.MaxAge, s.issuer, now)
	token, err := s.signer.Sign(claims)
	if err != nil {
		return IssuedSession{}, fmt.Errorf("%w: sign session: %w", ErrInternal, err)
	}
	return IssuedSession{
		Session: domain.Session{
			Email:     email,
			ID:        sid,
			TokenID:   claims.ID,
			IssuedAt:  now,
			ExpiresAt: claims.Expiry(),
		},
		Token: token,
	}, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrInvalidSig):
		return "bad_signature"
	case errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	case errors.Is(err, jwtx.ErrIssuer):
		return "issuer"
	case errors.Is(err, jwtx.ErrNotYetValid):
		return "not_yet_valid"
	default:
		return "invalid_claims"
	}
}
