package service

import (
	"context"
	"strings"
	"time"
)

// DefaultStoreTimeout bounds every individual store round-trip.
const DefaultStoreTimeout = 5 * time.Second

// storeCtx derives the context for a single store call.
func storeCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// NormalizeEmail trims and lower-cases an email address. It returns "" when
// the result is not plausibly an address.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email
}
