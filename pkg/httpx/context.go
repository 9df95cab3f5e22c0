package httpx

import "context"

type ctxKey string

const (
	CtxKeyEmail     ctxKey = "email"
	CtxKeySessionID ctxKey = "session_id"
)

// WithSubject records the authenticated email and session id on ctx.
func WithSubject(ctx context.Context, email, sessionID string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyEmail, email)
	return context.WithValue(ctx, CtxKeySessionID, sessionID)
}

// SubjectFromContext returns what WithSubject stored. ok is false for
// unauthenticated requests.
func SubjectFromContext(ctx context.Context) (email, sessionID string, ok bool) {
	email, _ = ctx.Value(CtxKeyEmail).(string)
	sessionID, _ = ctx.Value(CtxKeySessionID).(string)
	return email, sessionID, email != "" && sessionID != ""
}
