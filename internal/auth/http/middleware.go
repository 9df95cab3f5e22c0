package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/domain"
	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
)

// RequireSession rejects requests without a valid session cookie with 401.
// An invalid cookie is cleared.
func RequireSession(sessions *service.SessionService, cookie httpx.CookieConfig) httpx.Middleware {
	return sessionMiddleware(sessions, cookie, true)
}

// OptionalSession attaches the session when the cookie is valid and lets the
// request through either way. An invalid cookie is cleared.
func OptionalSession(sessions *service.SessionService, cookie httpx.CookieConfig) httpx.Middleware {
	return sessionMiddleware(sessions, cookie, false)
}

func sessionMiddleware(sessions *service.SessionService, cookie httpx.CookieConfig, required bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httpx.CookieValue(r, cookie.Name)
			if token == "" {
				if required {
					authsdk.ErrUnauthenticated.WriteError(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Validate(r.Context(), token)
			if err != nil {
				httpx.ClearCookie(w, cookie)
				if required {
					authsdk.ErrUnauthenticated.WriteError(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := httpx.WithSubject(r.Context(), sess.Email, sess.ID)
			ctx = slogx.With(ctx, slog.String("email", sess.Email), slog.String("sid", sess.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromRequest returns the session attached by the session middleware.
func sessionFromRequest(r *http.Request) (domain.Session, bool) {
	email, sid, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		return domain.Session{}, false
	}
	return domain.Session{Email: email, ID: sid}, true
}
