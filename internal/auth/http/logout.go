package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
)

type LogoutHandler struct {
	SessionService *service.SessionService
	Cookie         httpx.CookieConfig
}

// ServeHTTP ends the current session.
//
//	@Summary		Log out
//	@Description	Revokes the session and clears the cookie. Requests without a valid session get 401.
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	"Session ended"
//	@Failure		401	{object}	authsdk.ErrorResponse	"No valid session"
//	@Router			/api/auth [delete].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	sess, ok := sessionFromRequest(r)
	if !ok {
		log.Info("logout", slog.Bool("had_session", false))
		authsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	h.SessionService.Revoke(r.Context(), sess)
	httpx.ClearCookie(w, h.Cookie)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)

	log.Info("logout", slog.Bool("had_session", true))
}
