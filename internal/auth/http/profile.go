package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
	SessionService *service.SessionService
	Cookie         httpx.CookieConfig
}

// ServeHTTP returns the profile of the current session and slides its expiry.
//
//	@Summary		Get the current profile
//	@Description	Returns the public profile for the session cookie and sets a refreshed cookie.
//	@Tags			Auth
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Profile; Set-Cookie carries the refreshed session"
//	@Failure		401	{object}	authsdk.ErrorResponse	"No valid session"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/auth [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		authsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	prof, err := h.ProfileService.GetProfile(r.Context(), sess.Email)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			httpx.ClearCookie(w, h.Cookie)
		}
		writeServiceError(w, r, err)
		return
	}

	refreshed, err := h.SessionService.Refresh(r.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			httpx.ClearCookie(w, h.Cookie)
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.SetCookie(w, h.Cookie, refreshed.Token)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse(prof.Public()))
}
