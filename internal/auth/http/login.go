package http

import (
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
)

type LoginHandler struct {
	LoginService *service.LoginService
	Cookie       httpx.CookieConfig
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Checks email and password. On success sets the session cookie and returns the public profile.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.ProfileResponse	"Profile; Set-Cookie carries the session"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing field"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.LoginService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.SetCookie(w, h.Cookie, res.Session.Token)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse(res.Profile))
}
