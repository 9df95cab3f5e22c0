package http

import (
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
)

type RegisterHandler struct {
	RegistrationService *service.RegistrationService
}

// ServeHTTP handles account registration.
//
//	@Summary		Create an account
//	@Description	Stores a credential and a profile for a new email. Does not log the user in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	authsdk.RegisterRequest	true	"New account"
//	@Success		200		"Account created"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing field"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Email already exists"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/auth/create [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.RegistrationService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
}
