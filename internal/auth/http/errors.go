package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"
)

// writeServiceError maps a service error category onto its HTTP response.
// Causes never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrEmailExists):
		authsdk.ErrEmailExists.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUnauthenticated):
		authsdk.ErrUnauthenticated.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		authsdk.ErrServerError.WriteError(w)
	}
}
