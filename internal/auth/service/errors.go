package service

import "errors"

// Error categories returned by the auth services. Causes are attached with
// fmt.Errorf("%w: %w", category, cause) so errors.Is works on both.
var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrEmailExists        = errors.New("email_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrStoreInconsistent  = errors.New("store_inconsistent")
	ErrDerivationFailed   = errors.New("derivation_failed")
	ErrStoreWriteFailed   = errors.New("store_write_failed")
	ErrInternal           = errors.New("internal_error")
)
