package authsdk

import (
	"context"
	"net/http"
)

// Register creates a new account. It does not log the user in.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/create", req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Login authenticates with email and password. On success the session cookie
// is stored in the client's jar and the public profile is returned.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*ProfileResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var profile ProfileResponse
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Profile fetches the profile of the current session. The server refreshes the
// session cookie on every successful call.
func (c *SDKClient) Profile(ctx context.Context) (*ProfileResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth", nil)
	if err != nil {
		return nil, err
	}

	var profile ProfileResponse
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout ends the current session. The server revokes the session and clears
// the cookie.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/auth", nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
