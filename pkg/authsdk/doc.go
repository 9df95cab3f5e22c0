/*
Package authsdk provides a client SDK for the treasuremind authentication service.

# Overview

The service authenticates users with an email and password and keeps the
session in a signed, HttpOnly cookie named "Authorization". SDKClient wraps
the JSON endpoints under /api/auth and carries that cookie in its own cookie
jar, so one client value represents one browser-like session.

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Create an account
	err = client.Register(ctx, authsdk.RegisterRequest{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "correct horse battery staple",
	})

	// Log in; the session cookie is now held by client
	profile, err := client.Login(ctx, "alice@example.com", "correct horse battery staple")

	// Fetch the profile again; the server slides the session expiry
	profile, err = client.Profile(ctx)

	// End the session
	err = client.Logout(ctx)

# Sessions

Sessions expire after a fixed idle period (15 minutes by default). Every
successful Profile call returns a fresh cookie with a renewed expiry. Logout
revokes the session server-side, so a copy of an old cookie stops working as
well.

SessionToken and SetSessionToken expose the raw cookie, which is mostly
useful in tests that replay or tamper with tokens.

# Error Handling

Failed calls return *APIError carrying the HTTP status, a machine readable
code and a generic description. Compare with errors.Is against the
predefined values:

	_, err := client.Login(ctx, email, password)
	switch {
	case errors.Is(err, authsdk.ErrInvalidCredentials):
		// wrong email or password
	case errors.Is(err, authsdk.ErrInvalidRequest):
		// missing fields
	case err != nil:
		return err
	}

Registration of a taken email fails with ErrEmailExists. Calls that need a
session fail with ErrUnauthenticated when the cookie is missing, expired or
revoked.

# Thread Safety

SDKClient is safe for concurrent use, but all goroutines sharing one client
share one session cookie.
*/
package authsdk
