package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error returned by the service.
type ErrorResponse struct {
	// Error is the machine readable code (e.g., "invalid_request")
	Error string `json:"error" example:"invalid_request"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description" example:"the request is malformed or missing required fields"`
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest is the body of POST /api/auth/create.
type RegisterRequest struct {
	Email     string `json:"email" example:"alice@example.com"`
	FirstName string `json:"first_name" example:"Alice"`
	LastName  string `json:"last_name" example:"Smith"`
	Password  string `json:"password" example:"correct horse battery staple"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// ProfileResponse is the public view of a profile returned by login and
// GET /api/auth. It never carries salts, hashes or internal ids.
type ProfileResponse struct {
	Email     string `json:"email" example:"alice@example.com"`
	FirstName string `json:"first_name" example:"Alice"`
	LastName  string `json:"last_name" example:"Smith"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Status is the overall health status: "ok" or "degraded"
	Status string `json:"status" example:"ok"`

	// Uptime is how long the process has been running
	Uptime string `json:"uptime" example:"1h2m3s"`

	// Version is the build version of the service
	Version string `json:"version" example:"0.1.0"`

	// Checks contains individual component health checks (optional)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks contains individual component health check results.
type HealthChecks struct {
	// Database indicates the database connectivity status
	Database string `json:"database" example:"ok"`
}
