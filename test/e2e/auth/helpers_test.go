//go:build e2e

package auth_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, account operations, and assertions.
 */

const (
	testImageName = "treasuremind-auth-test:latest"

	testEmail     = "alice@example.com"
	testFirstName = "Alice"
	testLastName  = "Smith"
	testPassword  = "correct horse battery staple"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAuthContainer starts the auth service in a container and returns the
// base URL. extraEnv overrides the defaults.
func setupAuthContainer(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_DATABASE_FILE":     "/data/auth.db",
		"AUTH_ISSUER":            "treasuremind-auth",
		"AUTH_COOKIE_SECURE":     "false", // plain HTTP between test and container
		"AUTH_PBKDF2_ITERATIONS": "1000",
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// registerAndLogin creates the default test account and logs client in.
func registerAndLogin(t *testing.T, client *authsdk.SDKClient) *authsdk.ProfileResponse {
	t.Helper()
	ctx := t.Context()

	err := client.Register(ctx, authsdk.RegisterRequest{
		Email:     testEmail,
		FirstName: testFirstName,
		LastName:  testLastName,
		Password:  testPassword,
	})
	require.NoError(t, err, "Register should succeed")

	profile, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err, "Login should succeed")
	require.NotEmpty(t, client.SessionToken(), "Login should set the session cookie")

	return profile
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertUnauthenticated verifies err is the service's 401 for a missing or
// invalid session.
func assertUnauthenticated(t *testing.T, err error, context string) {
	t.Helper()
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated, context)
}
