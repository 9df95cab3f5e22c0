package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/aussiebroadwan/treasuremind/pkg/jwtx"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer       string        // Optional: issuer claim for session tokens (default: treasuremind-auth)
	StoreDriver  string        // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL  string        // Required for postgres: connection URL
	AutoMigrate  bool          // Optional: apply migrations on startup (default: true)
	StoreTimeout time.Duration // Optional: bound on every store round-trip (default: 5s)

	PBKDF2Iterations int  // Optional: PBKDF2-HMAC-SHA256 iteration count (default: 600000)
	HashConcurrency  int  // Optional: parallel password derivations (default: GOMAXPROCS)
	CookieSecure     bool // Optional: set the Secure cookie attribute (default: true)

	SessionMaxAge     time.Duration // Optional: sliding session lifetime (default: 15m)
	OrphanGracePeriod time.Duration // Optional: age before an incomplete registration is swept (default: 10m)

	Env                  string        // Environment (dev, test, staging, prod) (default: prod)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

func LoadConfig() Config {
	return Config{
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "treasuremind-auth"),
		StoreDriver:  strings.ToLower(getEnvOrDefault("AUTH_STORE_DRIVER", DriverSQLite)),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:  os.Getenv("AUTH_DATABASE_URL"),
		AutoMigrate:  getEnvBoolOrDefault("AUTH_AUTO_MIGRATE", true),
		StoreTimeout: getEnvDurationOrDefault("AUTH_STORE_TIMEOUT", 5*time.Second),

		PBKDF2Iterations: getEnvIntOrDefault("AUTH_PBKDF2_ITERATIONS", cryptox.DefaultIterations),
		HashConcurrency:  getEnvIntOrDefault("AUTH_HASH_CONCURRENCY", 0),
		CookieSecure:     getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),

		SessionMaxAge:     getEnvDurationOrDefault("AUTH_SESSION_MAX_AGE", jwtx.DefaultSessionTTL),
		OrphanGracePeriod: getEnvDurationOrDefault("AUTH_ORPHAN_GRACE_PERIOD", 10*time.Minute),

		Env:                  getEnvOrDefault("ENV", "prod"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

// Validate reports the first problem with cfg, wrapped in ErrInvalidConfig.
func (cfg Config) Validate() error {
	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DatabaseFile == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_FILE is empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_URL is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, cfg.StoreDriver)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"AUTH_STORE_TIMEOUT", cfg.StoreTimeout},
		{"AUTH_SESSION_MAX_AGE", cfg.SessionMaxAge},
		{"AUTH_ORPHAN_GRACE_PERIOD", cfg.OrphanGracePeriod},
		{"SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod},
		{"HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}

	if cfg.SessionMaxAge < time.Second {
		return fmt.Errorf("%w: AUTH_SESSION_MAX_AGE must be at least 1s", ErrInvalidConfig)
	}
	if cfg.PBKDF2Iterations <= 0 {
		return fmt.Errorf("%w: AUTH_PBKDF2_ITERATIONS must be positive", ErrInvalidConfig)
	}
	if cfg.PBKDF2Iterations < cryptox.MinIterations && !cfg.isDevOrTest() {
		return fmt.Errorf("%w: AUTH_PBKDF2_ITERATIONS below %d outside dev/test", ErrInvalidConfig, cryptox.MinIterations)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: PORT %d out of range", ErrInvalidConfig, cfg.Port)
	}

	return nil
}

func (cfg Config) isDevOrTest() bool {
	return cfg.Env == "dev" || cfg.Env == "test"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
