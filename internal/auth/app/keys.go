package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
)

// InitSessionKey generates the HMAC key for session tokens. The key lives only
// in memory, so every restart invalidates all outstanding sessions.
func InitSessionKey(logger *slog.Logger) ([]byte, error) {
	key, err := cryptox.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	logger.Info("generated ephemeral session key", slog.Int("bits", len(key)*8))
	logger.Warn("all existing sessions are now invalid due to key generation on startup")
	return key, nil
}
