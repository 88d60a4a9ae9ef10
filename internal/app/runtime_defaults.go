package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/database"
)

const jwtSecretBytes = 48

// ApplyRuntimeDefaults fills secrets the configuration left empty. When db is
// set the generated JWT secret is persisted as a system setting, so tokens
// minted by directoryctl keep verifying across restarts. The returned map names
// the keys that were generated without exposing their values.
func ApplyRuntimeDefaults(ctx context.Context, cfg *Config, db *gorm.DB) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := generateHexKey(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		if db != nil {
			secret, err = database.EnsureSystemSetting(ctx, db, database.JWTSecretSetting, secret)
			if err != nil {
				return nil, fmt.Errorf("persist jwt secret: %w", err)
			}
		}
		cfg.Auth.JWT.Secret = secret
		generated[database.JWTSecretSetting] = true
	}

	return generated, nil
}

func generateHexKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
