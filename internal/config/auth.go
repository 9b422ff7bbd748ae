// Package config: API auth configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the settings for token issuance and verification. Callers
// exchange the admin token for a short-lived JWT; the admin token itself is
// only ever stored as a bcrypt hash.
type AuthConfig struct {
	JWTSecret       string
	ExpirationHours int
	AdminTokenHash  string
}

// NewAuthConfig reads auth settings from the environment: JWT_SECRET and
// ADMIN_TOKEN_HASH (both required), JWT_EXPIRATION_HOURS (default: 24).
func NewAuthConfig() (*AuthConfig, error) {
	cfg := &AuthConfig{
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ExpirationHours: 24,
		AdminTokenHash:  os.Getenv("ADMIN_TOKEN_HASH"),
	}
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		cfg.ExpirationHours = hours
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) normalize() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if c.AdminTokenHash == "" {
		return fmt.Errorf("ADMIN_TOKEN_HASH is required but not set")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// VerifyAdminToken checks a presented admin token against the stored hash.
func (c *AuthConfig) VerifyAdminToken(token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.AdminTokenHash), []byte(token)) == nil
}

// HashAdminToken produces a bcrypt hash suitable for ADMIN_TOKEN_HASH.
func HashAdminToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}
