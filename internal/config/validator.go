package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// MinJWTSecretLength is the shortest signing secret accepted in production.
const MinJWTSecretLength = 32

// ValidateEnv validates that all required environment variables are set
func ValidateEnv(requiredVars []string) error {
	var missing []string

	for _, varName := range requiredVars {
		if os.Getenv(varName) == "" {
			missing = append(missing, varName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateJWTSecret ensures the signing secret is present, and long enough
// when running in production.
func (c *Config) ValidateJWTSecret() error {
	secret := c.Auth.JWTSecret
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && len(secret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in production", MinJWTSecretLength)
	}
	return nil
}
