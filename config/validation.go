package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that everything the server cannot run without is
// present. Development gets defaults for the database and Redis; secrets
// and the AI upstream settings are required everywhere except tests.
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	if env == Test {
		return nil
	}

	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET (or JWT_SECRET_FILE) is required")
	}
	if env == Production && cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or DB_PASSWORD_FILE) is required in production")
	}

	if err := cfg.AI.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
