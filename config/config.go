package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// AI upstream configuration
	AI AIConfig
}

// AIConfig holds the upstream chat-completion settings. All three values
// are required before any recommendation request can be served; a missing
// value is a startup configuration error, never a per-request one.
type AIConfig struct {
	BaseURL string
	Model   string
	APIKey  string

	// RequestTimeout bounds one upstream call end to end. It stays below
	// the 60s platform ceiling so a timeout still produces a response.
	RequestTimeout time.Duration
}

// LoadConfig creates a new Config instance with values from environment
// variables or secret files
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getSecret("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "mealdiary"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getSecret("REDIS_PASSWORD"),
		RedisURL:      os.Getenv("REDIS_URL"),

		JWTSecret: getSecret("JWT_SECRET"),

		AI: AIConfig{
			BaseURL:        os.Getenv("AI_BASE_URL"),
			Model:          os.Getenv("MODEL_NAME"),
			APIKey:         getSecret("API_KEY"),
			RequestTimeout: 55 * time.Second,
		},
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	if timeoutStr := os.Getenv("AI_REQUEST_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_REQUEST_TIMEOUT value %q: %w", timeoutStr, err)
		}
		cfg.AI.RequestTimeout = timeout
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the AI upstream settings are complete.
func (c AIConfig) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "AI_BASE_URL")
	}
	if c.Model == "" {
		missing = append(missing, "MODEL_NAME")
	}
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("AI configuration missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// getSecret reads NAME from the environment, falling back to the file
// named by NAME_FILE (Docker secrets).
func getSecret(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if path := os.Getenv(name + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}
