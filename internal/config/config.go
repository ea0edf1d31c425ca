package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds the CLI configuration
type Config struct {
	// Logging configuration
	LogLevel string

	// GitLab configuration
	ProjectID     string
	PrivateToken  string
	SkipTLSVerify bool

	// HTTP transport configuration
	HTTPTimeoutSeconds int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),

		// GitLab
		ProjectID:     getEnvString("GITLAB_PROJECT_ID", ""),
		PrivateToken:  getEnvString("GITLAB_PRIVATE_TOKEN", ""),
		SkipTLSVerify: getEnvBool("GITLAB_SKIP_TLS_VERIFY", false),

		// Transport
		HTTPTimeoutSeconds: getEnvInt("GITLAB_HTTP_TIMEOUT", 30),
	}
}

// Validate checks that configured values are usable. Token and project id
// may stay empty here: commands that need them prompt or fail with their own
// message.
func (c *Config) Validate() error {
	if c.HTTPTimeoutSeconds <= 0 {
		return &ConfigError{Field: "GITLAB_HTTP_TIMEOUT", Message: "timeout must be a positive number of seconds"}
	}

	return nil
}

// GetLogLevel returns the slog.Level for the configured log level
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "Configuration error for " + e.Field + ": " + e.Message
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
