// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/taskflowctl.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Session tokens
	JWTSecret string
	JWTExpiry time.Duration

	// Firebase
	FirebaseCredentialsFile string
	FirebaseProjectID       string
	FirebasePrivateKey      string
	FirebaseClientEmail     string
	FirebaseClientID        string

	// Outbound delivery
	SendTimeout time.Duration

	// Built-in reminder job
	ReminderInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 5000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		JWTSecret: envOr("JWT_SECRET_KEY", "taskflow-secret-key"),
		JWTExpiry: time.Duration(envInt("JWT_ACCESS_TOKEN_EXPIRES", 3600)) * time.Second,

		FirebaseCredentialsFile: envOr("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),
		FirebaseProjectID:       envOr("FIREBASE_PROJECT_ID", ""),
		FirebasePrivateKey:      envOr("FIREBASE_PRIVATE_KEY", ""),
		FirebaseClientEmail:     envOr("FIREBASE_CLIENT_EMAIL", ""),
		FirebaseClientID:        envOr("FIREBASE_CLIENT_ID", ""),

		SendTimeout: time.Duration(envInt("FCM_SEND_TIMEOUT_SECONDS", 10)) * time.Second,

		ReminderInterval: time.Duration(envInt("REMINDER_INTERVAL_MINUTES", 30)) * time.Minute,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
