package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Secrets never have in-code defaults; they must come from the environment.
type AppConfig struct {
	AppPort     string
	DatabaseURI string
	JWTSecret   string

	TokenTTLHours      int
	RateLimitPerMinute int
	AllowedOrigins     []string

	// Redis for caching and token revocation; empty host disables Redis.
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Gin framework configuration
	GinMode string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads the application configuration from environment variables.
// APP_PORT, DATABASE_URI and JWT_SECRET are mandatory; a missing value is a
// boot error so the process never starts serving half-configured.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		AppPort:            os.Getenv("APP_PORT"),
		DatabaseURI:        os.Getenv("DATABASE_URI"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTLHours:      intEnv("TOKEN_TTL_HOURS", 24),
		RateLimitPerMinute: intEnv("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:     listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RedisHost:          os.Getenv("REDIS_HOST"),
		RedisPort:          intEnv("REDIS_PORT", 6379),
		RedisDB:            intEnv("REDIS_DB", 0),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		GinMode:            getEnv("GIN_MODE", "release"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPath:            os.Getenv("LOG_PATH"),
		LogMaxSizeMB:       intEnv("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:      intEnv("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:      intEnv("LOG_MAX_AGE_DAYS", 7),
		LogCompress:        os.Getenv("LOG_COMPRESS") == "true",
	}

	if cfg.AppPort == "" {
		return cfg, fmt.Errorf("APP_PORT must be set")
	}
	if cfg.DatabaseURI == "" {
		return cfg, fmt.Errorf("DATABASE_URI must be set")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func intEnv(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}

func listEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaults
	}
	return items
}
