package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ENVIRONMENT string
	PORT        string

	DB_USERNAME string
	DB_PASSWORD string
	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DISABLE_TLS string

	// JWT signing
	JWT_SECRET string
	JWT_TTL    time.Duration

	// Redis for distributed rate limiting (optional)
	REDIS_ADDR     string
	REDIS_PASSWORD string

	// Login/register rate limit (requests per minute per client)
	AUTH_RATE_LIMIT int

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string
}

func ReadConfig() *Config {
	jwtTTL := 24 * time.Hour
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			jwtTTL = time.Duration(hours) * time.Hour
		}
	}

	authRateLimit := 10
	if raw := os.Getenv("AUTH_RATE_LIMIT"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			authRateLimit = limit
		}
	}

	return &Config{
		ENVIRONMENT: GetEnvOrDefault("ENVIRONMENT", "development"),
		PORT:        GetEnvOrDefault("PORT", "5000"),

		DB_USERNAME: os.Getenv("DB_USERNAME"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DISABLE_TLS: os.Getenv("DISABLE_TLS"),

		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_TTL:    jwtTTL,

		REDIS_ADDR:     os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),

		AUTH_RATE_LIMIT: authRateLimit,

		OTEL_EXPORTER_OTLP_ENDPOINT: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// IsProduction reports whether error responses must be sanitized.
func (c *Config) IsProduction() bool {
	return c.ENVIRONMENT == "production"
}

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
