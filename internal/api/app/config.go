package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Region       string // Required: identity provider region
	UserPoolID   string // Required: identity provider user pool ID
	ClientID     string // Required: app client ID
	ClientSecret string // Required: app client secret (for SECRET_HASH)
	IDPEndpoint  string // Optional: identity provider endpoint override (local stacks)
	JWKSEndpoint string // Optional: JWKS URL override (derived from region+pool by default)

	StoreDriver   string // Revocation store driver (sqlite, redis) (default: sqlite)
	DatabaseFile  string // Path to SQLite database file (default: ./api.db)
	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Redis logical database (default: 0)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	ProviderTimeout      time.Duration // Identity provider call timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Region:       getEnvOrDefault("AWS_REGION", "us-east-1"),
		UserPoolID:   os.Getenv("COGNITO_USER_POOL_ID"),
		ClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
		ClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		IDPEndpoint:  os.Getenv("COGNITO_ENDPOINT"),
		JWKSEndpoint: os.Getenv("COGNITO_JWKS_ENDPOINT"),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", "sqlite"),
		DatabaseFile:  getEnvOrDefault("API_DATABASE_FILE", "api.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		ProviderTimeout:      getEnvDurationOrDefault("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the fields that have no workable default.
func (c Config) Validate() error {
	if c.UserPoolID == "" {
		return fmt.Errorf("COGNITO_USER_POOL_ID is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("COGNITO_APP_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("COGNITO_APP_CLIENT_SECRET is required")
	}
	switch c.StoreDriver {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want sqlite or redis)", c.StoreDriver)
	}
	return nil
}

// JWKSEndpointOrDefault returns the configured JWKS URL, or the provider's
// well-known location for the pool.
func (c Config) JWKSEndpointOrDefault() string {
	if c.JWKSEndpoint != "" {
		return c.JWKSEndpoint
	}
	return fmt.Sprintf(
		"https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json",
		c.Region, c.UserPoolID,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
