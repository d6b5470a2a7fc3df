package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/saazhq/saaz/internal/saaz/federation"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/internal/saaz/service"
)

// devSecret signs sessions in dev when JWT_SECRET is unset.
const devSecret = "saaz-dev-secret-do-not-use-in-prod"

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 4000)

	DatabaseFile    string        // Path to SQLite database file (default: saaz.db)
	MaxOpenConns    int           // Pool bound (default: 10)
	MaxIdleConns    int           // Idle pool bound (default: 5)
	ConnMaxLifetime time.Duration // Connection recycle age (default: 30m)

	JWTSecret    string // Required outside dev
	DevSecret    bool   // True when JWTSecret fell back to the dev secret
	BcryptCost   int    // Password hashing cost (default: 10)
	ResetURLBase string // Frontend reset page the mailed link points at

	GoogleClientID       string        // Audience for federated ID tokens; empty disables federated login
	GoogleIssuers        []string      // Accepted issuers
	GoogleJWKSURL        string        // Signing key set
	PendingFederationTTL time.Duration // Lifetime of a role-pending federated identity (default: 10m)

	NATSURL     string // Empty logs mail instead of publishing it
	MailSubject string // NATS subject for outbound mail

	CORSOrigins []string // Allowed browser origins (default: *)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired ticket sweep interval (default: 1h)
}

// LoadConfig reads the environment, loading a .env file first when one
// exists in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 4000),

		DatabaseFile:    getEnvOrDefault("SAAZ_DATABASE_FILE", "saaz.db"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		BcryptCost:   getEnvIntOrDefault("BCRYPT_COST", 10),
		ResetURLBase: getEnvOrDefault("RESET_URL_BASE", service.DefaultResetURLBase),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuers:        getEnvListOrDefault("GOOGLE_ISSUERS", federation.GoogleIssuers),
		GoogleJWKSURL:        getEnvOrDefault("GOOGLE_JWKS_URL", federation.GoogleJWKSURL),
		PendingFederationTTL: getEnvDurationOrDefault("PENDING_FEDERATION_TTL", service.DefaultPendingTTL),

		NATSURL:     os.Getenv("NATS_URL"),
		MailSubject: getEnvOrDefault("MAIL_SUBJECT", notify.DefaultSubject),

		CORSOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.JWTSecret == "" && cfg.Env == "dev" {
		cfg.JWTSecret = devSecret
		cfg.DevSecret = true
	}

	return cfg
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside dev")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("PORT must be between 1 and 65535")
	}
	return nil
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
