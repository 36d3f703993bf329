package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret      string // Required: HMAC secret for session tokens
	Issuer         string // Issuer claim for tokens (default: sangrah-auth)
	BootstrapToken string // Optional: token required to perform bootstrap

	DatabaseFile string // Path to SQLite database file (default: ./sangrah.db)

	SMTPHost      string // Optional: leave empty to log OTPs instead of mailing
	SMTPPort      int    // SMTP port (default: 587)
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string // Sender address for all outgoing mail
	PublicBaseURL string // Public base URL used in mail bodies (default: http://localhost:8080)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-OTP sweep interval (default: 10m)
	OTPTTL               time.Duration // OTP validity window (default: 10m)
	SessionTTL           time.Duration // Session token lifetime (default: 168h)
}

// ErrMissingJWTSecret is returned when AUTH_JWT_SECRET is unset. There is
// deliberately no built-in fallback secret; the process refuses to start
// without one.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "sangrah-auth"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "sangrah.db"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
		OTPTTL:               getEnvDurationOrDefault("AUTH_OTP_TTL", 10*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("AUTH_SESSION_TTL", 7*24*time.Hour),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
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

	// Plain integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
