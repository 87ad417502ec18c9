package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/triadacafetera/triada/internal/auth/notify"
	"github.com/triadacafetera/triada/pkg/jwtx"
)

// Database drivers accepted by AUTH_DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Secret     string // Optional: signing secret; overrides SecretFile
	SecretFile string // Optional: path to the signing secret, generated if missing (default: ./secret)
	Issuer     string // Optional: iss claim (default: triada-auth)

	AccessTokenTTL   time.Duration // Optional: session token lifetime (default: 30m)
	ResetTokenTTL    time.Duration // Optional: reset token lifetime (default: 1h)
	BcryptCost       int           // Optional: bcrypt work factor (default: bcrypt.DefaultCost)
	ExposeResetToken bool          // Optional: return reset tokens in the HTTP response (default: true in dev)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection string
	DBMaxRetries   uint64 // Optional: postgres startup ping retries (default: 10)

	SMTP notify.SMTPConfig

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	StatsInterval       time.Duration // User gauge sampling interval (default: 1m)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		Secret:     os.Getenv("AUTH_SECRET"),
		SecretFile: getEnvOrDefault("AUTH_SECRET_FILE", "secret"),
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "triada-auth"),

		AccessTokenTTL:   getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		ResetTokenTTL:    getEnvDurationOrDefault("AUTH_RESET_TOKEN_TTL", jwtx.DefaultResetTokenTTL),
		BcryptCost:       getEnvIntOrDefault("AUTH_BCRYPT_COST", 0),
		ExposeResetToken: getEnvBoolOrDefault("AUTH_EXPOSE_RESET_TOKEN", env == "dev"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),
		DBMaxRetries:   uint64(getEnvIntOrDefault("AUTH_DATABASE_MAX_RETRIES", 10)),

		SMTP: notify.SMTPConfig{
			Host:         os.Getenv("SMTP_HOST"),
			Port:         getEnvIntOrDefault("SMTP_PORT", 587),
			Username:     os.Getenv("SMTP_USERNAME"),
			Password:     os.Getenv("SMTP_PASSWORD"),
			From:         os.Getenv("SMTP_FROM"),
			TLSMode:      getEnvOrDefault("SMTP_TLS_MODE", notify.TLSModeAuto),
			ResetURLBase: os.Getenv("RESET_URL_BASE"),
		},

		Env:                 env,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		StatsInterval:       getEnvDurationOrDefault("STATS_INTERVAL", time.Minute),
	}

	return cfg
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
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

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
