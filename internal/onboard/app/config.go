package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for access tokens

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./onboard.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	MailMode     string // Mail delivery mode (smtp, log) (default: log)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string // e.g. "platoX <no-reply@platox.com>"
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              os.Getenv("ONBOARD_ISSUER"),
		DatabaseFile:        getEnvOrDefault("ONBOARD_DATABASE_FILE", "onboard.db"),
		PepperFile:          getEnvOrDefault("ONBOARD_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		MailMode:     getEnvOrDefault("ONBOARD_MAIL_MODE", "log"),
		SMTPHost:     os.Getenv("ONBOARD_SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("ONBOARD_SMTP_PORT", 587),
		SMTPUsername: os.Getenv("ONBOARD_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("ONBOARD_SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("ONBOARD_MAIL_FROM", "platoX <no-reply@platox.com>"),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "onboard"
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
