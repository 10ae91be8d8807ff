package app

import (
	"os"
	"path/filepath"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	// APIBaseURL is the 4ON4 REST API origin.
	APIBaseURL string

	// WSBaseURL is the trip-stream websocket origin. Empty derives it
	// from APIBaseURL.
	WSBaseURL string

	HTTPTimeout time.Duration
	UserAgent   string

	LogLevel  string
	LogFormat string

	// KeyringPath is the sqlite file holding durable credentials.
	KeyringPath string

	// KeyringPassphrase, when set, encrypts keyring values at rest.
	KeyringPassphrase string

	// MetricsAddr, when set, serves Prometheus metrics on that address.
	MetricsAddr string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		APIBaseURL: EnvString("FOURON4_API_URL", "https://api.4on4.app"),
		WSBaseURL:  EnvString("FOURON4_WS_URL", ""),

		HTTPTimeout: EnvDuration("FOURON4_HTTP_TIMEOUT", 30*time.Second),
		UserAgent:   EnvString("FOURON4_USER_AGENT", "fouron4-cli"),

		LogLevel:  EnvString("FOURON4_LOG_LEVEL", "info"),
		LogFormat: EnvString("FOURON4_LOG_FORMAT", "pretty"),

		KeyringPath:       EnvString("FOURON4_KEYRING_PATH", defaultKeyringPath()),
		KeyringPassphrase: EnvString("FOURON4_KEYRING_PASSPHRASE", ""),

		MetricsAddr: EnvString("FOURON4_METRICS_ADDR", ""),
	}
}

func defaultKeyringPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fouron4.db"
	}
	return filepath.Join(dir, "fouron4", "keyring.db")
}
