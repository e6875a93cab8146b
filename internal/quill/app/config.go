package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Issuer         string        // Optional: issuer claim for access tokens (default: quill)
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./quill.db)
	PepperFile     string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SigningKeyFile string        // Optional: path to the Ed25519 PEM signing key, generated if missing (default: ./signing.pem)
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 7 days)
	RedisURL       string        // Optional: redis:// URL; collaboration events are dropped when empty
	NotifyChannel  string        // Optional: pub/sub channel prefix (default: quill:events)
	TrashRetention time.Duration // Optional: how long trashed notes are kept (default: 30 days)
	CORSOrigins    []string      // Optional: allowed browser origins, comma separated in env
	CookieSecure   bool          // Optional: mark the refresh cookie Secure (default: true)
	Env            string        // Environment (dev, staging, prod) (default: dev)
	LogLevel       string        // Log level (debug, info, warn, error) (default: info)
	LogFormat      string        // Log format (json, text) (default: json)
	Port           int           // HTTP server port (default: 8080)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	MetricsEnabled bool   // Serve /metrics (default: true)
	MetricsLabels  string // Constant labels "k=v,k2=v2" added to every series
}

// fileConfig mirrors Config for the optional YAML file. Durations use Go
// syntax ("15m", "720h").
type fileConfig struct {
	Issuer         string   `yaml:"issuer"`
	DatabaseFile   string   `yaml:"database_file"`
	PepperFile     string   `yaml:"pepper_file"`
	SigningKeyFile string   `yaml:"signing_key_file"`
	AccessTTL      string   `yaml:"access_ttl"`
	RefreshTTL     string   `yaml:"refresh_ttl"`
	RedisURL       string   `yaml:"redis_url"`
	NotifyChannel  string   `yaml:"notify_channel"`
	TrashRetention string   `yaml:"trash_retention"`
	CORSOrigins    []string `yaml:"cors_origins"`
	CookieSecure   *bool    `yaml:"cookie_secure"`
	Env            string   `yaml:"env"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	Port           int      `yaml:"port"`

	ShutdownGracePeriod  string `yaml:"shutdown_grace_period"`
	HousekeepingInterval string `yaml:"housekeeping_interval"`

	Metrics struct {
		Enabled *bool  `yaml:"enabled"`
		Labels  string `yaml:"labels"`
	} `yaml:"metrics"`
}

// DefaultConfig returns the built in defaults.
func DefaultConfig() Config {
	return Config{
		Issuer:               "quill",
		DatabaseFile:         "quill.db",
		PepperFile:           "pepper",
		SigningKeyFile:       "signing.pem",
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           7 * 24 * time.Hour,
		NotifyChannel:        "quill:events",
		TrashRetention:       30 * 24 * time.Hour,
		CookieSecure:         true,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		MetricsEnabled:       true,
	}
}

// LoadConfig builds the configuration from the defaults, the YAML file at
// path (skipped when empty, falling back to QUILL_CONFIG_FILE), then the
// environment. Later sources win.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("QUILL_CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Issuer, f.Issuer)
	setString(&c.DatabaseFile, f.DatabaseFile)
	setString(&c.PepperFile, f.PepperFile)
	setString(&c.SigningKeyFile, f.SigningKeyFile)
	setString(&c.RedisURL, f.RedisURL)
	setString(&c.NotifyChannel, f.NotifyChannel)
	setString(&c.Env, f.Env)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)
	setString(&c.MetricsLabels, f.Metrics.Labels)

	if f.Port != 0 {
		c.Port = f.Port
	}
	if len(f.CORSOrigins) > 0 {
		c.CORSOrigins = f.CORSOrigins
	}
	if f.CookieSecure != nil {
		c.CookieSecure = *f.CookieSecure
	}
	if f.Metrics.Enabled != nil {
		c.MetricsEnabled = *f.Metrics.Enabled
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"access_ttl", f.AccessTTL, &c.AccessTTL},
		{"refresh_ttl", f.RefreshTTL, &c.RefreshTTL},
		{"trash_retention", f.TrashRetention, &c.TrashRetention},
		{"shutdown_grace_period", f.ShutdownGracePeriod, &c.ShutdownGracePeriod},
		{"housekeeping_interval", f.HousekeepingInterval, &c.HousekeepingInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Issuer = getEnvOrDefault("QUILL_ISSUER", c.Issuer)
	c.DatabaseFile = getEnvOrDefault("QUILL_DATABASE_FILE", c.DatabaseFile)
	c.PepperFile = getEnvOrDefault("QUILL_PEPPER_FILE", c.PepperFile)
	c.SigningKeyFile = getEnvOrDefault("QUILL_SIGNING_KEY_FILE", c.SigningKeyFile)
	c.AccessTTL = getEnvDurationOrDefault("QUILL_ACCESS_TTL", c.AccessTTL)
	c.RefreshTTL = getEnvDurationOrDefault("QUILL_REFRESH_TTL", c.RefreshTTL)
	c.RedisURL = getEnvOrDefault("QUILL_REDIS_URL", c.RedisURL)
	c.NotifyChannel = getEnvOrDefault("QUILL_NOTIFY_CHANNEL", c.NotifyChannel)
	c.TrashRetention = getEnvDurationOrDefault("QUILL_TRASH_RETENTION", c.TrashRetention)
	c.CookieSecure = getEnvBoolOrDefault("QUILL_COOKIE_SECURE", c.CookieSecure)
	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)
	c.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)
	c.MetricsEnabled = getEnvBoolOrDefault("METRICS_ENABLED", c.MetricsEnabled)
	c.MetricsLabels = getEnvOrDefault("METRICS_LABELS", c.MetricsLabels)

	if origins := os.Getenv("QUILL_CORS_ORIGIN"); origins != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
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

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
