package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/pending"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/aussiebroadwan/kurdforest/pkg/jwtx"
)

type Config struct {
	Env                  string        `koanf:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `koanf:"log-level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `koanf:"log-format"`            // Log format (json, text, empty picks by terminal)
	Port                 int           `koanf:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `koanf:"shutdown-grace-period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `koanf:"housekeeping-interval"` // Expired session purge interval (default: 1h)

	DatabaseDriver string `koanf:"database-driver"` // sqlite or postgres (default: sqlite)
	DatabaseFile   string `koanf:"database-file"`   // SQLite database file (default: ./kurdforest.db)
	DatabaseURL    string `koanf:"database-url"`    // Postgres DSN, required for the postgres driver

	PepperFile     string        `koanf:"pepper-file"`      // Password hashing pepper (default: ./pepper)
	SessionKeyFile string        `koanf:"session-key-file"` // Ed25519 PEM for session tokens (default: ./session.pem)
	SessionTTL     time.Duration `koanf:"session-ttl"`      // Session lifetime (default: 7d)
	SecureCookies  bool          `koanf:"secure-cookies"`   // Mark the session cookie Secure (default: true in prod)

	VerificationTTL      time.Duration `koanf:"verification-ttl"`       // Verification code lifetime (default: 60s)
	PendingCapacity      int           `koanf:"pending-capacity"`       // Max staged registrations, 0 for unbounded (default: 10000)
	PendingSweepInterval time.Duration `koanf:"pending-sweep-interval"` // Staged registration sweep interval (default: 30s)

	TMDBKey      string `koanf:"tmdb-key"`      // TMDB API key; watchlist adds fail without it
	TMDBBaseURL  string `koanf:"tmdb-base-url"` // TMDB API base (default: https://api.themoviedb.org/3)
	TMDBLanguage string `koanf:"tmdb-language"` // TMDB response language (default: en-US)

	EmailHost string `koanf:"email-host"` // SMTP relay; emails are only logged when empty
	EmailPort int    `koanf:"email-port"` // SMTP port (default: 587)
	EmailUser string `koanf:"email-user"`
	EmailPass string `koanf:"email-pass"`
	EmailFrom string `koanf:"email-from"` // Sender address (default: EMAIL_USER)

	WebsiteName string `koanf:"website-name"` // Shown on pages and in emails (default: KurdForest)
}

// LoadConfig reads the built-in defaults overlaid with environment variables.
func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            os.Getenv("LOG_FORMAT"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "kurdforest.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		SessionKeyFile: getEnvOrDefault("SESSION_KEY_FILE", "session.pem"),
		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", jwtx.DefaultSessionTTL),
		SecureCookies:  getEnvBoolOrDefault("SECURE_COOKIES", env == "prod"),

		VerificationTTL:      getEnvDurationOrDefault("VERIFICATION_TTL", pending.DefaultTTL),
		PendingCapacity:      getEnvIntOrDefault("PENDING_CAPACITY", 10000),
		PendingSweepInterval: getEnvDurationOrDefault("PENDING_SWEEP_INTERVAL", pending.DefaultSweepInterval),

		TMDBKey:      os.Getenv("TMDB_KEY"),
		TMDBBaseURL:  getEnvOrDefault("TMDB_BASE_URL", tmdb.DefaultBaseURL),
		TMDBLanguage: getEnvOrDefault("TMDB_LANGUAGE", "en-US"),

		EmailHost: os.Getenv("EMAIL_HOST"),
		EmailPort: getEnvIntOrDefault("EMAIL_PORT", 587),
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),

		WebsiteName: getEnvOrDefault("WEBSITE_NAME", "KurdForest"),
	}
}

// LoadDotEnv loads the first .env found in the working directory or its
// parents. Variables already in the environment win.
func LoadDotEnv() string {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// BindFlags registers a flag per config key, defaulting to the values in cfg
// so unset flags leave earlier layers alone.
func BindFlags(fs *pflag.FlagSet, cfg Config) {
	fs.String("env", cfg.Env, "environment (dev, staging, prod)")
	fs.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-format", cfg.LogFormat, "log format (json, text)")
	fs.Int("port", cfg.Port, "HTTP listen port")
	fs.Duration("shutdown-grace-period", cfg.ShutdownGracePeriod, "graceful shutdown timeout")
	fs.Duration("housekeeping-interval", cfg.HousekeepingInterval, "expired session purge interval")

	fs.String("database-driver", cfg.DatabaseDriver, "database driver (sqlite, postgres)")
	fs.String("database-file", cfg.DatabaseFile, "SQLite database file")
	fs.String("database-url", cfg.DatabaseURL, "Postgres connection URL")

	fs.String("pepper-file", cfg.PepperFile, "password pepper file, created if missing")
	fs.String("session-key-file", cfg.SessionKeyFile, "session signing key file, created if missing")
	fs.Duration("session-ttl", cfg.SessionTTL, "session lifetime")
	fs.Bool("secure-cookies", cfg.SecureCookies, "set the Secure flag on the session cookie")

	fs.Duration("verification-ttl", cfg.VerificationTTL, "verification code lifetime")
	fs.Int("pending-capacity", cfg.PendingCapacity, "max staged registrations (0 for unbounded)")
	fs.Duration("pending-sweep-interval", cfg.PendingSweepInterval, "staged registration sweep interval")

	fs.String("tmdb-key", cfg.TMDBKey, "TMDB API key")
	fs.String("tmdb-base-url", cfg.TMDBBaseURL, "TMDB API base URL")
	fs.String("tmdb-language", cfg.TMDBLanguage, "TMDB response language")

	fs.String("email-host", cfg.EmailHost, "SMTP host (log emails when empty)")
	fs.Int("email-port", cfg.EmailPort, "SMTP port")
	fs.String("email-user", cfg.EmailUser, "SMTP username")
	fs.String("email-pass", cfg.EmailPass, "SMTP password")
	fs.String("email-from", cfg.EmailFrom, "sender address")

	fs.String("website-name", cfg.WebsiteName, "site name shown on pages and emails")
}

// Resolve layers the optional YAML file and then explicitly set flags over
// cfg.
func Resolve(cfg Config, configFile string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	// Unchanged flags only fill keys the file did not set
	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return cfg, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("database-file is required for the sqlite driver"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database-url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.VerificationTTL <= 0 {
		errs = append(errs, errors.New("verification-ttl must be positive"))
	}
	if c.PendingCapacity < 0 {
		errs = append(errs, errors.New("pending-capacity must not be negative"))
	}
	return errors.Join(errs...)
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
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
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

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
