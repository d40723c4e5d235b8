package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port     int    `env:"PORT" envDefault:"9091"`
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBType      string `env:"DB_TYPE" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"database.sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"209715200"`

	AcceptedOrigins []string `env:"ACCEPTED_ORIGINS" envSeparator:"," envDefault:"*"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"180s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"180s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"180s"`

	ResendAPIKey    string   `env:"RESEND_API_KEY"`
	ResendFromEmail string   `env:"RESEND_FROM_EMAIL"`
	NotifyEmails    []string `env:"NOTIFY_EMAILS" envSeparator:","`

	GenerateColumnReport bool `env:"GENERATE_COLUMN_REPORT"`
}

// Load reads .env when present and then parses the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.DBType = strings.ToLower(strings.TrimSpace(cfg.DBType))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBType {
	case DBTypeSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_TYPE=sqlite")
		}
	case DBTypePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// NotificationsEnabled reports whether every Resend setting is present.
func (c Config) NotificationsEnabled() bool {
	return c.ResendAPIKey != "" && c.ResendFromEmail != "" && len(c.NotifyEmails) > 0
}
