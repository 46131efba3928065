// Package config handles resolving configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers supported by the storage package.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Environment variables that override values from the configuration file.
const (
	EnvPostgresURL = "POSTGRES_URL"
	EnvLogLevel    = "TALLY_LOG_LEVEL"
)

// LogLevel is the minimum level emitted by the application logger.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// Config is the application configuration.
type Config struct {
	LogLevel   LogLevel  `yaml:"log_level"   validate:"oneof=DEBUG INFO WARN ERROR"`
	WebAddress string    `yaml:"web_address" validate:"omitempty,hostname_port"`
	RPCAddress string    `yaml:"rpc_address" validate:"omitempty,hostname_port"`
	Database   Database  `yaml:"database"`
	ViewCache  ViewCache `yaml:"view_cache"`
	DevMode    bool      `yaml:"dev_mode"`
}

// Database configures the backing relational store.
type Database struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	// DSN is the file path for sqlite, or the connection URL for postgres.
	DSN string `yaml:"dsn" validate:"required"`
}

// ViewCache bounds the rendered page cache.
type ViewCache struct {
	MaxBytes int64         `yaml:"max_bytes" validate:"gte=0"`
	MaxAge   time.Duration `yaml:"max_age"   validate:"gte=0"`
}

// LogValue satisfies [slog.LogValuer], keeping connection secrets out of logs.
func (c *Config) LogValue() slog.Value {
	dsn := c.Database.DSN
	if c.Database.Driver == DriverPostgres {
		dsn = "<redacted>"
	}
	return slog.GroupValue(
		slog.String("log_level", string(c.LogLevel)),
		slog.String("web_address", c.WebAddress),
		slog.String("rpc_address", c.RPCAddress),
		slog.String("db_driver", c.Database.Driver),
		slog.String("db_dsn", dsn),
		slog.Int64("view_cache_max_bytes", c.ViewCache.MaxBytes),
		slog.Duration("view_cache_max_age", c.ViewCache.MaxAge),
		slog.Bool("dev_mode", c.DevMode),
	)
}

// Default returns a version of the config with all default values populated.
func Default() *Config {
	return &Config{
		LogLevel:   LogLevelInfo,
		WebAddress: "localhost:3000",
		RPCAddress: "localhost:3001",
		Database: Database{
			Driver: DriverSQLite,
			DSN:    filepath.Join(xdg.DataHome, "tally", "db.sqlite"),
		},
		ViewCache: ViewCache{
			MaxBytes: 8 << 20, //nolint:mnd // 8MiB
			MaxAge:   10 * time.Minute,
		},
		DevMode: false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults,
// applies environment overrides (including those from a .env file in the
// working directory), and validates it for completeness.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	// a missing .env file is fine
	_ = godotenv.Load()
	applyEnv(cfg)
	if err = Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg for completeness.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Marshal encodes cfg as YAML, suitable for writing a fresh config file.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func applyEnv(cfg *Config) {
	if url := os.Getenv(EnvPostgresURL); url != "" {
		cfg.Database.Driver = DriverPostgres
		cfg.Database.DSN = url
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = LogLevel(strings.ToUpper(lvl))
	}
}
