// Package config provides application configuration management with support for
// TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/pdf-annotator/pkg/database"
	"github.com/JaimeStill/pdf-annotator/pkg/logging"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration overlays.
	EnvServiceEnv = "SERVICE_ENV"

	// EnvServiceShutdownTimeout overrides the shutdown timeout.
	EnvServiceShutdownTimeout = "SERVICE_SHUTDOWN_TIMEOUT"
)

var databaseEnv = &database.Env{
	Driver:          "DATABASE_DRIVER",
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	Path:            "DATABASE_PATH",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:       "STORAGE_BACKEND",
	BasePath:      "STORAGE_BASE_PATH",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
	S3Endpoint:    "STORAGE_S3_ENDPOINT",
	S3Bucket:      "STORAGE_S3_BUCKET",
	S3AccessKey:   "STORAGE_S3_ACCESS_KEY",
	S3SecretKey:   "STORAGE_S3_SECRET_KEY",
	S3UseSSL:      "STORAGE_S3_USE_SSL",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
	File:   "LOGGING_FILE",
}

// Config represents the root application configuration.
type Config struct {
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Logging         logging.Config  `toml:"logging"`
	Render          RenderConfig    `toml:"render"`
	Export          ExportConfig    `toml:"export"`
	Backup          BackupConfig    `toml:"backup"`
	Limits          LimitsConfig    `toml:"limits"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
}

// ShutdownTimeoutDuration parses and returns the shutdown timeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base configuration file and applies any environment-specific
// overlay found next to it. A missing default config.toml yields an empty
// configuration so that defaults and environment variables alone suffice.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	cfg, err := load(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	if overlay := overlayPath(filepath.Dir(path)); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Render.Finalize(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Export.Finalize(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Backup.Finalize(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if err := c.Limits.Finalize(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Logging.Merge(&overlay.Logging)
	c.Render.Merge(&overlay.Render)
	c.Export.Merge(&overlay.Export)
	c.Backup.Merge(&overlay.Backup)
	c.Limits.Merge(&overlay.Limits)
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvServiceShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		p := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
