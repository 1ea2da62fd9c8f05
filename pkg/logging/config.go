package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Env names the environment variables read by Finalize. Empty names are
// skipped.
type Env struct {
	Level  string
	Format string
	File   string
}

// Config selects severity, encoding and destination of log records.
// An empty File sends records to stderr, which keeps command output on
// stdout machine-readable.
type Config struct {
	Level  Level  `toml:"level"`
	Format Format `toml:"format"`
	File   string `toml:"file"`
}

// Finalize fills defaults, reads env overrides and validates.
func (c *Config) Finalize(env *Env) error {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}

	if env != nil {
		if v := lookup(env.Level); v != "" {
			c.Level = Level(v)
		}
		if v := lookup(env.Format); v != "" {
			c.Format = Format(v)
		}
		if v := lookup(env.File); v != "" {
			c.File = v
		}
	}

	if err := c.Level.Validate(); err != nil {
		return err
	}
	if err := c.Format.Validate(); err != nil {
		return err
	}
	if c.File != "" {
		if info, err := os.Stat(filepath.Dir(c.File)); err != nil || !info.IsDir() {
			return fmt.Errorf("invalid log file %s: directory does not exist", c.File)
		}
	}
	return nil
}

// Merge copies the overlay's non-empty fields.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.File != "" {
		c.File = overlay.File
	}
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
