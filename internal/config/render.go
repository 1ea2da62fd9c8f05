package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvRenderCacheSize overrides the render cache capacity.
	EnvRenderCacheSize = "RENDER_CACHE_SIZE"

	// EnvRenderDPI overrides the preview resolution.
	EnvRenderDPI = "RENDER_DPI"
)

// RenderConfig controls page rasterization and the render cache.
type RenderConfig struct {
	CacheSize int    `toml:"cache_size"`
	DPI       int    `toml:"dpi"`
	Format    string `toml:"format"`
	Workers   int    `toml:"workers"`
}

// Finalize applies defaults, loads environment overrides, and validates the render configuration.
func (c *RenderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *RenderConfig) Merge(overlay *RenderConfig) {
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *RenderConfig) loadDefaults() {
	if c.CacheSize == 0 {
		c.CacheSize = 50
	}
	if c.DPI == 0 {
		c.DPI = 150
	}
	if c.Format == "" {
		c.Format = "png"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *RenderConfig) loadEnv() {
	if v := os.Getenv(EnvRenderCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheSize = n
		}
	}
	if v := os.Getenv(EnvRenderDPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
}

func (c *RenderConfig) validate() error {
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive")
	}
	if c.DPI < 36 || c.DPI > 1200 {
		return fmt.Errorf("dpi must be between 36 and 1200")
	}
	if c.Format != "png" && c.Format != "jpg" {
		return fmt.Errorf("invalid format: %s (must be png or jpg)", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
