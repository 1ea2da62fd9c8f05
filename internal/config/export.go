package config

import (
	"fmt"
	"os"
	"regexp"
	"time"
)

// EnvExportDir overrides the directory receiving generated artifacts.
const EnvExportDir = "EXPORT_DIR"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ExportConfig controls the annotated PDF overlay and digest output.
type ExportConfig struct {
	Dir          string  `toml:"dir"`
	Font         string  `toml:"font"`
	FontSize     int     `toml:"font_size"`
	Color        string  `toml:"color"`
	Background   string  `toml:"background"`
	FooterHeight float64 `toml:"footer_height"`
	Margin       float64 `toml:"margin"`
	Timezone     string  `toml:"timezone"`
}

// Location resolves Timezone. Finalize guarantees it parses.
func (c *ExportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Finalize applies defaults, loads environment overrides, and validates the export configuration.
func (c *ExportConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ExportConfig) Merge(overlay *ExportConfig) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.Font != "" {
		c.Font = overlay.Font
	}
	if overlay.FontSize != 0 {
		c.FontSize = overlay.FontSize
	}
	if overlay.Color != "" {
		c.Color = overlay.Color
	}
	if overlay.Background != "" {
		c.Background = overlay.Background
	}
	if overlay.FooterHeight != 0 {
		c.FooterHeight = overlay.FooterHeight
	}
	if overlay.Margin != 0 {
		c.Margin = overlay.Margin
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
}

func (c *ExportConfig) loadDefaults() {
	if c.Dir == "" {
		c.Dir = ".data/exports"
	}
	if c.Font == "" {
		c.Font = "Courier"
	}
	if c.FontSize == 0 {
		c.FontSize = 9
	}
	if c.Color == "" {
		c.Color = "#008000"
	}
	if c.Background == "" {
		c.Background = "#FFFFE6"
	}
	if c.FooterHeight == 0 {
		c.FooterHeight = 80
	}
	if c.Margin == 0 {
		c.Margin = 10
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

func (c *ExportConfig) loadEnv() {
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Dir = v
	}
}

func (c *ExportConfig) validate() error {
	if c.FontSize < 4 || c.FontSize > 72 {
		return fmt.Errorf("font_size must be between 4 and 72")
	}
	if !hexColor.MatchString(c.Color) {
		return fmt.Errorf("invalid color: %s", c.Color)
	}
	if !hexColor.MatchString(c.Background) {
		return fmt.Errorf("invalid background: %s", c.Background)
	}
	if c.FooterHeight <= 0 || c.Margin < 0 {
		return fmt.Errorf("footer_height must be positive and margin non-negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	return nil
}
