package config

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const (
	// EnvBackupMaxArchiveSize overrides the import size ceiling.
	EnvBackupMaxArchiveSize = "BACKUP_MAX_ARCHIVE_SIZE"

	// DefaultMaxArchiveSize applies when no positive ceiling is configured.
	DefaultMaxArchiveSize = "500MB"
)

// BackupConfig controls archive import limits.
type BackupConfig struct {
	// MaxArchiveSize bounds the summed uncompressed size of an imported archive.
	// Default: "500MB"
	MaxArchiveSize    string `toml:"max_archive_size"`
	maxArchiveSizeVal int64
}

// MaxArchiveSizeBytes returns the parsed ceiling. An unfinalized config
// parses MaxArchiveSize on demand; an empty or unusable value yields
// DefaultMaxArchiveSize, so the ceiling is never zero.
func (c *BackupConfig) MaxArchiveSizeBytes() int64 {
	if c.maxArchiveSizeVal > 0 {
		return c.maxArchiveSizeVal
	}
	if size, err := units.FromHumanSize(c.MaxArchiveSize); err == nil && size > 0 {
		return size
	}
	size, _ := units.FromHumanSize(DefaultMaxArchiveSize)
	return size
}

// Finalize applies defaults, loads environment overrides, and validates the backup configuration.
func (c *BackupConfig) Finalize() error {
	if c.MaxArchiveSize == "" {
		c.MaxArchiveSize = DefaultMaxArchiveSize
	}
	if v := os.Getenv(EnvBackupMaxArchiveSize); v != "" {
		c.MaxArchiveSize = v
	}

	size, err := units.FromHumanSize(c.MaxArchiveSize)
	if err != nil {
		return fmt.Errorf("invalid max_archive_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_archive_size must be positive")
	}
	c.maxArchiveSizeVal = size
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *BackupConfig) Merge(overlay *BackupConfig) {
	if overlay.MaxArchiveSize != "" {
		c.MaxArchiveSize = overlay.MaxArchiveSize
	}
}
