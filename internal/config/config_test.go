package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/pkg/database"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Database.Driver != database.DriverSQLite {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Storage.Backend != storage.BackendFilesystem {
		t.Errorf("Storage.Backend = %q, want filesystem", cfg.Storage.Backend)
	}
	if cfg.Render.CacheSize != 50 || cfg.Render.DPI != 150 {
		t.Errorf("Render = %+v, want cache 50 dpi 150", cfg.Render)
	}
	if cfg.Backup.MaxArchiveSizeBytes() != 500_000_000 {
		t.Errorf("MaxArchiveSizeBytes() = %d, want 500000000", cfg.Backup.MaxArchiveSizeBytes())
	}
	if cfg.Limits.Note != 5000 || cfg.Limits.Name != 100 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "config.toml", `
[render]
cache_size = 10
dpi = 120

[export]
font_size = 11
`)
	writeFile(t, dir, "config.test.toml", `
[render]
dpi = 200
`)
	t.Setenv(config.EnvServiceEnv, "test")

	cfg, err := config.Load(base)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Render.CacheSize != 10 {
		t.Errorf("CacheSize = %d, want 10 (base)", cfg.Render.CacheSize)
	}
	if cfg.Render.DPI != 200 {
		t.Errorf("DPI = %d, want 200 (overlay)", cfg.Render.DPI)
	}
	if cfg.Export.FontSize != 11 {
		t.Errorf("FontSize = %d, want 11", cfg.Export.FontSize)
	}
}

func TestFinalize_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_NAME", "annotator")
	t.Setenv("DATABASE_USER", "annotator")
	t.Setenv(config.EnvRenderCacheSize, "7")
	t.Setenv(config.EnvBackupMaxArchiveSize, "1MB")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Database.Driver != database.DriverPostgres {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.DriverName() != "pgx" {
		t.Errorf("DriverName() = %q, want pgx", cfg.Database.DriverName())
	}
	if cfg.Render.CacheSize != 7 {
		t.Errorf("CacheSize = %d, want 7", cfg.Render.CacheSize)
	}
	if cfg.Backup.MaxArchiveSizeBytes() != 1_000_000 {
		t.Errorf("MaxArchiveSizeBytes() = %d, want 1000000", cfg.Backup.MaxArchiveSizeBytes())
	}
}

func TestFinalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"bad shutdown", config.Config{ShutdownTimeout: "soon"}},
		{"bad color", config.Config{Export: config.ExportConfig{Color: "green"}}},
		{"bad render format", config.Config{Render: config.RenderConfig{Format: "gif"}}},
		{"bad archive size", config.Config{Backup: config.BackupConfig{MaxArchiveSize: "lots"}}},
		{"bad driver", config.Config{Database: database.Config{Driver: "oracle"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestBackupConfig_MaxArchiveSizeWithoutFinalize(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.BackupConfig
		want int64
	}{
		{"zero value", config.BackupConfig{}, 500_000_000},
		{"explicit", config.BackupConfig{MaxArchiveSize: "1KB"}, 1_000},
		{"unparsable", config.BackupConfig{MaxArchiveSize: "lots"}, 500_000_000},
		{"negative", config.BackupConfig{MaxArchiveSize: "-5"}, 500_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.MaxArchiveSizeBytes(); got != tt.want {
				t.Errorf("MaxArchiveSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}
