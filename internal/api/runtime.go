package api

import (
	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/infrastructure"
)

// Runtime extends Infrastructure with the configuration the domain
// systems consume.
type Runtime struct {
	*infrastructure.Infrastructure
	Render        config.RenderConfig
	Export        config.ExportConfig
	Backup        config.BackupConfig
	Limits        config.LimitsConfig
	MaxUploadSize int64
}

// NewRuntime creates a runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Render:         cfg.Render,
		Export:         cfg.Export,
		Backup:         cfg.Backup,
		Limits:         cfg.Limits,
		MaxUploadSize:  cfg.Storage.MaxUploadSizeBytes(),
	}
}
