// Package api assembles the domain systems that make up the annotator core.
// Transports such as the CLI consume the Domain rather than constructing
// systems themselves.
package api

import (
	"fmt"

	"github.com/JaimeStill/pdf-annotator/internal/backup"
	"github.com/JaimeStill/pdf-annotator/internal/compose"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/render"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Render    render.System
	Compose   compose.System
	Backup    backup.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	documentsSys := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Processor,
		runtime.Logger,
		runtime.Limits,
		runtime.MaxUploadSize,
	)

	cache, err := render.NewCache(runtime.Render.CacheSize, runtime.Rasterizer, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("render cache init failed: %w", err)
	}

	renderSys := render.New(
		documentsSys,
		runtime.Storage,
		cache,
		runtime.Render,
		runtime.Logger,
	)

	composeSys := compose.New(
		documentsSys,
		runtime.Storage,
		runtime.Overlay,
		runtime.Export,
		runtime.Logger,
	)

	backupSys := backup.New(
		documentsSys,
		runtime.Storage,
		runtime.Export.Dir,
		runtime.Backup,
		runtime.Logger,
	)

	return &Domain{
		Documents: documentsSys,
		Render:    renderSys,
		Compose:   composeSys,
		Backup:    backupSys,
	}, nil
}
