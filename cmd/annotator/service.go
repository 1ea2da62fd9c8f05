package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/api"
	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/infrastructure"
	"github.com/JaimeStill/pdf-annotator/internal/schema"
	"github.com/JaimeStill/pdf-annotator/pkg/database"
)

// Service owns the infrastructure and domain systems for one command.
type Service struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	domain *api.Domain
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config finalize failed: %w", err)
	}
	return cfg, nil
}

// openService loads configuration, applies pending migrations and starts
// the infrastructure.
func openService() (*Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(&cfg.Database, schema.Migrations, infra.Logger); err != nil {
		return nil, err
	}

	if err := infra.Start(); err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra))
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, err
	}

	infra.Logger.Debug("service started", "owner", owner)
	return &Service{cfg: cfg, infra: infra, domain: domain}, nil
}

// Close releases the infrastructure within the configured shutdown timeout.
func (s *Service) Close() error {
	if err := s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration()); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// withService runs fn against an open Service and closes it afterwards.
func withService(fn func(*Service) error) (err error) {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svc.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(svc)
}

// owned loads id and hides documents of other owners behind ErrNotFound,
// matching how archive export treats them.
func (s *Service) owned(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	doc, err := s.domain.Documents.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner {
		return nil, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}
	return doc, nil
}
