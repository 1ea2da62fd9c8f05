// Package storage provides blob storage for document source files.
// It defines a System interface with a filesystem implementation for
// single-node installs and an S3-compatible implementation backed by MinIO.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/pdf-annotator/pkg/lifecycle"
)

// System defines the storage operations interface for blob storage.
// Keys are slash-separated paths relative to the storage root.
type System interface {
	// Store saves data at the specified key, overwriting existing contents.
	// Returns ErrInvalidKey if the key is empty or escapes the root.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete deletes the data at the specified key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Validate reports whether a key exists and is accessible.
	Validate(ctx context.Context, key string) (bool, error)

	// Path returns a local filesystem path holding the key's contents,
	// for collaborators that can only read from disk.
	Path(ctx context.Context, key string) (string, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the storage system selected by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendS3:
		return newObjectStore(cfg, logger)
	case BackendFilesystem, "":
		return newFilesystem(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// CleanKey normalizes a key and rejects empty, absolute and escaping keys.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	key = strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}

	return cleaned, nil
}
