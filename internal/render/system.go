// Package render rasterizes document pages for preview through a bounded
// LRU cache.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Page is one rendered page image.
type Page struct {
	Number int    `json:"number"`
	Data   []byte `json:"-"`
}

// System renders pages of stored documents.
type System interface {
	Page(ctx context.Context, id uuid.UUID, page int) ([]byte, error)
	Pages(ctx context.Context, id uuid.UUID, expr string) ([]Page, error)
	Cache() *Cache
}

type service struct {
	docs    documents.System
	storage storage.System
	cache   *Cache
	cfg     config.RenderConfig
	logger  *slog.Logger

	mu    sync.Mutex
	paths map[string]string
}

// New creates the render system and subscribes it to document source
// changes so stale pages are evicted.
func New(
	docs documents.System,
	store storage.System,
	cache *Cache,
	cfg config.RenderConfig,
	logger *slog.Logger,
) System {
	s := &service{
		docs:    docs,
		storage: store,
		cache:   cache,
		cfg:     cfg,
		logger:  logger.With("system", "render"),
		paths:   make(map[string]string),
	}
	docs.OnSourceChange(s.sourceChanged)
	return s
}

func (s *service) Cache() *Cache {
	return s.cache
}

func (s *service) Page(ctx context.Context, id uuid.UUID, page int) ([]byte, error) {
	doc, err := s.docs.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > doc.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d", documents.ErrPageOutOfRange, page, doc.PageCount)
	}

	path, err := s.localPath(ctx, doc)
	if err != nil {
		return nil, err
	}
	return s.cache.Render(path, page, s.cfg.DPI)
}

func (s *service) Pages(ctx context.Context, id uuid.UUID, expr string) ([]Page, error) {
	doc, err := s.docs.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	numbers, err := ParsePageRange(expr, doc.PageCount)
	if err != nil {
		return nil, err
	}

	path, err := s.localPath(ctx, doc)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, len(numbers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, n := range numbers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.cache.Render(path, n, s.cfg.DPI)
			if err != nil {
				return err
			}
			pages[i] = Page{Number: n, Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (s *service) localPath(ctx context.Context, doc *documents.Document) (string, error) {
	path, err := s.storage.Path(ctx, doc.StorageKey)
	if err != nil {
		s.logger.Error("source unavailable", "id", doc.ID, "storage_key", doc.StorageKey, "error", err)
		return "", ErrUnavailable
	}

	s.mu.Lock()
	s.paths[doc.StorageKey] = path
	s.mu.Unlock()

	return path, nil
}

func (s *service) sourceChanged(_ context.Context, doc documents.Document) {
	s.mu.Lock()
	path, ok := s.paths[doc.StorageKey]
	delete(s.paths, doc.StorageKey)
	s.mu.Unlock()

	if ok {
		s.cache.Invalidate(path)
	}
}
