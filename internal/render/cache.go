package render

import (
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JaimeStill/pdf-annotator/internal/pdf"
)

type cacheKey struct {
	path string
	page int
	dpi  int
}

// Info is a snapshot of cache usage.
type Info struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Size    int   `json:"size"`
	MaxSize int   `json:"max_size"`
}

// Cache memoizes rendered pages keyed by (path, page, dpi). It is safe for
// concurrent use. Two concurrent misses on one key may both render.
type Cache struct {
	entries    *lru.Cache[cacheKey, []byte]
	rasterizer pdf.Rasterizer
	logger     *slog.Logger
	maxSize    int

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding at most size rendered pages.
func NewCache(size int, rasterizer pdf.Rasterizer, logger *slog.Logger) (*Cache, error) {
	entries, err := lru.New[cacheKey, []byte](size)
	if err != nil {
		return nil, err
	}

	return &Cache{
		entries:    entries,
		rasterizer: rasterizer,
		logger:     logger.With("system", "render-cache"),
		maxSize:    size,
	}, nil
}

// Render returns the image of the 1-based page of the PDF at path.
// Failed renders are not cached.
func (c *Cache) Render(path string, page, dpi int) ([]byte, error) {
	key := cacheKey{path: path, page: page, dpi: dpi}

	if data, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return data, nil
	}
	c.misses.Add(1)

	data, err := c.rasterizer.RenderPage(path, page-1, dpi)
	if err != nil {
		c.logger.Error("page render failed", "path", path, "page", page, "dpi", dpi, "error", err)
		return nil, ErrUnavailable
	}

	c.entries.Add(key, data)
	return data, nil
}

// Invalidate drops every entry rendered from path.
func (c *Cache) Invalidate(path string) int {
	removed := 0
	for _, key := range c.entries.Keys() {
		if key.path == path && c.entries.Remove(key) {
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cache invalidated", "path", path, "entries", removed)
	}
	return removed
}

// Clear empties the cache. Hit and miss counters are kept.
func (c *Cache) Clear() {
	c.entries.Purge()
}

func (c *Cache) Info() Info {
	return Info{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Size:    c.entries.Len(),
		MaxSize: c.maxSize,
	}
}
