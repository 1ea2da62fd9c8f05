package pdf

import (
	"fmt"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

const contentType = "application/pdf"

type rasterizer struct {
	format string
}

// NewRasterizer returns a Rasterizer backed by document-context and
// ImageMagick, encoding pages as format ("png" or "jpg").
func NewRasterizer(format string) Rasterizer {
	return &rasterizer{format: format}
}

func (r *rasterizer) RenderPage(path string, index, dpi int) ([]byte, error) {
	doc, err := document.Open(path, contentType)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	renderer, err := image.NewImageMagickRenderer(r.imageConfig(dpi))
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	page, err := doc.ExtractPage(index + 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageIndex, err)
	}

	data, err := page.ToImage(renderer, nil)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return data, nil
}

func (r *rasterizer) imageConfig(dpi int) config.ImageConfig {
	cfg := config.ImageConfig{
		Format:  r.format,
		DPI:     dpi,
		Options: make(map[string]any),
	}
	if document.ImageFormat(r.format) == document.JPEG {
		cfg.Quality = 90
	}
	return cfg
}
