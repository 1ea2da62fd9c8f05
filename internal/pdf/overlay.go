package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type overlay struct{}

// NewOverlay returns a pdfcpu-backed Overlay.
func NewOverlay() Overlay {
	return overlay{}
}

func (overlay) PageSizes(path string) ([]Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dims, err := api.PageDims(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	sizes := make([]Size, len(dims))
	for i, d := range dims {
		sizes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// Stamp writes src with every stamp applied to dst. With no stamps dst is a
// plain copy of src.
func (overlay) Stamp(src, dst string, stamps []Stamp) error {
	if len(stamps) == 0 {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0644)
	}

	marks := make(map[int]*model.Watermark, len(stamps))
	for _, s := range stamps {
		wm, err := api.TextWatermark(strings.Join(s.Lines, "\n"), s.Style.description(), true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("build stamp for page index %d: %w", s.Index, err)
		}
		marks[s.Index+1] = wm
	}

	if err := api.AddWatermarksMapFile(src, dst, marks, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("apply stamps: %w", err)
	}
	return nil
}

// description renders the pdfcpu watermark description for the style.
func (s Style) description() string {
	parts := []string{
		"fontname:" + s.Font,
		fmt.Sprintf("points:%d", s.FontSize),
		"position:bl",
		fmt.Sprintf("offset:%g %g", s.Margin, s.Margin),
		"scalefactor:1 abs",
		"rotation:0",
		"aligntext:l",
		"opacity:1",
		"fillcolor:" + s.Color,
		"backgroundcolor:" + s.Background,
		fmt.Sprintf("margins:%g", s.Padding),
	}
	return strings.Join(parts, ", ")
}
