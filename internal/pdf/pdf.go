// Package pdf wraps the PDF libraries behind small capability interfaces.
// Every page position in this package is a zero-based page index; callers
// holding one-based page numbers translate at their boundary.
package pdf

import (
	"bytes"
	"errors"
)

// Errors returned by the capabilities.
var (
	ErrInvalid   = errors.New("pdf: invalid document")
	ErrPageIndex = errors.New("pdf: page index out of range")
)

// Size is a page's media box in points.
type Size struct {
	Width  float64
	Height float64
}

// Processor inspects and edits PDF bytes.
type Processor interface {
	PageCount(data []byte) (int, error)
	RemovePage(data []byte, index int) ([]byte, error)
}

// Rasterizer renders one page of a PDF on disk to encoded image bytes.
type Rasterizer interface {
	RenderPage(path string, index, dpi int) ([]byte, error)
}

// Overlay draws text stamps onto a copy of a PDF.
type Overlay interface {
	PageSizes(path string) ([]Size, error)
	Stamp(src, dst string, stamps []Stamp) error
}

// Stamp is a block of left-aligned lines drawn in the bottom-left corner of
// a page over an opaque background.
type Stamp struct {
	Index int
	Lines []string
	Style Style
}

// Style configures stamp rendering. Colors are "#RRGGBB".
type Style struct {
	Font       string
	FontSize   int
	Color      string
	Background string
	Margin     float64
	Padding    float64
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
