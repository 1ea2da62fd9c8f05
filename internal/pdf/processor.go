package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type processor struct {
	logger *slog.Logger
}

// NewProcessor returns a pdfcpu-backed Processor. Page counting falls back
// to ledongthuc/pdf for files pdfcpu refuses to parse.
func NewProcessor(logger *slog.Logger) Processor {
	return &processor{logger: logger.With("system", "pdf")}
}

func (p *processor) PageCount(data []byte) (int, error) {
	if !IsPDF(data) {
		return 0, ErrInvalid
	}

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err == nil && count > 0 {
		return count, nil
	}
	p.logger.Debug("pdfcpu page count failed, trying fallback", "error", err)

	r, lerr := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if lerr != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, lerr)
	}
	if n := r.NumPage(); n > 0 {
		return n, nil
	}
	return 0, fmt.Errorf("%w: no pages", ErrInvalid)
}

func (p *processor) RemovePage(data []byte, index int) ([]byte, error) {
	count, err := p.PageCount(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageIndex, index, count)
	}

	var out bytes.Buffer
	selected := []string{strconv.Itoa(index + 1)}
	if err := api.RemovePages(bytes.NewReader(data), &out, selected, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("remove page: %w", err)
	}
	return out.Bytes(), nil
}
