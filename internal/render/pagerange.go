package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// ParsePageRange expands a page expression into sorted, distinct 1-based
// page numbers. Accepted forms: "3", "1-4", "2,5,7", "-3" (from page 1),
// "4-" (through the last page) and any comma-separated mix. An empty
// expression selects every page.
func ParsePageRange(expr string, pageCount int) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		expr = "1-"
	}

	seen := make(map[int]struct{})
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		start, end, err := parseSpan(part, pageCount)
		if err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %q selects no pages", ErrInvalidPageRange, expr)
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	slices.Sort(pages)
	return pages, nil
}

func parseSpan(part string, pageCount int) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	if !isRange {
		page, err := parsePage(part, 0)
		if err != nil {
			return 0, 0, err
		}
		return page, page, checkBounds(page, page, pageCount)
	}

	start, err := parsePage(lo, 1)
	if err != nil {
		return 0, 0, err
	}
	end, err := parsePage(hi, pageCount)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: start after end in %q", ErrInvalidPageRange, part)
	}
	return start, end, checkBounds(start, end, pageCount)
}

func parsePage(s string, fallback int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" && fallback > 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid page %q", ErrInvalidPageRange, s)
	}
	return n, nil
}

func checkBounds(start, end, pageCount int) error {
	if start < 1 || end > pageCount {
		return fmt.Errorf("%w: pages %d-%d outside 1-%d", documents.ErrPageOutOfRange, start, end, pageCount)
	}
	return nil
}
