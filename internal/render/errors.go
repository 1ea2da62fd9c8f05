package render

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

var (
	// ErrUnavailable reports that a page image could not be produced. The
	// cause is logged, never returned.
	ErrUnavailable      = errors.New("page render unavailable")
	ErrInvalidPageRange = errors.New("invalid page range")
)

// MapHTTPStatus converts render errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPageRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return documents.MapHTTPStatus(err)
	}
}
