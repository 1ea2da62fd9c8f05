package compose

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

var (
	ErrSourceMissing = errors.New("document source file missing")
	ErrFormat        = errors.New("unsupported digest format")
	ErrCompose       = errors.New("artifact composition failed")
)

// MapHTTPStatus converts compose errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSourceMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrCompose):
		return http.StatusInternalServerError
	default:
		return documents.MapHTTPStatus(err)
	}
}
