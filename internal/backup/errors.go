package backup

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

var (
	ErrCorrupt             = errors.New("backup archive is corrupt")
	ErrIncompatibleVersion = errors.New("incompatible backup version")
	ErrTooLarge            = errors.New("backup archive exceeds size limit")
)

// MapHTTPStatus converts backup errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrCorrupt):
		return http.StatusBadRequest
	case errors.Is(err, ErrIncompatibleVersion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return documents.MapHTTPStatus(err)
	}
}
