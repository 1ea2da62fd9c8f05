package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document storage key already exists")
	ErrPageOutOfRange  = errors.New("page number out of range")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLastPage        = errors.New("cannot delete the only page of a document")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrStorage         = errors.New("document storage failure")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrLastPage):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
