// Package outcome classifies errors from every subsystem into a stable set
// of codes for transports and the CLI.
package outcome

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/backup"
	"github.com/JaimeStill/pdf-annotator/internal/compose"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/render"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Code is a stable error category.
type Code string

const (
	OK                  Code = "ok"
	NotFound            Code = "not_found"
	OutOfRange          Code = "out_of_range"
	InvalidArgument     Code = "invalid_argument"
	InvalidState        Code = "invalid_state"
	Corrupt             Code = "corrupt"
	IncompatibleVersion Code = "incompatible_version"
	TooLarge            Code = "too_large"
	Unavailable         Code = "unavailable"
	StorageIO           Code = "storage_io"
	Canceled            Code = "canceled"
	Internal            Code = "internal"
)

var classes = []struct {
	code Code
	errs []error
}{
	{NotFound, []error{documents.ErrNotFound, storage.ErrNotFound, compose.ErrSourceMissing}},
	{OutOfRange, []error{documents.ErrPageOutOfRange}},
	{InvalidArgument, []error{
		documents.ErrInvalidArgument,
		documents.ErrInvalidFile,
		documents.ErrDuplicate,
		render.ErrInvalidPageRange,
		compose.ErrFormat,
		storage.ErrInvalidKey,
	}},
	{InvalidState, []error{documents.ErrLastPage}},
	{Corrupt, []error{backup.ErrCorrupt}},
	{IncompatibleVersion, []error{backup.ErrIncompatibleVersion}},
	{TooLarge, []error{backup.ErrTooLarge, documents.ErrFileTooLarge}},
	{Unavailable, []error{render.ErrUnavailable}},
	{StorageIO, []error{documents.ErrStorage, storage.ErrPermissionDenied}},
	{Canceled, []error{context.Canceled, context.DeadlineExceeded}},
}

// Classify maps err to its Code. A nil error is OK; anything unrecognized
// is Internal.
func Classify(err error) Code {
	if err == nil {
		return OK
	}
	for _, c := range classes {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.code
			}
		}
	}
	return Internal
}

// HTTPStatus returns the HTTP status for code.
func HTTPStatus(code Code) int {
	switch code {
	case OK:
		return http.StatusOK
	case NotFound:
		return http.StatusNotFound
	case OutOfRange, InvalidArgument, Corrupt:
		return http.StatusBadRequest
	case InvalidState:
		return http.StatusConflict
	case IncompatibleVersion:
		return http.StatusUnprocessableEntity
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	case Unavailable:
		return http.StatusServiceUnavailable
	case Canceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode returns a process exit status for code: 0 for OK, 2 for caller
// mistakes and 1 otherwise.
func ExitCode(code Code) int {
	switch code {
	case OK:
		return 0
	case NotFound, OutOfRange, InvalidArgument, InvalidState, Corrupt, IncompatibleVersion, TooLarge:
		return 2
	default:
		return 1
	}
}
