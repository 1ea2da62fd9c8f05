package outcome_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/pdf-annotator/internal/backup"
	"github.com/JaimeStill/pdf-annotator/internal/compose"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/outcome"
	"github.com/JaimeStill/pdf-annotator/internal/render"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want outcome.Code
	}{
		{nil, outcome.OK},
		{documents.ErrNotFound, outcome.NotFound},
		{fmt.Errorf("%w: documents/x.pdf", compose.ErrSourceMissing), outcome.NotFound},
		{storage.ErrNotFound, outcome.NotFound},
		{fmt.Errorf("wrap: %w", documents.ErrPageOutOfRange), outcome.OutOfRange},
		{documents.ErrInvalidFile, outcome.InvalidArgument},
		{render.ErrInvalidPageRange, outcome.InvalidArgument},
		{documents.ErrLastPage, outcome.InvalidState},
		{backup.ErrCorrupt, outcome.Corrupt},
		{backup.ErrIncompatibleVersion, outcome.IncompatibleVersion},
		{backup.ErrTooLarge, outcome.TooLarge},
		{render.ErrUnavailable, outcome.Unavailable},
		{documents.ErrStorage, outcome.StorageIO},
		{context.Canceled, outcome.Canceled},
		{errors.New("boom"), outcome.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, outcome.Classify(tt.err), "%v", tt.err)
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, outcome.HTTPStatus(outcome.NotFound))
	assert.Equal(t, http.StatusConflict, outcome.HTTPStatus(outcome.InvalidState))
	assert.Equal(t, http.StatusRequestEntityTooLarge, outcome.HTTPStatus(outcome.TooLarge))
	assert.Equal(t, http.StatusServiceUnavailable, outcome.HTTPStatus(outcome.Unavailable))
	assert.Equal(t, http.StatusInternalServerError, outcome.HTTPStatus(outcome.Internal))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, outcome.ExitCode(outcome.OK))
	assert.Equal(t, 2, outcome.ExitCode(outcome.OutOfRange))
	assert.Equal(t, 1, outcome.ExitCode(outcome.StorageIO))
}
