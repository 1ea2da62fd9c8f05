// Package backup exports documents with their notes and source files to a
// portable zip archive and imports such archives as new documents.
package backup

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Archive is a written backup file and its suggested download name.
type Archive struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	Documents int    `json:"documents"`
}

// Stats summarizes an archive import.
type Stats struct {
	DocumentsImported   int `json:"documents_imported"`
	DocumentsSkipped    int `json:"documents_skipped"`
	AnnotationsImported int `json:"annotations_imported"`
}

// ExportInfo previews what Export would write for an owner.
type ExportInfo struct {
	DocumentCount      int   `json:"document_count"`
	AnnotationCount    int   `json:"annotation_count"`
	EstimatedSizeBytes int64 `json:"estimated_size_bytes"`
}

// DirectoryStats summarizes a bulk directory import.
type DirectoryStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// System moves documents in and out of backup archives.
type System interface {
	Export(ctx context.Context, owner string, ids []uuid.UUID) (*Archive, error)
	Import(ctx context.Context, owner, path string) (Stats, error)
	Info(ctx context.Context, owner string) (ExportInfo, error)
	ImportDirectory(ctx context.Context, owner, root, subject string) (DirectoryStats, error)
}

type codec struct {
	docs    documents.System
	storage storage.System
	dir     string
	maxSize int64
	logger  *slog.Logger
}

// New creates a backup codec writing archives under dir.
func New(
	docs documents.System,
	store storage.System,
	dir string,
	cfg config.BackupConfig,
	logger *slog.Logger,
) System {
	return &codec{
		docs:    docs,
		storage: store,
		dir:     dir,
		maxSize: cfg.MaxArchiveSizeBytes(),
		logger:  logger.With("system", "backup"),
	}
}

func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return zw
}

func registerDecompressor(zr *zip.Reader) {
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)
}
