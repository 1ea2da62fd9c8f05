// Package storetest builds throwaway SQLite-backed document stores for tests.
package storetest

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/internal/schema"
	"github.com/JaimeStill/pdf-annotator/pkg/database"
	"github.com/JaimeStill/pdf-annotator/pkg/lifecycle"
	"github.com/JaimeStill/pdf-annotator/pkg/logging"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Env is a migrated database, a filesystem blob store and a document
// system wired together under t.TempDir().
type Env struct {
	Dir       string
	Database  *database.Config
	DB        *sql.DB
	Storage   storage.System
	Documents documents.System
	Limits    config.LimitsConfig

	triggers []string
}

// New creates an Env. Everything is closed through t.Cleanup.
func New(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	logger := logging.Discard()

	dbCfg := &database.Config{Driver: database.DriverSQLite, Path: filepath.Join(dir, "test.db")}
	if err := dbCfg.Finalize(nil); err != nil {
		t.Fatalf("database config: %v", err)
	}
	if err := database.Migrate(dbCfg, schema.Migrations, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := storage.New(&storage.Config{Backend: storage.BackendFilesystem, BasePath: filepath.Join(dir, "blobs")}, logger)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if err := store.Start(lifecycle.New()); err != nil {
		t.Fatalf("storage start: %v", err)
	}

	var limits config.LimitsConfig
	if err := limits.Finalize(); err != nil {
		t.Fatalf("limits: %v", err)
	}

	return &Env{
		Dir:       dir,
		Database:  dbCfg,
		DB:        db,
		Storage:   store,
		Documents: documents.New(db, store, Processor{}, logger, limits, 10<<20),
		Limits:    limits,
	}
}

// Abort installs a SQLite trigger that aborts with message when event
// fires on table and the optional when condition holds, e.g.
// Abort(t, "BEFORE UPDATE OF page_count", "documents", "", "boom").
func (e *Env) Abort(t *testing.T, event, table, when, message string) {
	t.Helper()
	if when != "" {
		when = "WHEN " + when
	}
	stmt := fmt.Sprintf(
		"CREATE TRIGGER abort_%s_%d %s ON %s %s BEGIN SELECT RAISE(ABORT, '%s'); END",
		table, len(e.triggers), event, table, when, message,
	)
	if _, err := e.DB.Exec(stmt); err != nil {
		t.Fatalf("install trigger: %v", err)
	}
	e.triggers = append(e.triggers, stmt)
}

// Seed uploads a fake PDF with the given page count.
func (e *Env) Seed(t *testing.T, owner, filename string, pages int) *documents.Document {
	t.Helper()
	doc, err := e.Documents.Upload(context.Background(), documents.UploadCommand{
		Owner:    owner,
		Filename: filename,
		Data:     FakePDF(pages),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", filename, err)
	}
	return doc
}

// Note stores text on a page, failing the test on error.
func (e *Env) Note(t *testing.T, id uuid.UUID, page int, text string) {
	t.Helper()
	if _, err := e.Documents.UpsertAnnotation(context.Background(), id, page, text); err != nil {
		t.Fatalf("note page %d: %v", page, err)
	}
}

// FakePDF returns bytes that carry a PDF header and a page marker that
// Processor understands.
func FakePDF(pages int) []byte {
	return fmt.Appendf(nil, "%%PDF-1.4\n%% pages=%d\n", pages)
}

// Processor is a pdf.Processor over FakePDF bytes.
type Processor struct{}

var _ pdf.Processor = Processor{}

func (Processor) PageCount(data []byte) (int, error) {
	if !pdf.IsPDF(data) {
		return 0, pdf.ErrInvalid
	}
	var n int
	i := bytes.Index(data, []byte("pages="))
	if i < 0 {
		return 0, pdf.ErrInvalid
	}
	if _, err := fmt.Sscanf(string(data[i:]), "pages=%d", &n); err != nil || n < 1 {
		return 0, pdf.ErrInvalid
	}
	return n, nil
}

func (p Processor) RemovePage(data []byte, index int) ([]byte, error) {
	n, err := p.PageCount(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= n {
		return nil, pdf.ErrPageIndex
	}
	return FakePDF(n - 1), nil
}
