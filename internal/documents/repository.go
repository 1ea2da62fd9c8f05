package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/pkg/query"
	"github.com/JaimeStill/pdf-annotator/pkg/repository"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

type repo struct {
	db            *sql.DB
	storage       storage.System
	pdf           pdf.Processor
	logger        *slog.Logger
	limits        config.LimitsConfig
	maxUploadSize int64

	mu        sync.RWMutex
	observers []SourceObserver
}

// New creates a document repository with database and blob storage integration.
func New(
	db *sql.DB,
	storage storage.System,
	processor pdf.Processor,
	logger *slog.Logger,
	limits config.LimitsConfig,
	maxUploadSize int64,
) System {
	return &repo{
		db:            db,
		storage:       storage,
		pdf:           processor,
		logger:        logger.With("system", "documents"),
		limits:        limits,
		maxUploadSize: maxUploadSize,
	}
}

func (r *repo) OnSourceChange(fn SourceObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *repo) notify(ctx context.Context, doc Document) {
	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()

	for _, fn := range observers {
		fn(ctx, doc)
	}
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	doc, err := r.prepare(cmd)
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := insertDocumentRow(ctx, tx, doc); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, r.fillAnnotations(ctx, tx, doc.ID, 1, doc.PageCount, nil)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("document created", "id", doc.ID, "filename", doc.OriginalFilename, "pages", doc.PageCount)
	return &doc, nil
}

func (r *repo) Restore(ctx context.Context, cmd RestoreCommand) (*Document, int, error) {
	doc, err := r.prepare(cmd.CreateCommand)
	if err != nil {
		return nil, 0, err
	}

	restored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		if err := insertDocumentRow(ctx, tx, doc); err != nil {
			return 0, err
		}

		seen := make(map[int]bool, len(cmd.Annotations))
		for _, a := range cmd.Annotations {
			if a.PageNumber < 1 || a.PageNumber > doc.PageCount || seen[a.PageNumber] {
				r.logger.Warn("annotation skipped on restore", "id", doc.ID, "page", a.PageNumber)
				continue
			}

			created := timeOr(a.CreatedAt, doc.UploadedAt)
			updated := timeOr(a.UpdatedAt, created)
			text := truncate(a.NoteText, r.limits.Note)

			if _, err := tx.ExecContext(ctx, insertAnnotation, doc.ID, a.PageNumber, text, created, updated); err != nil {
				return 0, fmt.Errorf("insert annotation %d: %w", a.PageNumber, err)
			}
			seen[a.PageNumber] = true
		}

		if err := r.fillAnnotations(ctx, tx, doc.ID, 1, doc.PageCount, seen); err != nil {
			return 0, err
		}
		return len(seen), nil
	})
	if err != nil {
		return nil, 0, r.mapError(err)
	}

	r.logger.Info("document restored", "id", doc.ID, "filename", doc.OriginalFilename, "annotations", restored)
	return &doc, restored, nil
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Document, error) {
	count, err := r.inspect(cmd.Data)
	if err != nil {
		return nil, err
	}

	filename := SanitizeFilename(cmd.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename required", ErrInvalidFile)
	}

	id := uuid.New()
	key := StorageKey(id, filename)

	if err := r.storage.Store(ctx, key, cmd.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	doc, err := r.Create(ctx, CreateCommand{
		ID:         id,
		Owner:      cmd.Owner,
		Filename:   filename,
		StorageKey: key,
		PageCount:  count,
		SizeBytes:  int64(len(cmd.Data)),
		Metadata:   cmd.Metadata,
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Error("cleanup failed after db error", "storage_key", key, "error", delErr)
		}
		return nil, err
	}

	return doc, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.find(ctx, r.db, id)
}

func (r *repo) List(ctx context.Context, owner string, filters Filters) ([]Summary, error) {
	qb := query.NewBuilder(summaryProjection, defaultSort...).WhereEquals("Owner", owner)
	filters.Apply(qb)

	q, args := qb.Build()
	summaries, err := repository.QueryMany(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return summaries, nil
}

func (r *repo) FilenameExists(ctx context.Context, owner, filename string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, selectFilenameExists, owner, filename).Scan(&n); err != nil {
		return false, fmt.Errorf("query filename: %w", err)
	}
	return n > 0, nil
}

func (r *repo) Stats(ctx context.Context, owner string) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, selectStats, owner).Scan(&s.DocumentCount, &s.TotalBytes, &s.AnnotationCount)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

func (r *repo) UpdateMetadata(ctx context.Context, id uuid.UUID, cmd MetadataUpdate) (*Document, error) {
	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Document, error) {
		doc, err := r.find(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		doc.Metadata = cmd.Apply(doc.Metadata).Normalize(r.limits)
		m := doc.Metadata
		if err := repository.ExecExpectOne(ctx, tx, updateMetadata,
			m.FirstName, m.LastName, m.Title, m.Year, m.Subject, id,
		); err != nil {
			return nil, err
		}
		return doc, nil
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("document metadata updated", "id", id)
	return doc, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, deleteAnnotations, id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, deleteDocument, id)
	})
	if err != nil {
		if mapped := r.mapError(err); errors.Is(mapped, ErrNotFound) {
			return false, nil
		}
		return false, r.mapError(err)
	}

	if err := r.storage.Delete(ctx, doc.StorageKey); err != nil {
		r.logger.Error("storage cleanup failed", "storage_key", doc.StorageKey, "error", err)
	}

	r.notify(ctx, *doc)
	r.logger.Info("document deleted", "id", id)
	return true, nil
}

func (r *repo) find(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)

	doc, err := repository.QueryOne(ctx, q, stmt, args, scanDocument)
	if err != nil {
		return nil, r.mapError(err)
	}
	return &doc, nil
}

// prepare validates cmd and fills generated fields.
func (r *repo) prepare(cmd CreateCommand) (Document, error) {
	switch {
	case cmd.PageCount < 1:
		return Document{}, fmt.Errorf("%w: page count must be at least 1", ErrInvalidArgument)
	case cmd.Filename == "":
		return Document{}, fmt.Errorf("%w: filename required", ErrInvalidArgument)
	case cmd.StorageKey == "":
		return Document{}, fmt.Errorf("%w: storage key required", ErrInvalidArgument)
	}

	doc := Document{
		ID:               cmd.ID,
		Owner:            cmd.Owner,
		OriginalFilename: cmd.Filename,
		StorageKey:       cmd.StorageKey,
		PageCount:        cmd.PageCount,
		SizeBytes:        cmd.SizeBytes,
		Metadata:         cmd.Metadata.Normalize(r.limits),
		UploadedAt:       cmd.UploadedAt.UTC().Truncate(time.Microsecond),
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if cmd.UploadedAt.IsZero() {
		doc.UploadedAt = now()
	}
	return doc, nil
}

// inspect validates raw upload bytes and returns their page count.
func (r *repo) inspect(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if r.maxUploadSize > 0 && int64(len(data)) > r.maxUploadSize {
		return 0, ErrFileTooLarge
	}
	if !pdf.IsPDF(data) {
		return 0, fmt.Errorf("%w: not a PDF", ErrInvalidFile)
	}

	count, err := r.pdf.PageCount(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return count, nil
}

// fillAnnotations inserts an empty annotation for every page in [from, to]
// not present in existing.
func (r *repo) fillAnnotations(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to int, existing map[int]bool) error {
	ts := now()
	for page := from; page <= to; page++ {
		if existing[page] {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertAnnotation, id, page, "", ts, ts); err != nil {
			return fmt.Errorf("insert annotation %d: %w", page, err)
		}
	}
	return nil
}

func (r *repo) mapError(err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
	if repository.IsConstraintViolation(mapped) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, mapped)
	}
	return mapped
}

func insertDocumentRow(ctx context.Context, tx *sql.Tx, d Document) error {
	_, err := tx.ExecContext(ctx, insertDocument,
		d.ID, d.Owner, d.OriginalFilename, d.StorageKey, d.PageCount, d.SizeBytes,
		d.FirstName, d.LastName, d.Title, d.Year, d.Subject, d.UploadedAt,
	)
	return err
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return t.UTC().Truncate(time.Microsecond)
}
