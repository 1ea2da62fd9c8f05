package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/pkg/repository"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func (r *repo) DeletePage(ctx context.Context, id uuid.UUID, page int) (*Document, error) {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, r.deletePage(ctx, tx, id, page)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("page deleted", "id", id, "page", page)
	return r.Find(ctx, id)
}

func (r *repo) SetPageCount(ctx context.Context, id uuid.UUID, count int) (*Document, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: page count must be at least 1", ErrInvalidArgument)
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, r.setPageCount(ctx, tx, id, count, -1)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("page count updated", "id", id, "pages", count)
	return r.Find(ctx, id)
}

// RemovePage deletes the page from the stored PDF and renumbers its
// annotations. The previous source bytes are restored if the database
// update fails.
func (r *repo) RemovePage(ctx context.Context, id uuid.UUID, page int) (*Document, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > doc.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, doc.PageCount)
	}
	if doc.PageCount == 1 {
		return nil, ErrLastPage
	}

	original, err := r.storage.Retrieve(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	updated, err := r.pdf.RemovePage(original, page-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	if err := r.storage.Store(ctx, doc.StorageKey, updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := r.deletePage(ctx, tx, id, page); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, updateSize, int64(len(updated)), id)
	})
	if err != nil {
		r.restoreSource(ctx, doc.StorageKey, original)
		return nil, r.mapError(err)
	}

	r.notify(ctx, *doc)
	r.logger.Info("page removed", "id", id, "page", page)
	return r.Find(ctx, id)
}

// ReplaceSource overwrites the stored PDF and aligns annotations with the
// new page count.
func (r *repo) ReplaceSource(ctx context.Context, id uuid.UUID, data []byte) (*Document, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := r.inspect(data)
	if err != nil {
		return nil, err
	}

	original, err := r.storage.Retrieve(ctx, doc.StorageKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := r.storage.Store(ctx, doc.StorageKey, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, r.setPageCount(ctx, tx, id, count, int64(len(data)))
	})
	if err != nil {
		r.restoreSource(ctx, doc.StorageKey, original)
		return nil, r.mapError(err)
	}

	r.notify(ctx, *doc)
	r.logger.Info("source replaced", "id", id, "pages", count)
	return r.Find(ctx, id)
}

// deletePage removes one page's annotation and shifts every later
// annotation down by one. Rows are updated one at a time in ascending page
// order so the (document_id, page_number) key never collides.
func (r *repo) deletePage(ctx context.Context, tx *sql.Tx, id uuid.UUID, page int) error {
	count, err := r.checkPage(ctx, tx, id, page)
	if err != nil {
		return err
	}
	if count == 1 {
		return ErrLastPage
	}

	if _, err := tx.ExecContext(ctx, deleteAnnotation, id, page); err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}

	later, err := repository.QueryMany(ctx, tx, selectPagesAfter, []any{id, page}, scanPageNumber)
	if err != nil {
		return fmt.Errorf("query later pages: %w", err)
	}

	for _, p := range later {
		if err := repository.ExecExpectOne(ctx, tx, shiftAnnotation, p-1, id, p); err != nil {
			return fmt.Errorf("shift page %d: %w", p, err)
		}
	}

	return repository.ExecExpectOne(ctx, tx, updatePageCount, count-1, id)
}

// setPageCount trims annotations beyond count, adds empty annotations for
// new pages and stores the count. A negative size leaves size_bytes alone.
func (r *repo) setPageCount(ctx context.Context, tx *sql.Tx, id uuid.UUID, count int, size int64) error {
	previous, err := pageCount(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, deleteAnnotationsAfter, id, count); err != nil {
		return fmt.Errorf("trim annotations: %w", err)
	}

	if count > previous {
		if err := r.fillAnnotations(ctx, tx, id, previous+1, count, nil); err != nil {
			return err
		}
	}

	if size < 0 {
		return repository.ExecExpectOne(ctx, tx, updatePageCount, count, id)
	}
	return repository.ExecExpectOne(ctx, tx, updatePageCountAndSize, count, size, id)
}

func (r *repo) restoreSource(ctx context.Context, key string, original []byte) {
	if original == nil {
		return
	}
	if err := r.storage.Store(ctx, key, original); err != nil {
		r.logger.Error("source restore failed", "storage_key", key, "error", err)
	}
}

func scanPageNumber(s repository.Scanner) (int, error) {
	var n int
	err := s.Scan(&n)
	return n, err
}
