package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/pkg/repository"
)

func (r *repo) Annotation(ctx context.Context, id uuid.UUID, page int) (*Annotation, error) {
	if _, err := r.checkPage(ctx, r.db, id, page); err != nil {
		return nil, err
	}

	a, err := repository.QueryOne(ctx, r.db, selectAnnotation, []any{id, page}, scanAnnotation)
	if errors.Is(err, sql.ErrNoRows) {
		return &Annotation{DocumentID: id, PageNumber: page}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query annotation: %w", err)
	}
	return &a, nil
}

func (r *repo) Annotations(ctx context.Context, id uuid.UUID) ([]Annotation, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	annotations, err := repository.QueryMany(ctx, r.db, selectAnnotations, []any{id}, scanAnnotation)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	return annotations, nil
}

func (r *repo) UpsertAnnotation(ctx context.Context, id uuid.UUID, page int, text string) (*Annotation, error) {
	if r.limits.Note > 0 && utf8.RuneCountInString(text) > r.limits.Note {
		return nil, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidArgument, r.limits.Note)
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Annotation, error) {
		if _, err := r.checkPage(ctx, tx, id, page); err != nil {
			return Annotation{}, err
		}
		return repository.QueryOne(ctx, tx, upsertAnnotation, []any{id, page, text, now()}, scanAnnotation)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Debug("annotation saved", "id", id, "page", page)
	return &a, nil
}

func (r *repo) DeleteAnnotation(ctx context.Context, id uuid.UUID, page int) (bool, error) {
	n, err := repository.ExecAffected(ctx, r.db, deleteAnnotation, id, page)
	if err != nil {
		return false, fmt.Errorf("delete annotation: %w", err)
	}
	return n > 0, nil
}

// checkPage returns the document's page count, or ErrNotFound /
// ErrPageOutOfRange.
func (r *repo) checkPage(ctx context.Context, q repository.Querier, id uuid.UUID, page int) (int, error) {
	count, err := pageCount(ctx, q, id)
	if err != nil {
		return 0, err
	}
	if page < 1 || page > count {
		return count, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, count)
	}
	return count, nil
}

func pageCount(ctx context.Context, q repository.Querier, id uuid.UUID) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, selectPageCount, id).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("query page count: %w", err)
	}
	return count, nil
}
