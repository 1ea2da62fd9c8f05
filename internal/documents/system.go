package documents

import (
	"context"

	"github.com/google/uuid"
)

// SourceObserver is notified after a document's source file was replaced
// or removed.
type SourceObserver func(ctx context.Context, doc Document)

// System defines the document and annotation operations.
// Multi-statement operations run in a single transaction; on failure the
// store is left unchanged.
type System interface {
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Restore(ctx context.Context, cmd RestoreCommand) (*Document, int, error)
	Upload(ctx context.Context, cmd UploadCommand) (*Document, error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, owner string, filters Filters) ([]Summary, error)
	FilenameExists(ctx context.Context, owner, filename string) (bool, error)
	Stats(ctx context.Context, owner string) (Stats, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, cmd MetadataUpdate) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	Annotation(ctx context.Context, id uuid.UUID, page int) (*Annotation, error)
	Annotations(ctx context.Context, id uuid.UUID) ([]Annotation, error)
	UpsertAnnotation(ctx context.Context, id uuid.UUID, page int, text string) (*Annotation, error)
	DeleteAnnotation(ctx context.Context, id uuid.UUID, page int) (bool, error)

	DeletePage(ctx context.Context, id uuid.UUID, page int) (*Document, error)
	SetPageCount(ctx context.Context, id uuid.UUID, count int) (*Document, error)
	RemovePage(ctx context.Context, id uuid.UUID, page int) (*Document, error)
	ReplaceSource(ctx context.Context, id uuid.UUID, data []byte) (*Document, error)

	OnSourceChange(fn SourceObserver)
}
