// Package documents persists PDF documents and their per-page annotations.
// It owns the page-renumbering protocol and keeps the annotation set of every
// document aligned with its page count.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is a stored PDF with its descriptive metadata.
type Document struct {
	ID               uuid.UUID `json:"id"`
	Owner            string    `json:"owner"`
	OriginalFilename string    `json:"original_filename"`
	StorageKey       string    `json:"storage_key"`
	PageCount        int       `json:"page_count"`
	SizeBytes        int64     `json:"size_bytes"`
	Metadata
	UploadedAt time.Time `json:"uploaded_at"`
}

// Metadata holds the optional free-text fields of a document.
// Empty strings mean "not set".
type Metadata struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Subject   string `json:"subject"`
}

// Summary is a list entry: the document plus annotation aggregates.
type Summary struct {
	Document
	NoteCount  int        `json:"note_count"`
	LastEdited *time.Time `json:"last_edited,omitempty"`
}

// Annotation is the note attached to one page. A page without a stored row
// reads as an Annotation with empty text and nil timestamps.
type Annotation struct {
	DocumentID uuid.UUID  `json:"document_id"`
	PageNumber int        `json:"page_number"`
	NoteText   string     `json:"note_text"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Stats aggregates an owner's corpus.
type Stats struct {
	DocumentCount   int   `json:"document_count"`
	AnnotationCount int   `json:"annotation_count"`
	TotalBytes      int64 `json:"total_bytes"`
}

// CreateCommand inserts a document whose source file is already stored.
// ID and UploadedAt are generated when zero.
type CreateCommand struct {
	ID         uuid.UUID
	Owner      string
	Filename   string
	StorageKey string
	PageCount  int
	SizeBytes  int64
	Metadata   Metadata
	UploadedAt time.Time
}

// RestoreCommand creates a document together with previously exported
// annotations. Pages without a restored annotation receive an empty one.
type RestoreCommand struct {
	CreateCommand
	Annotations []Annotation
}

// UploadCommand stores raw PDF bytes and creates the document.
type UploadCommand struct {
	Owner    string
	Filename string
	Data     []byte
	Metadata Metadata
}

// MetadataUpdate changes only the non-nil fields.
type MetadataUpdate struct {
	FirstName *string
	LastName  *string
	Title     *string
	Year      *string
	Subject   *string
}

// Filters narrows List results.
type Filters struct {
	Search  *string
	Subject *string
	Limit   int
}
