package documents

import (
	"github.com/JaimeStill/pdf-annotator/pkg/query"
	"github.com/JaimeStill/pdf-annotator/pkg/repository"
)

const (
	insertDocument = `INSERT INTO documents (id, owner, original_filename, storage_key, page_count, size_bytes,
		first_name, last_name, title, year, subject, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertAnnotation = `INSERT INTO annotations (document_id, page_number, note_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	upsertAnnotation = `INSERT INTO annotations (document_id, page_number, note_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (document_id, page_number) DO UPDATE SET
			note_text = excluded.note_text,
			updated_at = CASE WHEN excluded.updated_at > annotations.updated_at
				THEN excluded.updated_at ELSE annotations.updated_at END
		RETURNING document_id, page_number, note_text, created_at, updated_at`

	selectAnnotation = `SELECT document_id, page_number, note_text, created_at, updated_at
		FROM annotations WHERE document_id = $1 AND page_number = $2`

	selectAnnotations = `SELECT document_id, page_number, note_text, created_at, updated_at
		FROM annotations WHERE document_id = $1 ORDER BY page_number ASC`

	selectPageCount = `SELECT page_count FROM documents WHERE id = $1`

	selectPagesAfter = `SELECT page_number FROM annotations
		WHERE document_id = $1 AND page_number > $2 ORDER BY page_number ASC`

	shiftAnnotation = `UPDATE annotations SET page_number = $1 WHERE document_id = $2 AND page_number = $3`

	deleteAnnotation = `DELETE FROM annotations WHERE document_id = $1 AND page_number = $2`

	deleteAnnotationsAfter = `DELETE FROM annotations WHERE document_id = $1 AND page_number > $2`

	deleteAnnotations = `DELETE FROM annotations WHERE document_id = $1`

	updatePageCount = `UPDATE documents SET page_count = $1 WHERE id = $2`

	updatePageCountAndSize = `UPDATE documents SET page_count = $1, size_bytes = $2 WHERE id = $3`

	updateSize = `UPDATE documents SET size_bytes = $1 WHERE id = $2`

	updateMetadata = `UPDATE documents SET first_name = $1, last_name = $2, title = $3, year = $4, subject = $5
		WHERE id = $6`

	deleteDocument = `DELETE FROM documents WHERE id = $1`

	selectFilenameExists = `SELECT COUNT(*) FROM documents WHERE owner = $1 AND original_filename = $2`

	selectStats = `SELECT COUNT(*), CAST(COALESCE(SUM(size_bytes), 0) AS BIGINT),
		(SELECT COUNT(*) FROM annotations a JOIN documents n ON n.id = a.document_id
			WHERE n.owner = $1 AND TRIM(a.note_text) <> '')
		FROM documents WHERE owner = $1`
)

func documentProjection() *query.ProjectionMap {
	return query.NewProjectionMap("documents", "d").
		Project("id", "ID").
		Project("owner", "Owner").
		Project("original_filename", "Filename").
		Project("storage_key", "StorageKey").
		Project("page_count", "PageCount").
		Project("size_bytes", "SizeBytes").
		Project("first_name", "FirstName").
		Project("last_name", "LastName").
		Project("title", "Title").
		Project("year", "Year").
		Project("subject", "Subject").
		Project("uploaded_at", "UploadedAt")
}

var projection = documentProjection()

var summaryProjection = documentProjection().
	Join("LEFT JOIN annotations a ON a.document_id = d.id").
	ProjectExpr("COUNT(CASE WHEN a.note_text <> '' THEN 1 END)", "NoteCount").
	ProjectExpr("MAX(a.updated_at)", "LastEdited").
	GroupBy("ID")

var defaultSort = []query.SortField{
	{Field: "UploadedAt", Descending: true},
	{Field: "Filename"},
}

func documentDest(d *Document, uploaded *repository.NullTime) []any {
	return []any{
		&d.ID,
		&d.Owner,
		&d.OriginalFilename,
		&d.StorageKey,
		&d.PageCount,
		&d.SizeBytes,
		&d.FirstName,
		&d.LastName,
		&d.Title,
		&d.Year,
		&d.Subject,
		uploaded,
	}
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	var uploaded repository.NullTime
	if err := s.Scan(documentDest(&d, &uploaded)...); err != nil {
		return d, err
	}
	d.UploadedAt = uploaded.Time
	return d, nil
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var sum Summary
	var uploaded, lastEdited repository.NullTime

	dest := append(documentDest(&sum.Document, &uploaded), &sum.NoteCount, &lastEdited)
	if err := s.Scan(dest...); err != nil {
		return sum, err
	}
	sum.UploadedAt = uploaded.Time
	sum.LastEdited = lastEdited.Ptr()
	return sum, nil
}

func scanAnnotation(s repository.Scanner) (Annotation, error) {
	var a Annotation
	var created, updated repository.NullTime
	if err := s.Scan(&a.DocumentID, &a.PageNumber, &a.NoteText, &created, &updated); err != nil {
		return a, err
	}
	a.CreatedAt = created.Ptr()
	a.UpdatedAt = updated.Ptr()
	return a, nil
}
