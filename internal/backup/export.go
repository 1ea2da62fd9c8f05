package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func (c *codec) Export(ctx context.Context, owner string, ids []uuid.UUID) (*Archive, error) {
	docs, err := c.selectDocuments(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".backup-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	err = c.writeArchive(ctx, tmp, docs)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	final := filepath.Join(c.dir, uuid.NewString()+".zip")
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	c.logger.Info("backup exported", "owner", owner, "documents", len(docs), "path", final)
	return &Archive{
		Path:      final,
		Filename:  fmt.Sprintf("pdf_annotator_backup_%s.zip", time.Now().Format("20060102_150405")),
		Documents: len(docs),
	}, nil
}

func (c *codec) writeArchive(ctx context.Context, f *os.File, docs []documents.Document) error {
	zw := newZipWriter(f)

	manifest := Manifest{
		Version:    Version,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Documents:  make([]Record, 0, len(docs)),
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		notes, err := c.docs.Annotations(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("load annotations for %s: %w", doc.ID, err)
		}
		rec := newRecord(doc, notes)

		data, err := c.storage.Retrieve(ctx, doc.StorageKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.logger.Warn("source missing, exporting metadata only", "id", doc.ID, "storage_key", doc.StorageKey)
		case err != nil:
			return fmt.Errorf("read source for %s: %w", doc.ID, err)
		default:
			rec.File = fmt.Sprintf("%s/%s.%s", sourceDir, doc.ID, documents.Extension(doc.OriginalFilename))
			sum := sha256.Sum256(data)
			rec.SHA256 = hex.EncodeToString(sum[:])

			w, err := zw.CreateHeader(&zip.FileHeader{Name: rec.File, Method: zip.Deflate, Modified: doc.UploadedAt})
			if err != nil {
				return fmt.Errorf("add %s: %w", rec.File, err)
			}
			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("write %s: %w", rec.File, err)
			}
		}

		manifest.Documents = append(manifest.Documents, rec)
	}

	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return zw.Close()
}

// selectDocuments resolves ids for owner; no ids selects every document.
func (c *codec) selectDocuments(ctx context.Context, owner string, ids []uuid.UUID) ([]documents.Document, error) {
	if len(ids) == 0 {
		summaries, err := c.docs.List(ctx, owner, documents.Filters{})
		if err != nil {
			return nil, err
		}
		docs := make([]documents.Document, len(summaries))
		for i, s := range summaries {
			docs[i] = s.Document
		}
		return docs, nil
	}

	docs := make([]documents.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.docs.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.Owner != owner {
			return nil, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (c *codec) Info(ctx context.Context, owner string) (ExportInfo, error) {
	summaries, err := c.docs.List(ctx, owner, documents.Filters{})
	if err != nil {
		return ExportInfo{}, err
	}

	info := ExportInfo{DocumentCount: len(summaries)}
	for _, s := range summaries {
		notes, err := c.docs.Annotations(ctx, s.ID)
		if err != nil {
			return ExportInfo{}, err
		}
		info.AnnotationCount += len(notes)
		info.EstimatedSizeBytes += s.SizeBytes
	}
	return info, nil
}
