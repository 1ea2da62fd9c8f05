package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// errSkip marks a record that is counted as skipped rather than failing
// the import.
var errSkip = errors.New("record skipped")

func (c *codec) Import(ctx context.Context, owner, archivePath string) (Stats, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, err
		}
		return Stats{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	registerDecompressor(&zr.Reader)

	var total uint64
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		total += f.UncompressedSize64
		entries[f.Name] = f
	}
	if total > uint64(c.maxSize) {
		return Stats{}, fmt.Errorf("%w: %d bytes uncompressed, limit %d", ErrTooLarge, total, c.maxSize)
	}

	manifest, err := readManifest(entries)
	if err != nil {
		return Stats{}, err
	}
	if !compatible(manifest.Version) {
		return Stats{}, fmt.Errorf("%w: %q", ErrIncompatibleVersion, manifest.Version)
	}

	var stats Stats
	for _, rec := range manifest.Documents {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		restored, err := c.importRecord(ctx, owner, rec, entries)
		if err != nil {
			stats.DocumentsSkipped++
			c.logger.Warn("backup record skipped", "archived_id", rec.ID, "filename", rec.OriginalFilename, "reason", err)
			continue
		}
		stats.DocumentsImported++
		stats.AnnotationsImported += restored
	}

	c.logger.Info("backup imported",
		"owner", owner,
		"imported", stats.DocumentsImported,
		"skipped", stats.DocumentsSkipped,
		"annotations", stats.AnnotationsImported,
	)
	return stats, nil
}

func readManifest(entries map[string]*zip.File) (*Manifest, error) {
	f, ok := entries[manifestName]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrCorrupt, manifestName)
	}

	data, err := readEntry(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, manifestName, err)
	}
	return &m, nil
}

// importRecord stores one archived document under a fresh id and returns
// the number of restored annotations.
func (c *codec) importRecord(ctx context.Context, owner string, rec Record, entries map[string]*zip.File) (int, error) {
	archivedID, err := uuid.Parse(rec.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid archived id", errSkip)
	}
	if rec.PageCount < 1 {
		return 0, fmt.Errorf("%w: page count %d", errSkip, rec.PageCount)
	}

	filename := documents.SanitizeFilename(rec.OriginalFilename)
	if filename == "" {
		filename = archivedID.String() + ".pdf"
	}

	id := uuid.New()
	f := locate(entries, rec, archivedID, id)
	if f == nil {
		return 0, fmt.Errorf("%w: source not in archive", errSkip)
	}

	data, err := readEntry(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errSkip, err)
	}
	if rec.SHA256 != "" {
		sum := sha256.Sum256(data)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), rec.SHA256) {
			return 0, fmt.Errorf("%w: checksum mismatch", errSkip)
		}
	}

	key := documents.StorageKey(id, filename)
	if err := c.storage.Store(ctx, key, data); err != nil {
		return 0, fmt.Errorf("%w: store %s: %v", errSkip, key, err)
	}

	cmd := documents.RestoreCommand{
		CreateCommand: documents.CreateCommand{
			ID:         id,
			Owner:      owner,
			Filename:   filename,
			StorageKey: key,
			PageCount:  rec.PageCount,
			SizeBytes:  int64(len(data)),
			Metadata:   rec.metadata(),
		},
		Annotations: rec.annotations(),
	}
	if t := parseTime(rec.UploadTimestamp); t != nil {
		cmd.UploadedAt = *t
	}

	_, restored, err := c.docs.Restore(ctx, cmd)
	if err != nil {
		if delErr := c.storage.Delete(ctx, key); delErr != nil {
			c.logger.Error("cleanup failed after restore error", "storage_key", key, "error", delErr)
		}
		return 0, err
	}
	return restored, nil
}

// locate finds a record's source entry: the manifest's file name, then the
// archived id's name, then the new id's name, each with the original
// extension before "pdf".
func locate(entries map[string]*zip.File, rec Record, archivedID, id uuid.UUID) *zip.File {
	ext := documents.Extension(rec.OriginalFilename)

	var candidates []string
	if rec.File != "" {
		candidates = append(candidates, path.Clean(rec.File))
	}
	for _, name := range []string{archivedID.String(), id.String()} {
		candidates = append(candidates,
			fmt.Sprintf("%s/%s.%s", sourceDir, name, ext),
			fmt.Sprintf("%s/%s.pdf", sourceDir, name),
		)
	}

	for _, name := range candidates {
		if !strings.HasPrefix(name, sourceDir+"/") {
			continue
		}
		if f, ok := entries[name]; ok && !f.FileInfo().IsDir() {
			return f
		}
	}
	return nil
}

// readEntry reads f, refusing more bytes than its declared size.
func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := int64(f.UncompressedSize64)
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("entry %s exceeds declared size", f.Name)
	}
	return buf.Bytes(), nil
}
