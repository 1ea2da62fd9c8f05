package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// ImportDirectory uploads every PDF found one level below root. Each
// subdirectory is named after the author as "Last_First" or "Last-First".
// Files whose name the owner already has are skipped, as are
// subdirectories without PDFs.
func (c *codec) ImportDirectory(ctx context.Context, owner, root, subject string) (DirectoryStats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return DirectoryStats{}, fmt.Errorf("read import root: %w", err)
	}

	var stats DirectoryStats
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		dir := filepath.Join(root, e.Name())
		files, err := pdfFiles(dir)
		if err != nil {
			return stats, err
		}
		if len(files) == 0 {
			c.logger.Info("no pdf files, directory skipped", "dir", dir)
			stats.Skipped++
			continue
		}

		last, first := ParseAuthor(e.Name())
		for _, file := range files {
			c.importFile(ctx, owner, file, documents.Metadata{FirstName: first, LastName: last, Subject: subject}, &stats)
		}
	}

	c.logger.Info("directory imported", "root", root, "imported", stats.Imported, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

func (c *codec) importFile(ctx context.Context, owner, file string, meta documents.Metadata, stats *DirectoryStats) {
	name := documents.SanitizeFilename(filepath.Base(file))

	exists, err := c.docs.FilenameExists(ctx, owner, name)
	if err != nil {
		c.logger.Error("filename lookup failed", "file", file, "error", err)
		stats.Failed++
		return
	}
	if exists {
		c.logger.Info("already imported, skipped", "file", file)
		stats.Skipped++
		return
	}

	data, err := os.ReadFile(file)
	if err != nil {
		c.logger.Error("read failed", "file", file, "error", err)
		stats.Failed++
		return
	}

	doc, err := c.docs.Upload(ctx, documents.UploadCommand{
		Owner:    owner,
		Filename: name,
		Data:     data,
		Metadata: meta,
	})
	if err != nil {
		c.logger.Error("upload failed", "file", file, "error", err)
		stats.Failed++
		return
	}

	c.logger.Debug("file imported", "file", file, "id", doc.ID, "pages", doc.PageCount)
	stats.Imported++
}

func pdfFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// ParseAuthor splits a directory name into last and first name.
// "Doe_Jane_Marie" yields ("Doe", "Jane Marie"); without an underscore a
// hyphen separates the two, and a bare name is the last name.
func ParseAuthor(dir string) (last, first string) {
	if l, f, ok := strings.Cut(dir, "_"); ok {
		return l, strings.ReplaceAll(f, "_", " ")
	}
	if l, f, ok := strings.Cut(dir, "-"); ok {
		return l, f
	}
	return dir, ""
}
