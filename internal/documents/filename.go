package documents

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/config"
)

var unsafeFilenameChars = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeFilename strips any directory part and replaces characters that
// are illegal in filenames on common platforms with "_".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return unsafeFilenameChars.Replace(name)
}

// Extension returns the lowercase extension of filename without the dot,
// or "pdf" when there is none.
func Extension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return "pdf"
	}
	return ext
}

// StorageKey is the blob key for a document's source file.
func StorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s.%s", id, Extension(filename))
}

// Normalize trims every field and truncates it to the configured rune limits.
func (m Metadata) Normalize(limits config.LimitsConfig) Metadata {
	return Metadata{
		FirstName: truncate(m.FirstName, limits.Name),
		LastName:  truncate(m.LastName, limits.Name),
		Title:     truncate(m.Title, limits.Title),
		Year:      truncate(m.Year, limits.Year),
		Subject:   truncate(m.Subject, limits.Subject),
	}
}

// Apply returns m with the non-nil fields of u.
func (u MetadataUpdate) Apply(m Metadata) Metadata {
	if u.FirstName != nil {
		m.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		m.LastName = *u.LastName
	}
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Year != nil {
		m.Year = *u.Year
	}
	if u.Subject != nil {
		m.Subject = *u.Subject
	}
	return m
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
