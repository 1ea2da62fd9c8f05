package compose

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// Filename suffixes for suggested artifact names.
const (
	SuffixPDF      = "annotated.pdf"
	SuffixMarkdown = "notes.md"
	SuffixHTML     = "notes.html"
)

var illegal = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", "\"", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_",
)

// SuggestedFilename builds LastFirstYYYY-MM-DD_suffix from the document's
// author and last edit. Without any of those parts it falls back to
// <source stem>_suffix.
func SuggestedFilename(doc documents.Document, lastEdited *time.Time, loc *time.Location, suffix string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(doc.LastName))
	b.WriteString(strings.TrimSpace(doc.FirstName))
	if lastEdited != nil && !lastEdited.IsZero() {
		b.WriteString(lastEdited.In(loc).Format(time.DateOnly))
	}

	if b.Len() == 0 {
		stem := strings.TrimSuffix(doc.OriginalFilename, filepath.Ext(doc.OriginalFilename))
		if stem == "" {
			stem = "document"
		}
		b.WriteString(stem)
	}

	return illegal.Replace(b.String() + "_" + suffix)
}
