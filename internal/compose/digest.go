package compose

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v2"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// Format selects the digest encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, s)
	}
}

func (f Format) suffix() string {
	if f == FormatHTML {
		return SuffixHTML
	}
	return SuffixMarkdown
}

const noNotes = "_No notes._"

var markdown = goldmark.New()

type frontMatter struct {
	Document  string `yaml:"document"`
	ID        string `yaml:"id"`
	Pages     int    `yaml:"pages"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Year      string `yaml:"year,omitempty"`
	Subject   string `yaml:"subject,omitempty"`
	Uploaded  string `yaml:"uploaded"`
	Notes     int    `yaml:"notes"`
}

// stamp formats t as [YYYY-MM-DD HH:MM] in loc.
func stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("[2006-01-02 15:04]")
}

// digestBody renders the Markdown notes section: a heading per non-empty
// note in page order.
func digestBody(doc documents.Document, notes []documents.Annotation, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Notes on %s\n\n", doc.OriginalFilename)

	if len(notes) == 0 {
		b.WriteString(noNotes + "\n")
		return b.String()
	}

	for _, a := range notes {
		fmt.Fprintf(&b, "## Page %d - %s\n\n%s\n\n", a.PageNumber, stamp(noteTime(a, doc), loc), strings.TrimSpace(a.NoteText))
	}
	return b.String()
}

func markdownDigest(doc documents.Document, notes []documents.Annotation, loc *time.Location) ([]byte, error) {
	fm, err := yaml.Marshal(frontMatter{
		Document:  doc.OriginalFilename,
		ID:        doc.ID.String(),
		Pages:     doc.PageCount,
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Title:     doc.Title,
		Year:      doc.Year,
		Subject:   doc.Subject,
		Uploaded:  doc.UploadedAt.In(loc).Format(time.RFC3339),
		Notes:     len(notes),
	})
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(digestBody(doc, notes, loc))
	return b.Bytes(), nil
}

func htmlDigest(doc documents.Document, notes []documents.Annotation, loc *time.Location) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(digestBody(doc, notes, loc)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Notes on %s</title>\n", html.EscapeString(doc.OriginalFilename))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

// nonEmpty returns annotations whose trimmed text is not empty.
func nonEmpty(all []documents.Annotation) []documents.Annotation {
	notes := make([]documents.Annotation, 0, len(all))
	for _, a := range all {
		if strings.TrimSpace(a.NoteText) != "" {
			notes = append(notes, a)
		}
	}
	return notes
}

func noteTime(a documents.Annotation, doc documents.Document) time.Time {
	if a.UpdatedAt != nil {
		return *a.UpdatedAt
	}
	return doc.UploadedAt
}

// lastEdited is the latest update across all annotations.
func lastEdited(all []documents.Annotation) *time.Time {
	var latest *time.Time
	for _, a := range all {
		if a.UpdatedAt != nil && (latest == nil || a.UpdatedAt.After(*latest)) {
			latest = a.UpdatedAt
		}
	}
	return latest
}
