package backup

import (
	"strings"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

// Version is the manifest format written by Export. Archives are readable
// when their major version matches.
const Version = "1.0"

const (
	manifestName = "metadata.json"
	sourceDir    = "pdfs"
)

// Manifest is the metadata.json document of a backup archive.
type Manifest struct {
	Version    string   `json:"version"`
	ExportedAt string   `json:"exported_at"`
	Documents  []Record `json:"documents"`
}

// Record describes one archived document. File names the archive entry
// holding its source and is empty when the source was missing at export.
type Record struct {
	ID               string       `json:"id"`
	OriginalFilename string       `json:"original_filename"`
	PageCount        int          `json:"page_count"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	Title            string       `json:"title"`
	Year             string       `json:"year"`
	Subject          string       `json:"subject"`
	UploadTimestamp  string       `json:"upload_timestamp"`
	File             string       `json:"file"`
	SHA256           string       `json:"sha256,omitempty"`
	Annotations      []RecordNote `json:"annotations"`
}

// RecordNote is one archived annotation.
type RecordNote struct {
	PageNumber int    `json:"page_number"`
	NoteText   string `json:"note_text"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func newRecord(doc documents.Document, notes []documents.Annotation) Record {
	rec := Record{
		ID:               doc.ID.String(),
		OriginalFilename: doc.OriginalFilename,
		PageCount:        doc.PageCount,
		FirstName:        doc.FirstName,
		LastName:         doc.LastName,
		Title:            doc.Title,
		Year:             doc.Year,
		Subject:          doc.Subject,
		UploadTimestamp:  formatTime(&doc.UploadedAt),
		Annotations:      make([]RecordNote, len(notes)),
	}
	for i, a := range notes {
		rec.Annotations[i] = RecordNote{
			PageNumber: a.PageNumber,
			NoteText:   a.NoteText,
			CreatedAt:  formatTime(a.CreatedAt),
			UpdatedAt:  formatTime(a.UpdatedAt),
		}
	}
	return rec
}

func (r Record) metadata() documents.Metadata {
	return documents.Metadata{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Title:     r.Title,
		Year:      r.Year,
		Subject:   r.Subject,
	}
}

func (r Record) annotations() []documents.Annotation {
	out := make([]documents.Annotation, len(r.Annotations))
	for i, n := range r.Annotations {
		out[i] = documents.Annotation{
			PageNumber: n.PageNumber,
			NoteText:   n.NoteText,
			CreatedAt:  parseTime(n.CreatedAt),
			UpdatedAt:  parseTime(n.UpdatedAt),
		}
	}
	return out
}

// compatible reports whether version is a MAJOR.MINOR tag sharing the
// major number of Version.
func compatible(version string) bool {
	major, minor, ok := strings.Cut(version, ".")
	if !ok || !numeric(major) || !numeric(minor) {
		return false
	}
	want, _, _ := strings.Cut(Version, ".")
	return major == want
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Older archives carry naive "YYYY-MM-DD HH:MM:SS" timestamps; those are
// read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	time.DateTime,
	time.DateOnly,
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
