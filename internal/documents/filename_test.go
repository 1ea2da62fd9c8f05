package documents

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/pdf-annotator/internal/config"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd":     "passwd",
		`C:\docs\a|b?.pdf`:     "a_b_.pdf",
		`  "quoted" <x>.pdf  `: "_quoted_ _x_.pdf",
		"":                     "",
		"/":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestExtensionAndStorageKey(t *testing.T) {
	assert.Equal(t, "pdf", Extension("scan"))
	assert.Equal(t, "pdf", Extension("scan.PDF"))
	assert.Equal(t, "tiff", Extension("scan.tiff"))

	id := uuid.MustParse("6f1c2a8e-0b5b-4a71-9f10-3c3f3e4d5a6b")
	assert.Equal(t, "documents/6f1c2a8e-0b5b-4a71-9f10-3c3f3e4d5a6b.pdf", StorageKey(id, "x.pdf"))
}

func TestMetadataNormalize(t *testing.T) {
	limits := config.LimitsConfig{Name: 3, Title: 5, Year: 4, Subject: 2}

	m := Metadata{FirstName: " Ada ", LastName: "Lovelace", Title: "ünïcödé", Year: "18431", Subject: "  "}.Normalize(limits)
	assert.Equal(t, Metadata{FirstName: "Ada", LastName: "Lov", Title: "ünïcö", Year: "1843", Subject: ""}, m)
}
