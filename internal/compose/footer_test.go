package compose

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
)

var testStyle = pdf.Style{FontSize: 10, Margin: 10, Padding: 4}

func TestFooterLines_FixedBand(t *testing.T) {
	// 200pt page: (200 - 20 - 8) / 6 = 28 columns; (80 - 8) / 10 = 7 rows.
	lines := footerLines("[2024-05-01 10:00]\nshort note", 200, testStyle, 80)

	assert.Len(t, lines, 7)
	for _, l := range lines {
		assert.Equal(t, 28, utf8.RuneCountInString(l))
	}
	assert.Equal(t, "[2024-05-01 10:00]", strings.TrimSpace(lines[0]))
	assert.Equal(t, "short note", strings.TrimSpace(lines[1]))
	assert.Equal(t, "", strings.TrimSpace(lines[6]))
}

func TestFooterLines_ClipsOverflow(t *testing.T) {
	text := strings.Repeat("word ", 200)
	lines := footerLines(text, 200, testStyle, 80)

	assert.Len(t, lines, 7)
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[6], " "), "..."))
	assert.Equal(t, 28, utf8.RuneCountInString(lines[6]))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"the quick", "brown fox"}, wrap("the quick brown fox", 10))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, wrap("abcdefghijk", 5))
	assert.Equal(t, []string{"a", "bcdef", "gh c"}, wrap("a bcdefgh c", 5))
	assert.Equal(t, []string{""}, wrap("   ", 5))
}

func TestSuggestedFilename(t *testing.T) {
	edited := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	doc := documents.Document{ID: uuid.New(), OriginalFilename: "scan 01.pdf"}

	tests := []struct {
		name   string
		meta   documents.Metadata
		edited *time.Time
		loc    *time.Location
		suffix string
		want   string
	}{
		{"author and date", documents.Metadata{FirstName: "Ada", LastName: "Lovelace"}, &edited, time.UTC, SuffixPDF, "LovelaceAda2024-12-31_annotated.pdf"},
		{"date in zone", documents.Metadata{}, &edited, time.FixedZone("CET", 3600), SuffixMarkdown, "2025-01-01_notes.md"},
		{"fallback to stem", documents.Metadata{}, nil, time.UTC, SuffixHTML, "scan 01_notes.html"},
		{"illegal characters", documents.Metadata{LastName: `O:Brien/"x"`}, nil, time.UTC, SuffixPDF, "O_Brien__x__annotated.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc
			d.Metadata = tt.meta
			assert.Equal(t, tt.want, SuggestedFilename(d, tt.edited, tt.loc, tt.suffix))
		})
	}
}
