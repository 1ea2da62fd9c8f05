package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/pdf-annotator/internal/pdf"
)

const (
	// Courier advances 600/1000 em per glyph.
	monoAdvance = 0.6
	bandPadding = 4.0
	ellipsis    = "..."
)

// footerLines lays text out for a footer band on a page of the given width.
// Lines are word-wrapped to the band, padded with spaces to its full width
// and padded or clipped to its full height so the stamp background always
// covers the same rectangle.
func footerLines(text string, pageWidth float64, style pdf.Style, bandHeight float64) []string {
	charWidth := monoAdvance * float64(style.FontSize)
	cols := int((pageWidth - 2*style.Margin - 2*style.Padding) / charWidth)
	rows := int((bandHeight - 2*style.Padding) / float64(style.FontSize))
	cols = max(cols, 1)
	rows = max(rows, 1)

	var lines []string
	for para := range strings.SplitSeq(text, "\n") {
		lines = append(lines, wrap(strings.TrimRight(para, " \t\r"), cols)...)
	}

	if len(lines) > rows {
		lines = lines[:rows]
		last := []rune(lines[rows-1])
		if len(last) > cols-len(ellipsis) {
			last = last[:max(cols-len(ellipsis), 0)]
		}
		lines[rows-1] = string(last) + ellipsis
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n < cols {
			lines[i] = l + strings.Repeat(" ", cols-n)
		}
	}
	return lines
}

// wrap breaks a paragraph at word boundaries into lines of at most cols
// runes. Words longer than a line are split.
func wrap(para string, cols int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > cols {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(word[:cols]))
			word = word[cols:]
		}

		switch {
		case len(cur) == 0:
			cur = word
		case len(cur)+1+len(word) <= cols:
			cur = append(append(cur, ' '), word...)
		default:
			lines = append(lines, string(cur))
			cur = word
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
