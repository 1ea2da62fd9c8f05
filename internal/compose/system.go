// Package compose produces export artifacts from a document and its notes:
// an annotated PDF with a footer per noted page, and a Markdown or HTML
// digest.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

// Artifact is a generated file under the export directory together with
// the filename suggested for download.
type Artifact struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// System composes export artifacts.
type System interface {
	ExportPDF(ctx context.Context, id uuid.UUID) (*Artifact, error)
	ExportDigest(ctx context.Context, id uuid.UUID, format Format) (*Artifact, error)
}

type composer struct {
	docs    documents.System
	storage storage.System
	overlay pdf.Overlay
	cfg     config.ExportConfig
	logger  *slog.Logger
}

func New(
	docs documents.System,
	store storage.System,
	overlay pdf.Overlay,
	cfg config.ExportConfig,
	logger *slog.Logger,
) System {
	return &composer{
		docs:    docs,
		storage: store,
		overlay: overlay,
		cfg:     cfg,
		logger:  logger.With("system", "compose"),
	}
}

func (c *composer) ExportPDF(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	doc, all, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	src, err := c.storage.Path(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, doc.StorageKey)
		}
		return nil, fmt.Errorf("%w: %v", documents.ErrStorage, err)
	}

	sizes, err := c.overlay.PageSizes(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompose, err)
	}

	stamps := c.stamps(*doc, nonEmpty(all), sizes)

	path, err := c.write("pdf", func(dst string) error {
		return c.overlay.Stamp(src, dst, stamps)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("annotated pdf exported", "id", id, "stamps", len(stamps), "path", path)
	return &Artifact{
		Path:     path,
		Filename: SuggestedFilename(*doc, lastEdited(all), c.cfg.Location(), SuffixPDF),
	}, nil
}

func (c *composer) ExportDigest(ctx context.Context, id uuid.UUID, format Format) (*Artifact, error) {
	if format != FormatMarkdown && format != FormatHTML {
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}

	doc, all, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	notes := nonEmpty(all)
	loc := c.cfg.Location()

	var data []byte
	if format == FormatHTML {
		data, err = htmlDigest(*doc, notes, loc)
	} else {
		data, err = markdownDigest(*doc, notes, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompose, err)
	}

	path, err := c.write(string(format), func(dst string) error {
		return os.WriteFile(dst, data, 0644)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("digest exported", "id", id, "format", format, "notes", len(notes), "path", path)
	return &Artifact{
		Path:     path,
		Filename: SuggestedFilename(*doc, lastEdited(all), loc, format.suffix()),
	}, nil
}

func (c *composer) load(ctx context.Context, id uuid.UUID) (*documents.Document, []documents.Annotation, error) {
	doc, err := c.docs.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	all, err := c.docs.Annotations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, all, nil
}

// stamps converts notes to overlay stamps. Pages are 1-based here and
// 0-based for the overlay.
func (c *composer) stamps(doc documents.Document, notes []documents.Annotation, sizes []pdf.Size) []pdf.Stamp {
	style := pdf.Style{
		Font:       c.cfg.Font,
		FontSize:   c.cfg.FontSize,
		Color:      c.cfg.Color,
		Background: c.cfg.Background,
		Margin:     c.cfg.Margin,
		Padding:    bandPadding,
	}
	loc := c.cfg.Location()

	stamps := make([]pdf.Stamp, 0, len(notes))
	for _, a := range notes {
		if a.PageNumber < 1 || a.PageNumber > len(sizes) {
			c.logger.Warn("note beyond pdf page count skipped", "id", doc.ID, "page", a.PageNumber, "pdf_pages", len(sizes))
			continue
		}

		text := stamp(noteTime(a, doc), loc) + "\n" + strings.TrimSpace(a.NoteText)
		stamps = append(stamps, pdf.Stamp{
			Index: a.PageNumber - 1,
			Lines: footerLines(text, sizes[a.PageNumber-1].Width, style, c.cfg.FooterHeight),
			Style: style,
		})
	}
	return stamps
}

// write runs fn against a temp file in the export directory and renames the
// result to a fresh <uuid>.<ext> only on success.
func (c *composer) write(ext string, fn func(dst string) error) (string, error) {
	if err := os.MkdirAll(c.cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("%w: create export dir: %v", ErrCompose, err)
	}

	tmp, err := os.CreateTemp(c.cfg.Dir, ".compose-*."+ext)
	if err != nil {
		return "", fmt.Errorf("%w: create temp: %v", ErrCompose, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := fn(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrCompose, err)
	}

	final := filepath.Join(c.cfg.Dir, uuid.NewString()+"."+ext)
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrCompose, err)
	}
	return final, nil
}
