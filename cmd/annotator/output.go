package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: document id %q", documents.ErrInvalidArgument, s)
	}
	return id, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: page %q", documents.ErrInvalidArgument, s)
	}
	return n, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printDocument(w io.Writer, doc *documents.Document) {
	t := newTable(w)
	fmt.Fprintf(t, "ID\t%s\n", doc.ID)
	fmt.Fprintf(t, "File\t%s\n", doc.OriginalFilename)
	fmt.Fprintf(t, "Pages\t%d\n", doc.PageCount)
	fmt.Fprintf(t, "Size\t%d bytes\n", doc.SizeBytes)
	fmt.Fprintf(t, "Author\t%s\n", strings.TrimSpace(doc.FirstName+" "+doc.LastName))
	fmt.Fprintf(t, "Title\t%s\n", doc.Title)
	fmt.Fprintf(t, "Year\t%s\n", doc.Year)
	fmt.Fprintf(t, "Subject\t%s\n", doc.Subject)
	fmt.Fprintf(t, "Uploaded\t%s\n", formatTime(&doc.UploadedAt))
	t.Flush()
}

// moveArtifact relocates a generated file to dst, falling back to a copy
// when dst is on another filesystem.
func moveArtifact(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
