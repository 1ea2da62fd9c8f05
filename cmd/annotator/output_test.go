package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/pdf-annotator/internal/api"
	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/storetest"
)

func TestParseID(t *testing.T) {
	if _, err := parseID("8a4b36c4-0a56-4c52-9d4b-6b1f2a7c3e10"); err != nil {
		t.Fatalf("parseID() error = %v", err)
	}
	if _, err := parseID("nope"); !errors.Is(err, documents.ErrInvalidArgument) {
		t.Errorf("parseID(nope) error = %v, want ErrInvalidArgument", err)
	}
}

func TestParsePage(t *testing.T) {
	n, err := parsePage("3")
	if err != nil || n != 3 {
		t.Fatalf("parsePage(3) = %d, %v", n, err)
	}
	if _, err := parsePage("x"); !errors.Is(err, documents.ErrInvalidArgument) {
		t.Errorf("parsePage(x) error = %v, want ErrInvalidArgument", err)
	}
}

func TestReadNote(t *testing.T) {
	got, err := readNote(strings.NewReader("from stdin\n\n"), "-")
	if err != nil || got != "from stdin" {
		t.Fatalf("readNote(-) = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = readNote(nil, path)
	if err != nil || got != "line one\nline two" {
		t.Fatalf("readNote(file) = %q, %v", got, err)
	}
}

func TestMoveArtifact(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tmp.pdf")
	dst := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(src, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := moveArtifact(src, dst); err != nil {
		t.Fatalf("moveArtifact() error = %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "%PDF" {
		t.Errorf("destination = %q, %v", data, err)
	}
	if !isDir(dir) || isDir(dst) {
		t.Errorf("isDir mismatch")
	}
}

func TestDefaultOwner(t *testing.T) {
	t.Setenv("ANNOTATOR_OWNER", "alice")
	if got := defaultOwner(); got != "alice" {
		t.Errorf("defaultOwner() = %q, want alice", got)
	}

	t.Setenv("ANNOTATOR_OWNER", "")
	t.Setenv("USER", "")
	if got := defaultOwner(); got != "local" {
		t.Errorf("defaultOwner() = %q, want local", got)
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()
	for _, path := range [][]string{
		{"documents", "list"},
		{"pages", "delete"},
		{"notes", "set"},
		{"render", "page"},
		{"export", "digest"},
		{"import", "dir"},
		{"cache", "info"},
		{"migrate"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
}

func TestServiceOwned(t *testing.T) {
	env := storetest.New(t)
	doc := env.Seed(t, "alice", "a.pdf", 2)
	svc := &Service{domain: &api.Domain{Documents: env.Documents}}

	prev := owner
	t.Cleanup(func() { owner = prev })

	owner = "bob"
	if _, err := svc.owned(context.Background(), doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("owned() as bob error = %v, want ErrNotFound", err)
	}

	owner = "alice"
	got, err := svc.owned(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("owned() as alice error = %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("owned() id = %s, want %s", got.ID, doc.ID)
	}
}

func TestImportCmd_HelpDescribesCopies(t *testing.T) {
	long := newImportArchiveCmd().Long
	if strings.Contains(long, "already exists") {
		t.Errorf("archive import help still claims existing ids are skipped: %q", long)
	}
	if !strings.Contains(long, "new id") {
		t.Errorf("archive import help does not mention new ids: %q", long)
	}
}
