package documents_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/storetest"
)

func TestDeletePage_RollsBackOnFailure(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "three.pdf", 3)
	env.Note(t, doc.ID, 1, "A")
	env.Note(t, doc.ID, 2, "B")
	env.Note(t, doc.ID, 3, "C")

	env.Abort(t, "BEFORE UPDATE OF page_count", "documents", "", "boom")

	_, err := env.Documents.DeletePage(ctx, doc.ID, 2)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")

	after, err := env.Documents.Find(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.PageCount)
	assert.Equal(t, map[int]string{1: "A", 2: "B", 3: "C"}, notes(t, env.Documents, doc.ID))
}

func TestDeletePage_RollsBackMidShift(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "four.pdf", 4)
	for page, text := range map[int]string{1: "A", 2: "B", 3: "C", 4: "D"} {
		env.Note(t, doc.ID, page, text)
	}

	// the first shift (3 -> 2) succeeds, the second (4 -> 3) aborts
	env.Abort(t, "BEFORE UPDATE OF page_number", "annotations", "OLD.page_number = 4", "boom")

	_, err := env.Documents.DeletePage(ctx, doc.ID, 2)
	assert.ErrorContains(t, err, "boom")

	after, err := env.Documents.Find(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.PageCount)
	assert.Equal(t, map[int]string{1: "A", 2: "B", 3: "C", 4: "D"}, notes(t, env.Documents, doc.ID))
}

func TestCreate_RollsBackOnAnnotationFailure(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	env.Abort(t, "BEFORE INSERT", "annotations", "NEW.page_number = 2", "boom")

	id := uuid.New()
	_, err := env.Documents.Create(ctx, documents.CreateCommand{
		ID:         id,
		Owner:      owner,
		Filename:   "partial.pdf",
		StorageKey: "documents/partial.pdf",
		PageCount:  3,
	})
	assert.ErrorContains(t, err, "boom")

	_, err = env.Documents.Find(ctx, id)
	assert.ErrorIs(t, err, documents.ErrNotFound)

	list, err := env.Documents.List(ctx, owner, documents.Filters{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpload_RollbackRemovesSource(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	env.Abort(t, "BEFORE INSERT", "annotations", "NEW.page_number = 2", "boom")

	_, err := env.Documents.Upload(ctx, documents.UploadCommand{
		Owner:    owner,
		Filename: "partial.pdf",
		Data:     storetest.FakePDF(2),
	})
	assert.ErrorContains(t, err, "boom")

	stats, err := env.Documents.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentCount)

	var blobs []string
	err = filepath.WalkDir(filepath.Join(env.Dir, "blobs"), func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			blobs = append(blobs, path)
		}
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestRestore_RollsBackOnAnnotationFailure(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	env.Abort(t, "BEFORE INSERT", "annotations", "NEW.page_number = 3", "boom")

	id := uuid.New()
	_, _, err := env.Documents.Restore(ctx, documents.RestoreCommand{
		CreateCommand: documents.CreateCommand{
			ID:         id,
			Owner:      owner,
			Filename:   "restored.pdf",
			StorageKey: "documents/restored.pdf",
			PageCount:  3,
		},
		Annotations: []documents.Annotation{
			{PageNumber: 1, NoteText: "first"},
			{PageNumber: 3, NoteText: "third"},
		},
	})
	assert.ErrorContains(t, err, "boom")

	_, err = env.Documents.Find(ctx, id)
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestRemovePage_RollbackRestoresSource(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "three.pdf", 3)
	env.Note(t, doc.ID, 3, "C")

	env.Abort(t, "BEFORE UPDATE OF page_count", "documents", "", "boom")

	_, err := env.Documents.RemovePage(ctx, doc.ID, 1)
	assert.ErrorContains(t, err, "boom")

	data, err := env.Storage.Retrieve(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, storetest.FakePDF(3), data)
	assert.Equal(t, map[int]string{1: "", 2: "", 3: "C"}, notes(t, env.Documents, doc.ID))
}
