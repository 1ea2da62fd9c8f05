package documents_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
	"github.com/JaimeStill/pdf-annotator/internal/storetest"
)

const owner = "alice"

func notes(t *testing.T, sys documents.System, id uuid.UUID) map[int]string {
	t.Helper()
	all, err := sys.Annotations(context.Background(), id)
	require.NoError(t, err)

	out := make(map[int]string, len(all))
	for _, a := range all {
		out[a.PageNumber] = a.NoteText
	}
	return out
}

func TestCreate_FillsEmptyAnnotations(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	doc, err := env.Documents.Create(ctx, documents.CreateCommand{
		Owner:      owner,
		Filename:   "report.pdf",
		StorageKey: "documents/report.pdf",
		PageCount:  3,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.False(t, doc.UploadedAt.IsZero())

	assert.Equal(t, map[int]string{1: "", 2: "", 3: ""}, notes(t, env.Documents, doc.ID))
}

func TestCreate_RejectsInvalidPageCount(t *testing.T) {
	env := storetest.New(t)

	_, err := env.Documents.Create(context.Background(), documents.CreateCommand{
		Owner:      owner,
		Filename:   "empty.pdf",
		StorageKey: "documents/empty.pdf",
		PageCount:  0,
	})
	assert.ErrorIs(t, err, documents.ErrInvalidArgument)
}

func TestCreate_DuplicateStorageKey(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	cmd := documents.CreateCommand{Owner: owner, Filename: "a.pdf", StorageKey: "documents/a.pdf", PageCount: 1}
	_, err := env.Documents.Create(ctx, cmd)
	require.NoError(t, err)

	_, err = env.Documents.Create(ctx, cmd)
	assert.ErrorIs(t, err, documents.ErrDuplicate)
}

func TestUpsertAnnotation(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "notes.pdf", 2)

	first, err := env.Documents.UpsertAnnotation(ctx, doc.ID, 1, "hello")
	require.NoError(t, err)
	require.NotNil(t, first.UpdatedAt)

	second, err := env.Documents.UpsertAnnotation(ctx, doc.ID, 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", second.NoteText)
	assert.False(t, second.UpdatedAt.Before(*first.UpdatedAt))
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	got, err := env.Documents.Annotation(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.NoteText)

	_, err = env.Documents.UpsertAnnotation(ctx, doc.ID, 3, "beyond")
	assert.ErrorIs(t, err, documents.ErrPageOutOfRange)

	_, err = env.Documents.UpsertAnnotation(ctx, doc.ID, 0, "before")
	assert.ErrorIs(t, err, documents.ErrPageOutOfRange)

	_, err = env.Documents.UpsertAnnotation(ctx, uuid.New(), 1, "nobody")
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestUpsertAnnotation_NoteLimit(t *testing.T) {
	env := storetest.New(t)
	doc := env.Seed(t, owner, "long.pdf", 1)

	long := make([]rune, env.Limits.Note+1)
	for i := range long {
		long[i] = 'x'
	}

	_, err := env.Documents.UpsertAnnotation(context.Background(), doc.ID, 1, string(long))
	assert.ErrorIs(t, err, documents.ErrInvalidArgument)
}

func TestAnnotation_MissingRowReadsEmpty(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "gap.pdf", 2)

	ok, err := env.Documents.DeleteAnnotation(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	a, err := env.Documents.Annotation(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "", a.NoteText)
	assert.Nil(t, a.UpdatedAt)
}

func TestDeletePage_Renumbers(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "three.pdf", 3)

	env.Note(t, doc.ID, 1, "A")
	env.Note(t, doc.ID, 2, "B")
	env.Note(t, doc.ID, 3, "C")

	updated, err := env.Documents.DeletePage(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.PageCount)
	assert.Equal(t, map[int]string{1: "A", 2: "C"}, notes(t, env.Documents, doc.ID))
}

func TestDeletePage_Errors(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	single := env.Seed(t, owner, "single.pdf", 1)
	_, err := env.Documents.DeletePage(ctx, single.ID, 1)
	assert.ErrorIs(t, err, documents.ErrLastPage)

	two := env.Seed(t, owner, "two.pdf", 2)
	_, err = env.Documents.DeletePage(ctx, two.ID, 5)
	assert.ErrorIs(t, err, documents.ErrPageOutOfRange)

	_, err = env.Documents.DeletePage(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, documents.ErrNotFound)

	doc, err := env.Documents.Find(ctx, single.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount)
}

func TestSetPageCount(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "resize.pdf", 3)
	env.Note(t, doc.ID, 1, "keep")
	env.Note(t, doc.ID, 3, "drop")

	shrunk, err := env.Documents.SetPageCount(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, shrunk.PageCount)
	assert.Equal(t, map[int]string{1: "keep", 2: ""}, notes(t, env.Documents, doc.ID))

	grown, err := env.Documents.SetPageCount(ctx, doc.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, grown.PageCount)
	assert.Equal(t, map[int]string{1: "keep", 2: "", 3: "", 4: ""}, notes(t, env.Documents, doc.ID))

	_, err = env.Documents.SetPageCount(ctx, doc.ID, 0)
	assert.ErrorIs(t, err, documents.ErrInvalidArgument)
}

func TestList(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	older := env.Seed(t, owner, "older.pdf", 2)
	time.Sleep(5 * time.Millisecond)
	newer := env.Seed(t, owner, "newer.pdf", 1)
	env.Seed(t, "bob", "other.pdf", 1)

	env.Note(t, older.ID, 2, "annotated")

	summaries, err := env.Documents.List(ctx, owner, documents.Filters{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, newer.ID, summaries[0].ID)
	assert.Equal(t, older.ID, summaries[1].ID)
	assert.Equal(t, 0, summaries[0].NoteCount)
	assert.Equal(t, 1, summaries[1].NoteCount)
	require.NotNil(t, summaries[1].LastEdited)
	assert.False(t, summaries[1].LastEdited.Before(older.UploadedAt))
}

func TestList_Filters(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	doc, err := env.Documents.Upload(ctx, documents.UploadCommand{
		Owner:    owner,
		Filename: "thesis.pdf",
		Data:     storetest.FakePDF(1),
		Metadata: documents.Metadata{LastName: "Lovelace", Subject: "Math"},
	})
	require.NoError(t, err)
	env.Seed(t, owner, "draft.pdf", 1)

	search := "LOVE"
	found, err := env.Documents.List(ctx, owner, documents.Filters{Search: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, doc.ID, found[0].ID)

	subject := "History"
	found, err = env.Documents.List(ctx, owner, documents.Filters{Subject: &subject})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = env.Documents.List(ctx, owner, documents.Filters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpload_Validation(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  documents.UploadCommand
		want error
	}{
		{"empty", documents.UploadCommand{Owner: owner, Filename: "a.pdf"}, documents.ErrInvalidFile},
		{"not a pdf", documents.UploadCommand{Owner: owner, Filename: "a.pdf", Data: []byte("hello")}, documents.ErrInvalidFile},
		{"too large", documents.UploadCommand{Owner: owner, Filename: "a.pdf", Data: make([]byte, 11<<20)}, documents.ErrFileTooLarge},
		{"no filename", documents.UploadCommand{Owner: owner, Filename: " ", Data: storetest.FakePDF(1)}, documents.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Documents.Upload(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpload_StoresSource(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()

	doc, err := env.Documents.Upload(ctx, documents.UploadCommand{
		Owner:    owner,
		Filename: `C:\scans\bad:name?.pdf`,
		Data:     storetest.FakePDF(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "bad_name_.pdf", doc.OriginalFilename)
	assert.Equal(t, 4, doc.PageCount)
	assert.Equal(t, documents.StorageKey(doc.ID, doc.OriginalFilename), doc.StorageKey)

	data, err := env.Storage.Retrieve(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, storetest.FakePDF(4), data)

	exists, err := env.Documents.FilenameExists(ctx, owner, "bad_name_.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDelete(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "gone.pdf", 2)
	env.Note(t, doc.ID, 1, "bye")

	ok, err := env.Documents.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.Documents.Find(ctx, doc.ID)
	assert.ErrorIs(t, err, documents.ErrNotFound)

	exists, err := env.Storage.Validate(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)

	stats, err := env.Documents.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, documents.Stats{}, stats)

	ok, err = env.Documents.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	env := storetest.New(t)
	a := env.Seed(t, owner, "a.pdf", 2)
	env.Seed(t, owner, "b.pdf", 1)
	env.Note(t, a.ID, 1, "one")
	env.Note(t, a.ID, 2, "  ")

	stats, err := env.Documents.Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 1, stats.AnnotationCount)
	assert.Equal(t, int64(len(storetest.FakePDF(2))+len(storetest.FakePDF(1))), stats.TotalBytes)
}

func TestUpdateMetadata(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "meta.pdf", 1)

	last, year := "  Hopper ", "19845"
	updated, err := env.Documents.UpdateMetadata(ctx, doc.ID, documents.MetadataUpdate{LastName: &last, Year: &year})
	require.NoError(t, err)
	assert.Equal(t, "Hopper", updated.LastName)
	assert.Equal(t, "1984", updated.Year)

	first := "Grace"
	updated, err = env.Documents.UpdateMetadata(ctx, doc.ID, documents.MetadataUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Hopper", updated.LastName)

	_, err = env.Documents.UpdateMetadata(ctx, uuid.New(), documents.MetadataUpdate{FirstName: &first})
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestRestore(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	doc, restored, err := env.Documents.Restore(ctx, documents.RestoreCommand{
		CreateCommand: documents.CreateCommand{
			Owner:      owner,
			Filename:   "restored.pdf",
			StorageKey: "documents/restored.pdf",
			PageCount:  3,
			UploadedAt: created,
		},
		Annotations: []documents.Annotation{
			{PageNumber: 1, NoteText: "first", CreatedAt: &created, UpdatedAt: &created},
			{PageNumber: 1, NoteText: "duplicate"},
			{PageNumber: 9, NoteText: "out of range"},
			{PageNumber: 3, NoteText: "third"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	assert.True(t, created.Equal(doc.UploadedAt))
	assert.Equal(t, map[int]string{1: "first", 2: "", 3: "third"}, notes(t, env.Documents, doc.ID))

	a, err := env.Documents.Annotation(ctx, doc.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, a.UpdatedAt)
	assert.True(t, created.Equal(*a.UpdatedAt))
}

func TestRemovePage(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "remove.pdf", 3)
	env.Note(t, doc.ID, 1, "A")
	env.Note(t, doc.ID, 2, "B")
	env.Note(t, doc.ID, 3, "C")

	var changed []uuid.UUID
	env.Documents.OnSourceChange(func(_ context.Context, d documents.Document) {
		changed = append(changed, d.ID)
	})

	updated, err := env.Documents.RemovePage(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.PageCount)
	assert.Equal(t, map[int]string{1: "B", 2: "C"}, notes(t, env.Documents, doc.ID))
	assert.Equal(t, []uuid.UUID{doc.ID}, changed)

	data, err := env.Storage.Retrieve(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, storetest.FakePDF(2), data)
	assert.Equal(t, int64(len(data)), updated.SizeBytes)
}

func TestReplaceSource(t *testing.T) {
	env := storetest.New(t)
	ctx := context.Background()
	doc := env.Seed(t, owner, "replace.pdf", 2)
	env.Note(t, doc.ID, 2, "second")

	notified := 0
	env.Documents.OnSourceChange(func(context.Context, documents.Document) { notified++ })

	updated, err := env.Documents.ReplaceSource(ctx, doc.ID, storetest.FakePDF(1))
	require.NoError(t, err)
	assert.Equal(t, 1, updated.PageCount)
	assert.Equal(t, map[int]string{1: ""}, notes(t, env.Documents, doc.ID))
	assert.Equal(t, 1, notified)

	_, err = env.Documents.ReplaceSource(ctx, doc.ID, []byte("junk"))
	assert.ErrorIs(t, err, documents.ErrInvalidFile)
	assert.Equal(t, 1, notified)
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, documents.MapHTTPStatus(documents.ErrNotFound))
	assert.Equal(t, http.StatusConflict, documents.MapHTTPStatus(documents.ErrLastPage))
	assert.Equal(t, http.StatusRequestEntityTooLarge, documents.MapHTTPStatus(documents.ErrFileTooLarge))
	assert.Equal(t, http.StatusInternalServerError, documents.MapHTTPStatus(assert.AnError))
}
