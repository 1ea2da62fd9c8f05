package query_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/JaimeStill/pdf-annotator/pkg/query"
)

func newTestProjection() *query.ProjectionMap {
	return query.NewProjectionMap("documents", "d").
		Project("id", "ID").
		Project("owner", "Owner").
		Project("original_filename", "Filename").
		Project("uploaded_at", "UploadedAt")
}

func TestProjectionMap(t *testing.T) {
	pm := newTestProjection().
		Join("LEFT JOIN annotations a ON a.document_id = d.id").
		ProjectExpr("MAX(a.updated_at)", "LastEdited")

	if got := pm.Table(); got != "documents d LEFT JOIN annotations a ON a.document_id = d.id" {
		t.Errorf("Table() = %q", got)
	}
	if got := pm.Column("Filename"); got != "d.original_filename" {
		t.Errorf("Column(Filename) = %q", got)
	}
	if got := pm.Column("LastEdited"); got != "MAX(a.updated_at)" {
		t.Errorf("Column(LastEdited) = %q", got)
	}
}

func TestProjectionMap_UnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Column(unknown) should panic")
		}
	}()
	newTestProjection().Column("Missing")
}

func TestBuilder_Build(t *testing.T) {
	owner := "alice"
	search := "Smith"

	sql, args := query.NewBuilder(newTestProjection(),
		query.SortField{Field: "UploadedAt", Descending: true},
		query.SortField{Field: "Filename"},
	).
		WhereEquals("Owner", owner).
		WhereSearch(&search, "Filename", "Owner").
		Build()

	want := "SELECT d.id, d.owner, d.original_filename, d.uploaded_at FROM documents d" +
		" WHERE d.owner = $1 AND (LOWER(d.original_filename) LIKE $2 OR LOWER(d.owner) LIKE $3)" +
		" ORDER BY d.uploaded_at DESC, d.original_filename ASC"
	if sql != want {
		t.Errorf("Build() sql =\n%q\nwant\n%q", sql, want)
	}

	wantArgs := []any{"alice", "%smith%", "%smith%"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("Build() args = %v, want %v", args, wantArgs)
	}
}

func TestBuilder_GroupAndLimit(t *testing.T) {
	pm := newTestProjection().
		Join("LEFT JOIN annotations a ON a.document_id = d.id").
		ProjectExpr("MAX(a.updated_at)", "LastEdited").
		GroupBy("ID")

	sql, _ := query.NewBuilder(pm).Limit(5).Build()

	if !strings.Contains(sql, " GROUP BY d.id") {
		t.Errorf("Build() missing GROUP BY: %q", sql)
	}
	if !strings.HasSuffix(sql, " LIMIT 5") {
		t.Errorf("Build() missing LIMIT: %q", sql)
	}
}

func TestBuilder_IgnoresEmptyConditions(t *testing.T) {
	empty := ""
	sql, args := query.NewBuilder(newTestProjection()).
		WhereContains("Filename", nil).
		WhereContains("Filename", &empty).
		WhereEquals("Owner", nil).
		WhereIn("ID", nil).
		Build()

	if strings.Contains(sql, "WHERE") {
		t.Errorf("Build() = %q, want no WHERE clause", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilder_BuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(newTestProjection(), query.SortField{Field: "UploadedAt"}).
		BuildSingle("ID", "abc")

	if !strings.HasSuffix(sql, "FROM documents d WHERE d.id = $1") {
		t.Errorf("BuildSingle() = %q", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilder_WhereIn(t *testing.T) {
	sql, args := query.NewBuilder(newTestProjection()).
		WhereEquals("Owner", "bob").
		WhereIn("ID", []any{"a", "b"}).
		Build()

	if !strings.Contains(sql, "d.owner = $1 AND d.id IN ($2, $3)") {
		t.Errorf("Build() = %q", sql)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want 3", args)
	}
}
