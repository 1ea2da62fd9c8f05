package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-annotator/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMapError(t *testing.T) {
	otherErr := errors.New("some other error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, errDuplicate},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, errDuplicate},
		{"other", otherErr, otherErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, repository.IsConstraintViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, repository.IsConstraintViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}))
	assert.False(t, repository.IsConstraintViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, repository.IsConstraintViolation(errors.New("boom")))
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(context.Background(), tx, "UPDATE documents SET page_count = 1")
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM annotations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (struct{}, error) {
		ctx := context.Background()
		if _, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE page_number = 2"); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "UPDATE documents SET page_count = page_count - 1")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecExpectOne_NoRows(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repository.ExecExpectOne(context.Background(), db, "DELETE FROM documents WHERE id = $1", "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestQueryMany(t *testing.T) {
	db, mock := newTestDB(t)

	rows := sqlmock.NewRows([]string{"page_number"}).AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery("SELECT page_number").WillReturnRows(rows)

	pages, err := repository.QueryMany(context.Background(), db, "SELECT page_number FROM annotations", nil,
		func(s repository.Scanner) (int, error) {
			var n int
			err := s.Scan(&n)
			return n, err
		})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, pages)
}

func TestNullTime_Scan(t *testing.T) {
	want := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"nil", nil, false},
		{"time", want, true},
		{"sqlite text", "2024-03-09 14:05:00+00:00", true},
		{"sqlite bytes", []byte("2024-03-09 14:05:00"), true},
		{"rfc3339", "2024-03-09T14:05:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n repository.NullTime
			require.NoError(t, n.Scan(tt.src))
			assert.Equal(t, tt.valid, n.Valid)
			if tt.valid {
				assert.True(t, n.Time.Equal(want), "got %v", n.Time)
			} else {
				assert.Nil(t, n.Ptr())
			}
		})
	}
}

func TestNullTime_ScanInvalid(t *testing.T) {
	var n repository.NullTime
	assert.Error(t, n.Scan("yesterday"))
	assert.Error(t, n.Scan(42))
}
