package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// MapError converts driver errors into the caller's domain sentinels.
// sql.ErrNoRows becomes notFound and unique violations become duplicate,
// for both PostgreSQL and SQLite. Other errors are returned unchanged.
func MapError(err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if IsUniqueViolation(err) {
		return duplicate
	}
	return err
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsConstraintViolation reports whether err is a check or foreign key violation.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.CheckViolation ||
			pgErr.Code == pgerrcode.ForeignKeyViolation ||
			pgErr.Code == pgerrcode.NotNullViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintCheck ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintNotNull
	}
	return false
}
