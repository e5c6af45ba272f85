package common

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE postgres reports for unique constraint violations.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique constraint on insert/update.
// Postgres errors are unwrapped to *pgconn.PgError; other dialects rely on gorm's translation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsRecordNotFound wraps gorm's not-found sentinel check.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
