package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrUnauthorized indicates an invalid, expired, or revoked session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPermissionDenied indicates acting on a resource the requester does not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation indicates rejected input, such as a blank required field.
	// Wrap it so callers can map the failure without matching message text.
	ErrValidation = errors.New("invalid input")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgForeignKeyViolation
}

// pgErrCode handles both the lib/pq and pgx error types so the store does
// not care which driver opened the handle.
func pgErrCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
