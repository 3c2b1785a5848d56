package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolationCode is the Postgres error class for unique_violation.
const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error references a unique
// index violation. When constraintName is provided, the helper additionally
// requires the constraint text to appear in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}

	// Message markers for drivers that do not expose typed errors
	// (lib/pq text, sqlite in tests).
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
