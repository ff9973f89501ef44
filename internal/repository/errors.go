package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrUniqueViolation is returned when a write hits a unique index.
var ErrUniqueViolation = errors.New("unique constraint violation")

const (
	pqUniqueViolation   = "23505"
	pqInvalidTextFormat = "22P02"
)

// wrapErr wraps err with op. A malformed id can never match a row, so
// Postgres' invalid_text_representation is reported as sql.ErrNoRows.
func wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrUniqueViolation, pqErr.Constraint)
		case pqInvalidTextFormat:
			return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapWriteErr wraps err with op and surfaces unique violations as ErrUniqueViolation.
func wrapWriteErr(op string, err error) error {
	return wrapErr(op, err)
}

// whereClause joins conditions into a WHERE prefix; empty when there are none.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	clause := " WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		clause += " AND " + c
	}
	return clause
}
