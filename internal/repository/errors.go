package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate reports that an insert or update hit a uniqueness
// constraint. Callers treat it like sql.ErrNoRows: a sentinel to convert
// into a typed domain error.
var ErrDuplicate = errors.New("duplicate record")

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
