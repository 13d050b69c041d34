package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a unique-constraint
// violation on the named constraint. Falls back to message matching for
// non-pq errors so the check also works against test doubles.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return strings.Contains(err.Error(), constraint)
}
