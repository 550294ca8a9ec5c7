package repo

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write hits a unique constraint
	// (username on users, (username, period) on schedule).
	ErrDuplicate = errors.New("duplicate")
	// ErrUnknownColumn is returned when a sparse update names a column outside the whitelist.
	ErrUnknownColumn = errors.New("unknown column")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgerrcode.UniqueViolation
}
