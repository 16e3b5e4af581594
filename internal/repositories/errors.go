package repositories

import (
	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/plottwist/internal/errors"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrDuplicateDate is returned when a mystery already exists for the date.
	ErrDuplicateDate = errors.NewSentinel("a mystery already exists for the date")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
