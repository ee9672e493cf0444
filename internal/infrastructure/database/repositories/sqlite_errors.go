package repositories

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// isUniqueConstraintErr reports whether err is a SQLite UNIQUE or PRIMARY
// KEY constraint violation, so repositories can translate it into the
// matching domain conflict error instead of leaking a driver-specific
// type to callers.
func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
