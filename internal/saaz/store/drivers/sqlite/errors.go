package sqlite

import (
	"errors"
	"strings"

	"github.com/saazhq/saaz/internal/saaz/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapConstraint translates SQLite unique-constraint failures into the
// store's column-specific sentinels. The UNIQUE index is the authority on
// uniqueness; pre-checks in the service only produce friendlier errors.
func mapConstraint(err error) error {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return err
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return store.ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return store.ErrUsernameTaken
	case strings.Contains(msg, "users.google_id"):
		return store.ErrGoogleIDTaken
	default:
		return store.ErrAlreadyExists
	}
}
