package sqlite

import (
	"errors"
	"fmt"
	"net/http"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/arcanaoficial/arcana-server/internal/store"
)

// wrapErr annotates err with op. Errors raised by SQLite keep its message
// so the admin pages can show it.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *sqlitedriver.Error
	if !errors.As(err, &sqlErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	code := http.StatusInternalServerError
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		code = http.StatusConflict
	default:
		if sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			code = http.StatusBadRequest
		}
	}
	return store.DatabaseError(code, sqlErr.Error(), op, err)
}
