package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arcanaoficial/arcana-server/internal/store"
)

// wrapErr annotates err with op. Errors raised by the server keep the
// server's message; dial and context failures stay plain errors.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return store.DatabaseError(statusFor(pgErr.Code), pgErr.Message, op, err)
}

// statusFor maps a SQLSTATE to a response status.
func statusFor(sqlState string) int {
	switch {
	case sqlState == "23505": // unique_violation
		return http.StatusConflict
	case sqlState == "42501": // insufficient_privilege
		return http.StatusForbidden
	case strings.HasPrefix(sqlState, "22"), strings.HasPrefix(sqlState, "23"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
