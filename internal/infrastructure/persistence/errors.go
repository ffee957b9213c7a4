package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const sqliteUniqueFailed = "UNIQUE constraint failed: "

// uniqueViolation reports whether err is a unique-key conflict and names what
// collided: the constraint on PostgreSQL, the table.column list on SQLite.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == "23505"
	}
	if err == nil {
		return "", false
	}
	msg := err.Error()
	if i := strings.Index(msg, sqliteUniqueFailed); i >= 0 {
		return msg[i+len(sqliteUniqueFailed):], true
	}
	return "", false
}
