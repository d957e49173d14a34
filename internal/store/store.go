package store

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps user search text in wildcards, escaping LIKE
// metacharacters so a literal % or _ matches itself.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a Postgres unique-constraint
// violation on the named constraint or index. Repositories use it to
// translate race-induced constraint errors into domain conflicts.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
