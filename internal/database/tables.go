package database

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
)

// PSQL builds statements with postgres placeholders.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	FamiliesTable    = "families"
	MembersTable     = "members"
	CategoriesTable  = "categories"
	EventsTable      = "events"
	ExceptionsTable  = "event_exceptions"
	CompletionsTable = "event_completions"
)

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const uniqueViolation = "23505"
