package exceptions

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// UpsertException stores the exception, replacing any existing one for the same date.
func (*Repository) UpsertException(ctx context.Context, q database.Queryable, exception *model.Exception) error {
	qb := database.PSQL.
		Insert(database.ExceptionsTable).
		Columns("event_id", "occurrence_date", "modified_event_id").
		Values(exception.EventID, model.DateOf(exception.OccurrenceDate), exception.ModifiedEventID).
		Suffix("ON CONFLICT (event_id, occurrence_date) DO UPDATE SET modified_event_id = EXCLUDED.modified_event_id")

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// ClearModifiedEvent turns the substitution backed by the given event into a deletion.
func (*Repository) ClearModifiedEvent(ctx context.Context, q database.Queryable, modifiedEventID int64) error {
	qb := database.PSQL.
		Update(database.ExceptionsTable).
		Set("modified_event_id", nil).
		Where(sq.Eq{"modified_event_id": modifiedEventID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
