package completions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// DeleteCompletion removes the member's record and reports whether one existed.
func (*Repository) DeleteCompletion(ctx context.Context, q database.Queryable, eventID, memberID int64, date time.Time) (bool, error) {
	qb := database.PSQL.
		Delete(database.CompletionsTable).
		Where(sq.Eq{"event_id": eventID, "member_id": memberID, "occurrence_date": model.DateOf(date)})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (*Repository) DeleteCompletions(ctx context.Context, q database.Queryable, eventID int64, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	qb := database.PSQL.
		Delete(database.CompletionsTable).
		Where(sq.Eq{"event_id": eventID, "occurrence_date": dates})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// DeleteCompletionsSince removes the records dated on or after since.
func (*Repository) DeleteCompletionsSince(ctx context.Context, q database.Queryable, eventID int64, since time.Time) error {
	qb := database.PSQL.
		Delete(database.CompletionsTable).
		Where(sq.Eq{"event_id": eventID}).
		Where(sq.GtOrEq{"occurrence_date": model.DateOf(since)})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
