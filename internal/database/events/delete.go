package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
)

// DeleteEvent removes the event. Its exceptions and completions go with it
// through foreign key cascades.
func (*Repository) DeleteEvent(ctx context.Context, q database.Queryable, id int64) error {
	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) DeleteEvents(ctx context.Context, q database.Queryable, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"id": ids})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
