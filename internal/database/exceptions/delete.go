package exceptions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
)

func (*Repository) DeleteExceptions(ctx context.Context, q database.Queryable, eventID int64, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	qb := database.PSQL.
		Delete(database.ExceptionsTable).
		Where(sq.Eq{"event_id": eventID, "occurrence_date": dates})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
