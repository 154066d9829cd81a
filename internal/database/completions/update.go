package completions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// MoveCompletions re-keys the records dated on or after since from one series to another.
func (*Repository) MoveCompletions(ctx context.Context, q database.Queryable, fromEventID, toEventID int64, since time.Time) error {
	qb := database.PSQL.
		Update(database.CompletionsTable).
		Set("event_id", toEventID).
		Where(sq.Eq{"event_id": fromEventID}).
		Where(sq.GtOrEq{"occurrence_date": model.DateOf(since)})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
