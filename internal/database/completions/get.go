package completions

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// CountCompletions returns how many members completed the occurrence.
func (*Repository) CountCompletions(ctx context.Context, q database.Queryable, eventID int64, date time.Time) (int, error) {
	qb := database.PSQL.
		Select("count(*)").
		From(database.CompletionsTable).
		Where(sq.Eq{"event_id": eventID, "occurrence_date": model.DateOf(date)})

	var n int
	if err := q.Get(ctx, &n, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return n, nil
}

// GetCompletions returns the records of the given events dated inside [from, to].
func (*Repository) GetCompletions(ctx context.Context, q database.Queryable, eventIDs []int64, from, to time.Time) ([]*model.CompletionRecord, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	qb := baseQuery.
		Where(sq.Eq{"event_id": eventIDs}).
		Where(sq.GtOrEq{"occurrence_date": model.DateOf(from)}).
		Where(sq.LtOrEq{"occurrence_date": model.DateOf(to)}).
		OrderBy("occurrence_date", "completed_at")

	var dtos []*completionDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.CompletionRecord, len(dtos))
	for i, d := range dtos {
		res[i] = mapToCompletion(d)
	}

	return res, nil
}

// GetCompletionDates returns the distinct dates the event has completions on.
func (*Repository) GetCompletionDates(ctx context.Context, q database.Queryable, eventID int64) ([]time.Time, error) {
	qb := database.PSQL.
		Select("occurrence_date").
		Distinct().
		From(database.CompletionsTable).
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("occurrence_date")

	var dates []time.Time
	if err := q.Select(ctx, &dates, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	for i, d := range dates {
		dates[i] = model.DateOf(d)
	}

	return dates, nil
}
