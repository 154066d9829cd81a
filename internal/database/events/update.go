package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (*Repository) UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error {
	frequency, interval, until, count := recurrenceColumns(event.Recurrence)

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(map[string]interface{}{
			"category_id":     event.CategoryID,
			"title":           event.Title,
			"description":     event.Description,
			"location":        event.Location,
			"all_day":         event.AllDay,
			"start_date":      event.From,
			"end_date":        event.To,
			"frequency":       frequency,
			"repeat_interval": interval,
			"repeat_until":    until,
			"repeat_count":    count,
			"is_task":         event.IsTask,
			"xp_points":       event.XPPoints,
			"is_required":     event.IsRequired,
			"participants":    participantsColumn(event.Participants),
			"updated_at":      sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": event.ID})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}
