package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (*Repository) CreateEvent(ctx context.Context, q database.Queryable, event *model.EventCreate) (int64, error) {
	frequency, interval, until, count := recurrenceColumns(event.Recurrence)

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
			"family_id",
			"category_id",
			"title",
			"description",
			"location",
			"all_day",
			"start_date",
			"end_date",
			"creator_id",
			"frequency",
			"repeat_interval",
			"repeat_until",
			"repeat_count",
			"is_task",
			"xp_points",
			"is_required",
			"participants",
		).
		Values(
			event.FamilyID,
			event.CategoryID,
			event.Title,
			event.Description,
			event.Location,
			event.AllDay,
			event.From,
			event.To,
			event.CreatorID,
			frequency,
			interval,
			until,
			count,
			event.IsTask,
			event.XPPoints,
			event.IsRequired,
			participantsColumn(event.Participants),
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
