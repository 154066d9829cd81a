package events

import "github.com/SergeyKozhin/family-calendar-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
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
		"created_at",
		"updated_at",
	).
	From(database.EventsTable)
