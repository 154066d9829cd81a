package completions

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// CreateCompletion stores the record and reports whether a new row was
// written. A record that already exists for the same member and date is not an error.
func (*Repository) CreateCompletion(ctx context.Context, q database.Queryable, record *model.CompletionRecord) (bool, error) {
	qb := database.PSQL.
		Insert(database.CompletionsTable).
		Columns("event_id", "member_id", "occurrence_date", "completed_at").
		Values(record.EventID, record.MemberID, model.DateOf(record.OccurrenceDate), record.CompletedAt).
		Suffix("ON CONFLICT (event_id, member_id, occurrence_date) DO NOTHING")

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
