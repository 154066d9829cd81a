package completions

import (
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"event_id",
		"member_id",
		"occurrence_date",
		"completed_at",
	).
	From(database.CompletionsTable)

type completionDTO struct {
	EventID        int64
	MemberID       int64
	OccurrenceDate time.Time
	CompletedAt    time.Time
}

func mapToCompletion(dto *completionDTO) *model.CompletionRecord {
	return &model.CompletionRecord{
		EventID:        dto.EventID,
		MemberID:       dto.MemberID,
		OccurrenceDate: model.DateOf(dto.OccurrenceDate),
		CompletedAt:    dto.CompletedAt,
	}
}
