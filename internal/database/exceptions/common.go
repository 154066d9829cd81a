package exceptions

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
		"occurrence_date",
		"modified_event_id",
	).
	From(database.ExceptionsTable)

type exceptionDTO struct {
	EventID         int64
	OccurrenceDate  time.Time
	ModifiedEventID *int64
}

func mapToException(dto *exceptionDTO) *model.Exception {
	return &model.Exception{
		EventID:         dto.EventID,
		OccurrenceDate:  model.DateOf(dto.OccurrenceDate),
		ModifiedEventID: dto.ModifiedEventID,
	}
}
