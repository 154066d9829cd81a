package exceptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

// GetExceptions returns the exceptions of every given series, ordered by date.
func (*Repository) GetExceptions(ctx context.Context, q database.Queryable, eventIDs []int64) ([]*model.Exception, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	return selectExceptions(ctx, q, baseQuery.
		Where(sq.Eq{"event_id": eventIDs}).
		OrderBy("event_id", "occurrence_date"))
}

func (*Repository) GetException(ctx context.Context, q database.Queryable, eventID int64, date time.Time) (*model.Exception, error) {
	qb := baseQuery.
		Where(sq.Eq{"event_id": eventID, "occurrence_date": model.DateOf(date)})

	return getException(ctx, q, qb)
}

// GetExceptionByModifiedEvent finds the exception a substitute event stands in for.
func (*Repository) GetExceptionByModifiedEvent(ctx context.Context, q database.Queryable, modifiedEventID int64) (*model.Exception, error) {
	qb := baseQuery.
		Where(sq.Eq{"modified_event_id": modifiedEventID})

	return getException(ctx, q, qb)
}

// GetModifiedEventIDs returns which of the given events are substitutes of some series occurrence.
func (*Repository) GetModifiedEventIDs(ctx context.Context, q database.Queryable, eventIDs []int64) ([]int64, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	qb := database.PSQL.
		Select("modified_event_id").
		From(database.ExceptionsTable).
		Where(sq.Eq{"modified_event_id": eventIDs})

	var ids []int64
	if err := q.Select(ctx, &ids, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return ids, nil
}

func getException(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) (*model.Exception, error) {
	dto := &exceptionDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToException(dto), nil
}

func selectExceptions(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) ([]*model.Exception, error) {
	var dtos []*exceptionDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Exception, len(dtos))
	for i, d := range dtos {
		res[i] = mapToException(d)
	}

	return res, nil
}
