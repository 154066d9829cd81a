package events

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/jackc/pgx/v4"
)

func (*Repository) GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	return getEvent(ctx, q, baseQuery.Where(sq.Eq{"id": id}))
}

// GetEventForUpdate reads the event and locks its row until the surrounding
// transaction ends, serializing concurrent mutations of the same series.
func (*Repository) GetEventForUpdate(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	return getEvent(ctx, q, baseQuery.Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func getEvent(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) (*model.Event, error) {
	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvent(dto), nil
}

func (*Repository) GetEventsByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	qb := baseQuery.
		Where(sq.Eq{"id": ids})

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvents(dtos), nil
}

// GetEvents returns the family's events that can have an occurrence dated
// inside the filter window: standalone events starting in it and series
// starting before its end that have not ended before its start.
func (*Repository) GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	from := model.DateOf(filter.From)
	to := model.DateOf(filter.To).AddDate(0, 0, 1)

	qb := baseQuery.
		Where(sq.Eq{"family_id": filter.FamilyID}).
		Where(sq.Lt{"start_date": to}).
		Where(sq.Or{
			sq.And{
				sq.Eq{"frequency": int(model.FrequencyNone)},
				sq.GtOrEq{"start_date": from},
			},
			sq.And{
				sq.NotEq{"frequency": int(model.FrequencyNone)},
				sq.Or{sq.Eq{"repeat_until": nil}, sq.GtOrEq{"repeat_until": from}},
			},
		}).
		OrderBy("start_date", "created_at", "id")

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToEvents(dtos), nil
}
