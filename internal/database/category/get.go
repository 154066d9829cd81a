package category

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (*Repository) GetCategory(ctx context.Context, q database.Queryable, id int64) (*model.Category, error) {
	categories, err := getCategories(ctx, q, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return nil, model.ErrNoRecord
	}

	return categories[0], nil
}

func (*Repository) GetCategoriesByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getCategories(ctx, q, sq.Eq{"id": ids})
}

func (*Repository) GetFamilyCategories(ctx context.Context, q database.Queryable, familyID int64) ([]*model.Category, error) {
	return getCategories(ctx, q, sq.Eq{"family_id": familyID})
}

func getCategories(ctx context.Context, q database.Queryable, predicate interface{}) ([]*model.Category, error) {
	qb := baseQuery.
		Where(predicate).
		OrderBy("name")

	var dtos []*categoryDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Category, len(dtos))
	for i, d := range dtos {
		category, err := mapToCategory(d)
		if err != nil {
			return nil, err
		}
		res[i] = category
	}

	return res, nil
}
