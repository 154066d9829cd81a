package category

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (*Repository) CreateCategory(ctx context.Context, q database.Queryable, category *model.CategoryCreate) (int64, error) {
	qb := database.PSQL.
		Insert(database.CategoriesTable).
		Columns("family_id", "name", "color").
		Values(category.FamilyID, category.Name, category.Color.Hex()).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		if database.IsUniqueViolation(err) {
			return 0, model.ErrAlreadyExists
		}
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
