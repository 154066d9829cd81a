package category

import (
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/lucasb-eyer/go-colorful"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"family_id",
		"name",
		"color",
	).
	From(database.CategoriesTable)

type categoryDTO struct {
	ID       int64
	FamilyID int64
	Name     string
	Color    string
}

func mapToCategory(dto *categoryDTO) (*model.Category, error) {
	color, err := colorful.Hex(dto.Color)
	if err != nil {
		return nil, fmt.Errorf("map color from %v", dto.Color)
	}

	return &model.Category{
		ID: dto.ID,
		CategoryCreate: model.CategoryCreate{
			FamilyID: dto.FamilyID,
			Name:     dto.Name,
			Color:    color,
		},
	}, nil
}
