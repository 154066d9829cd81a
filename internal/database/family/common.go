package family

import (
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
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
		"role",
		"push_token",
		"notify",
	).
	From(database.MembersTable)

type memberDTO struct {
	ID        int64
	FamilyID  int64
	Name      string
	Role      int
	PushToken string
	Notify    bool
}

func mapToMember(dto *memberDTO) *model.Member {
	return &model.Member{
		ID:        dto.ID,
		FamilyID:  dto.FamilyID,
		Name:      dto.Name,
		Role:      model.Role(dto.Role),
		PushToken: dto.PushToken,
		Notify:    dto.Notify,
	}
}
