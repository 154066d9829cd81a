package family

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (*Repository) GetMember(ctx context.Context, q database.Queryable, id int64) (*model.Member, error) {
	members, err := getMembers(ctx, q, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, model.ErrNoRecord
	}

	return members[0], nil
}

func (*Repository) GetMembersByIDs(ctx context.Context, q database.Queryable, ids []int64) ([]*model.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getMembers(ctx, q, sq.Eq{"id": ids})
}

func (*Repository) GetFamilyMembers(ctx context.Context, q database.Queryable, familyID int64) ([]*model.Member, error) {
	return getMembers(ctx, q, sq.Eq{"family_id": familyID})
}

func getMembers(ctx context.Context, q database.Queryable, predicate interface{}) ([]*model.Member, error) {
	qb := baseQuery.
		Where(predicate).
		OrderBy("id")

	var dtos []*memberDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Member, len(dtos))
	for i, d := range dtos {
		res[i] = mapToMember(d)
	}

	return res, nil
}
