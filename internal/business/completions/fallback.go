package completions

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// FallbackPolicy decides who acts on a completion toggle that carries no member.
type FallbackPolicy string

const (
	FallbackReject      FallbackPolicy = "reject"
	FallbackFamilyAdmin FallbackPolicy = "family_admin"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackReject, FallbackFamilyAdmin:
		return p, nil
	default:
		return "", fmt.Errorf("unknown completion fallback policy %q", s)
	}
}

// resolveActor returns the member acting on an occurrence of familyID.
func (s *Service) resolveActor(ctx context.Context, memberID *int64, familyID int64) (*model.Member, error) {
	if memberID == nil {
		return s.fallbackActor(ctx, familyID)
	}

	member, err := s.membersRepository.GetMember(ctx, s.db, *memberID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return nil, fmt.Errorf("%w: member %v", model.ErrMissingMember, *memberID)
		}
		return nil, fmt.Errorf("membersRepository.GetMember: %w", err)
	}

	return member, nil
}

func (s *Service) fallbackActor(ctx context.Context, familyID int64) (*model.Member, error) {
	if s.fallback != FallbackFamilyAdmin {
		return nil, model.ErrMissingMember
	}

	members, err := s.membersRepository.GetFamilyMembers(ctx, s.db, familyID)
	if err != nil {
		return nil, fmt.Errorf("membersRepository.GetFamilyMembers: %w", err)
	}

	for _, m := range members {
		if m.Role == model.RoleAdmin {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: family %v has no admin", model.ErrMissingMember, familyID)
}
