package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/business/recurrence"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func writeFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrWriteFailed, op, err)
}

func authorize(actor *model.Member, familyID int64) error {
	if actor == nil {
		return model.ErrMissingMember
	}

	if actor.FamilyID != familyID {
		return model.ErrCrossFamilyAccess
	}

	if !actor.Role.CanManageEvents() {
		return fmt.Errorf("%w: %v cannot manage events", model.ErrForbidden, actor.Role)
	}

	return nil
}

func validateTimes(from, to time.Time) error {
	if from.IsZero() {
		return fmt.Errorf("%w: start must be set", model.ErrInvalidEvent)
	}

	if to.Before(from) {
		return fmt.Errorf("%w: end precedes start", model.ErrInvalidEvent)
	}

	return nil
}

// normalizeRule drops NONE rules, fills defaults and validates against the series start.
func normalizeRule(rule *model.RecurrenceRule, start time.Time) (*model.RecurrenceRule, error) {
	if rule == nil || rule.Frequency == model.FrequencyNone {
		if rule != nil && rule.Bounded() {
			return nil, fmt.Errorf("%w: end set without frequency", model.ErrInvalidRecurrenceRule)
		}
		return nil, nil
	}

	normalized := rule.Normalized()
	if err := normalized.Validate(start); err != nil {
		return nil, err
	}

	return normalized, nil
}

func (s *Service) checkParticipants(ctx context.Context, q database.Queryable, familyID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	members, err := s.membersRepository.GetMembersByIDs(ctx, q, unique)
	if err != nil {
		return nil, fmt.Errorf("membersRepository.GetMembersByIDs: %w", err)
	}

	found := make(map[int64]struct{}, len(members))
	for _, m := range members {
		if m.FamilyID != familyID {
			return nil, fmt.Errorf("%w: member %v", model.ErrInvalidParticipants, m.ID)
		}
		found[m.ID] = struct{}{}
	}

	for _, id := range unique {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: member %v", model.ErrInvalidParticipants, id)
		}
	}

	return unique, nil
}

func (s *Service) checkCategory(ctx context.Context, q database.Queryable, familyID int64, id *int64) error {
	if id == nil {
		return nil
	}

	category, err := s.categoriesRepository.GetCategory(ctx, q, *id)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("%w: category %v", model.ErrInvalidCategory, *id)
		}
		return fmt.Errorf("categoriesRepository.GetCategory: %w", err)
	}

	if category.FamilyID != familyID {
		return fmt.Errorf("%w: category %v", model.ErrInvalidCategory, *id)
	}

	return nil
}

// occurrenceOn returns the start of the event's occurrence on date.
func occurrenceOn(event *model.Event, date time.Time) (time.Time, bool, error) {
	return recurrence.Occurs(event.Recurrence, event.From, date)
}

func dateSet(dates []time.Time) map[time.Time]struct{} {
	res := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		res[model.DateOf(d)] = struct{}{}
	}
	return res
}

func countBefore(event *model.Event, date time.Time) (int, error) {
	return recurrence.CountBefore(event.Recurrence, event.From, date)
}

func isNoRecord(err error) bool {
	return errors.Is(err, model.ErrNoRecord)
}
