package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// CreateEvent stores a standalone event or the base of a series on behalf of actor.
func (s *Service) CreateEvent(ctx context.Context, actor *model.Member, info *model.EventCreate) (*model.Event, error) {
	if err := authorize(actor, info.FamilyID); err != nil {
		return nil, err
	}

	if err := validateTimes(info.From, info.To); err != nil {
		return nil, err
	}

	rule, err := normalizeRule(info.Recurrence, info.From)
	if err != nil {
		return nil, err
	}

	participants, err := s.checkParticipants(ctx, s.db, info.FamilyID, info.Participants)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, s.db, info.FamilyID, info.CategoryID); err != nil {
		return nil, err
	}

	create := *info
	create.CreatorID = actor.ID
	create.Recurrence = rule
	create.Participants = participants
	if !create.IsTask {
		create.XPPoints = 0
		create.IsRequired = false
	}

	id, err := s.eventsRepository.CreateEvent(ctx, s.db, &create)
	if err != nil {
		return nil, writeFailed("eventsRepository.CreateEvent", err)
	}

	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	return event, nil
}
