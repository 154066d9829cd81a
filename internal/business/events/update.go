package events

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// UpdateOccurrence applies update to the occurrence of eventID on date, to the
// occurrence and every later one, or to the whole series. update.From and
// update.To are the new bounds of that occurrence. It returns the event that
// now carries the edited content.
func (s *Service) UpdateOccurrence(
	ctx context.Context,
	actor *model.Member,
	eventID int64,
	date time.Time,
	scope model.Scope,
	update *model.EventUpdate,
) (*model.Event, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidScope, scope)
	}

	if err := validateTimes(update.From, update.To); err != nil {
		return nil, err
	}

	if _, err := normalizeRule(update.Recurrence, update.From); err != nil {
		return nil, err
	}

	var res *model.Event
	err := s.inTx(ctx, func(tx database.Tx) error {
		t, err := s.lockTarget(ctx, tx, actor, eventID, date, scope)
		if err != nil {
			return err
		}

		participants, err := s.checkParticipants(ctx, tx, t.event.FamilyID, update.Participants)
		if err != nil {
			return err
		}

		if err := s.checkCategory(ctx, tx, t.event.FamilyID, update.CategoryID); err != nil {
			return err
		}

		upd := *update
		upd.Participants = participants
		if !upd.IsTask {
			upd.XPPoints = 0
			upd.IsRequired = false
		}

		switch {
		case !t.event.Recurring():
			res, err = s.updateSingle(ctx, tx, t, &upd, scope)
		case scope == model.ScopeThis:
			res, err = s.updateThis(ctx, tx, t, &upd)
		case scope == model.ScopeThisAndFollowing:
			res, err = s.updateFollowing(ctx, tx, t, &upd)
		default:
			res, err = s.updateSeries(ctx, tx, t, &upd)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func applyUpdate(base *model.Event, upd *model.EventUpdate, from, to time.Time, rule *model.RecurrenceRule) *model.Event {
	res := *base
	res.CategoryID = upd.CategoryID
	res.Title = upd.Title
	res.Description = upd.Description
	res.Location = upd.Location
	res.AllDay = upd.AllDay
	res.From = from
	res.To = to
	res.Recurrence = rule
	res.IsTask = upd.IsTask
	res.XPPoints = upd.XPPoints
	res.IsRequired = upd.IsRequired
	res.Participants = upd.Participants

	return &res
}

// bounds places the edited occurrence on date, keeping the edited time of day and duration.
func bounds(date time.Time, upd *model.EventUpdate) (time.Time, time.Time) {
	from := model.OnDate(date, upd.From)
	return from, from.Add(upd.To.Sub(upd.From))
}

// updateSingle edits a standalone event in place. Only an ALL edit of an event
// that is not a substitute may turn it into a series.
func (s *Service) updateSingle(ctx context.Context, tx database.Queryable, t *target, upd *model.EventUpdate, scope model.Scope) (*model.Event, error) {
	from, to := upd.From, upd.To
	if t.substituteFor != nil {
		from, to = bounds(t.date, upd)
	}

	var rule *model.RecurrenceRule
	if scope == model.ScopeAll && t.substituteFor == nil {
		var err error
		rule, err = normalizeRule(upd.Recurrence, from)
		if err != nil {
			return nil, err
		}
	}

	updated := applyUpdate(t.event, upd, from, to, rule)
	if err := s.eventsRepository.UpdateEvent(ctx, tx, updated); err != nil {
		return nil, writeFailed("eventsRepository.UpdateEvent", err)
	}

	if err := s.pruneOrphans(ctx, tx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// updateThis replaces one occurrence with a new standalone event.
func (s *Service) updateThis(ctx context.Context, tx database.Queryable, t *target, upd *model.EventUpdate) (*model.Event, error) {
	from, to := bounds(t.date, upd)

	existing, err := s.exceptionsRepository.GetException(ctx, tx, t.event.ID, t.date)
	if err != nil && !isNoRecord(err) {
		return nil, fmt.Errorf("exceptionsRepository.GetException: %w", err)
	}

	id, err := s.eventsRepository.CreateEvent(ctx, tx, &model.EventCreate{
		FamilyID:     t.event.FamilyID,
		CategoryID:   upd.CategoryID,
		Title:        upd.Title,
		Description:  upd.Description,
		Location:     upd.Location,
		AllDay:       upd.AllDay,
		From:         from,
		To:           to,
		CreatorID:    t.event.CreatorID,
		IsTask:       upd.IsTask,
		XPPoints:     upd.XPPoints,
		IsRequired:   upd.IsRequired,
		Participants: upd.Participants,
	})
	if err != nil {
		return nil, writeFailed("eventsRepository.CreateEvent", err)
	}

	if err := s.exceptionsRepository.UpsertException(ctx, tx, &model.Exception{
		EventID:         t.event.ID,
		OccurrenceDate:  t.date,
		ModifiedEventID: &id,
	}); err != nil {
		return nil, writeFailed("exceptionsRepository.UpsertException", err)
	}

	if existing != nil && !existing.Deletion() {
		if err := s.eventsRepository.DeleteEvent(ctx, tx, *existing.ModifiedEventID); err != nil {
			return nil, writeFailed("eventsRepository.DeleteEvent", err)
		}
	}

	event, err := s.eventsRepository.GetEventByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	return event, nil
}

// updateFollowing ends the series before date and continues it from date as a
// new series carrying the edited content.
func (s *Service) updateFollowing(ctx context.Context, tx database.Queryable, t *target, upd *model.EventUpdate) (*model.Event, error) {
	from, to := bounds(t.date, upd)

	if t.first() {
		rule := t.event.Recurrence.Clone()
		if upd.Recurrence != nil {
			rule = upd.Recurrence
		}

		rule, err := normalizeRule(rule, from)
		if err != nil {
			return nil, err
		}

		updated := applyUpdate(t.event, upd, from, to, rule)
		if err := s.eventsRepository.UpdateEvent(ctx, tx, updated); err != nil {
			return nil, writeFailed("eventsRepository.UpdateEvent", err)
		}

		if err := s.pruneExceptions(ctx, tx, t.event.ID, all); err != nil {
			return nil, err
		}

		if err := s.pruneOrphans(ctx, tx, updated); err != nil {
			return nil, err
		}

		return updated, nil
	}

	truncated, err := truncate(t.event, t.date)
	if err != nil {
		return nil, err
	}

	rule, err := continuation(t.event.Recurrence, truncated, upd.Recurrence, from)
	if err != nil {
		return nil, err
	}

	original := *t.event
	original.Recurrence = truncated
	if err := s.eventsRepository.UpdateEvent(ctx, tx, &original); err != nil {
		return nil, writeFailed("eventsRepository.UpdateEvent", err)
	}

	id, err := s.eventsRepository.CreateEvent(ctx, tx, &model.EventCreate{
		FamilyID:     t.event.FamilyID,
		CategoryID:   upd.CategoryID,
		Title:        upd.Title,
		Description:  upd.Description,
		Location:     upd.Location,
		AllDay:       upd.AllDay,
		From:         from,
		To:           to,
		CreatorID:    t.event.CreatorID,
		Recurrence:   rule,
		IsTask:       upd.IsTask,
		XPPoints:     upd.XPPoints,
		IsRequired:   upd.IsRequired,
		Participants: upd.Participants,
	})
	if err != nil {
		return nil, writeFailed("eventsRepository.CreateEvent", err)
	}

	if err := s.pruneExceptions(ctx, tx, t.event.ID, since(t.date)); err != nil {
		return nil, err
	}

	if err := s.completionsRepository.MoveCompletions(ctx, tx, t.event.ID, id, t.date); err != nil {
		return nil, writeFailed("completionsRepository.MoveCompletions", err)
	}

	event, err := s.eventsRepository.GetEventByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if err := s.pruneOrphans(ctx, tx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// continuation is the rule of the series split off at start. Without an
// explicit rule it keeps the original cadence and whatever is left of its end.
func continuation(original, truncated, explicit *model.RecurrenceRule, start time.Time) (*model.RecurrenceRule, error) {
	if explicit != nil {
		return normalizeRule(explicit, start)
	}

	rule := &model.RecurrenceRule{
		Frequency: original.Frequency,
		Interval:  original.Interval,
	}

	switch {
	case original.Count != nil:
		left := *original.Count - *truncated.Count
		rule.Count = &left
	case original.Until != nil:
		until := *original.Until
		rule.Until = &until
	}

	return normalizeRule(rule, start)
}

// updateSeries edits the series in place. The start moves by as much as the
// edited occurrence moved. A substitution on the edited date gives way to the
// new content, substitutions on other dates stay.
func (s *Service) updateSeries(ctx context.Context, tx database.Queryable, t *target, upd *model.EventUpdate) (*model.Event, error) {
	from := t.event.From.Add(upd.From.Sub(t.start))
	to := from.Add(upd.To.Sub(upd.From))

	rule := t.event.Recurrence.Clone()
	if upd.Recurrence != nil {
		rule = upd.Recurrence
	}

	rule, err := normalizeRule(rule, from)
	if err != nil {
		return nil, err
	}

	updated := applyUpdate(t.event, upd, from, to, rule)
	if err := s.eventsRepository.UpdateEvent(ctx, tx, updated); err != nil {
		return nil, writeFailed("eventsRepository.UpdateEvent", err)
	}

	if err := s.pruneExceptions(ctx, tx, t.event.ID, on(t.date)); err != nil {
		return nil, err
	}

	if err := s.pruneOrphans(ctx, tx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}
