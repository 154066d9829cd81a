package events

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/business/recurrence"
	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// DeleteOccurrence deletes the occurrence of eventID on date, the occurrence
// and every later one, or the whole series.
func (s *Service) DeleteOccurrence(ctx context.Context, actor *model.Member, eventID int64, date time.Time, scope model.Scope) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: %v", model.ErrInvalidScope, scope)
	}

	return s.inTx(ctx, func(tx database.Tx) error {
		t, err := s.lockTarget(ctx, tx, actor, eventID, date, scope)
		if err != nil {
			return err
		}

		if !t.event.Recurring() {
			return s.deleteSingle(ctx, tx, t)
		}

		switch scope {
		case model.ScopeThis:
			return s.deleteThis(ctx, tx, t)
		case model.ScopeThisAndFollowing:
			return s.deleteFollowing(ctx, tx, t)
		default:
			return s.deleteSeries(ctx, tx, t.event)
		}
	})
}

// deleteSingle removes a standalone event. A removed substitute leaves its
// series occurrence deleted rather than restoring the original content.
func (s *Service) deleteSingle(ctx context.Context, tx database.Queryable, t *target) error {
	if t.substituteFor != nil {
		if err := s.exceptionsRepository.ClearModifiedEvent(ctx, tx, t.event.ID); err != nil {
			return writeFailed("exceptionsRepository.ClearModifiedEvent", err)
		}
	}

	if err := s.eventsRepository.DeleteEvent(ctx, tx, t.event.ID); err != nil {
		return writeFailed("eventsRepository.DeleteEvent", err)
	}

	return nil
}

func (s *Service) deleteThis(ctx context.Context, tx database.Queryable, t *target) error {
	event := t.event

	if event.Recurrence.Bounded() {
		exceptions, err := s.exceptionsRepository.GetExceptions(ctx, tx, []int64{event.ID})
		if err != nil {
			return fmt.Errorf("exceptionsRepository.GetExceptions: %w", err)
		}

		deleted := map[time.Time]struct{}{t.date: {}}
		for _, e := range exceptions {
			if e.Deletion() {
				deleted[e.OccurrenceDate] = struct{}{}
			}
		}

		remaining, err := recurrence.AnyRemaining(event.Recurrence, event.From, deleted)
		if err != nil {
			return err
		}
		if !remaining {
			s.logger.Debugw("last occurrence deleted, removing series", "event_id", event.ID)
			return s.deleteSeries(ctx, tx, event)
		}
	}

	existing, err := s.exceptionsRepository.GetException(ctx, tx, event.ID, t.date)
	if err != nil && !isNoRecord(err) {
		return fmt.Errorf("exceptionsRepository.GetException: %w", err)
	}

	if err := s.exceptionsRepository.UpsertException(ctx, tx, &model.Exception{
		EventID:        event.ID,
		OccurrenceDate: t.date,
	}); err != nil {
		return writeFailed("exceptionsRepository.UpsertException", err)
	}

	if existing != nil && !existing.Deletion() {
		if err := s.eventsRepository.DeleteEvent(ctx, tx, *existing.ModifiedEventID); err != nil {
			return writeFailed("eventsRepository.DeleteEvent", err)
		}
	}

	if err := s.completionsRepository.DeleteCompletions(ctx, tx, event.ID, []time.Time{t.date}); err != nil {
		return writeFailed("completionsRepository.DeleteCompletions", err)
	}

	return nil
}

func (s *Service) deleteFollowing(ctx context.Context, tx database.Queryable, t *target) error {
	if t.first() {
		return s.deleteSeries(ctx, tx, t.event)
	}

	rule, err := truncate(t.event, t.date)
	if err != nil {
		return err
	}

	truncated := *t.event
	truncated.Recurrence = rule
	if err := s.eventsRepository.UpdateEvent(ctx, tx, &truncated); err != nil {
		return writeFailed("eventsRepository.UpdateEvent", err)
	}

	if err := s.pruneExceptions(ctx, tx, t.event.ID, since(t.date)); err != nil {
		return err
	}

	if err := s.completionsRepository.DeleteCompletionsSince(ctx, tx, t.event.ID, t.date); err != nil {
		return writeFailed("completionsRepository.DeleteCompletionsSince", err)
	}

	return nil
}
