package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// MutateEvent edits the occurrence of eventID on date when update is set and
// deletes it otherwise. scope selects how much of the series is affected.
func (s *Service) MutateEvent(
	ctx context.Context,
	actor *model.Member,
	eventID int64,
	date time.Time,
	scope model.Scope,
	update *model.EventUpdate,
) (*model.Event, error) {
	if update == nil {
		return nil, s.DeleteOccurrence(ctx, actor, eventID, date, scope)
	}
	return s.UpdateOccurrence(ctx, actor, eventID, date, scope, update)
}

// target is a locked event together with the occurrence a mutation was issued on.
type target struct {
	event *model.Event
	date  time.Time
	start time.Time
	// substituteFor is set when the event replaces an occurrence of another series.
	substituteFor *model.Exception
}

func (t *target) first() bool {
	return t.date.Equal(model.DateOf(t.event.From))
}

// lockTarget loads the event under a row lock and checks that the caller may
// act on the occurrence. Nothing is written before it returns. Wider scopes
// requested on a substitute act on the series it belongs to.
func (s *Service) lockTarget(
	ctx context.Context,
	tx database.Queryable,
	actor *model.Member,
	eventID int64,
	date time.Time,
	scope model.Scope,
) (*target, error) {
	if scope != model.ScopeThis {
		exception, err := s.exceptionsRepository.GetExceptionByModifiedEvent(ctx, tx, eventID)
		switch {
		case errors.Is(err, model.ErrNoRecord):
		case err != nil:
			return nil, fmt.Errorf("exceptionsRepository.GetExceptionByModifiedEvent: %w", err)
		default:
			return s.lockSeriesOf(ctx, tx, actor, eventID, exception, date, scope)
		}
	}

	event, err := s.eventsRepository.GetEventForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventForUpdate: %w", err)
	}

	if err := authorize(actor, event.FamilyID); err != nil {
		return nil, err
	}

	date = model.DateOf(date)
	if scope == model.ScopeThisAndFollowing && date.Before(model.DateOf(event.From)) {
		return nil, fmt.Errorf("%w: %v is before %v", model.ErrAmbiguousTruncation,
			date.Format(model.DateFormat), event.From.Format(model.DateFormat))
	}

	start, ok, err := occurrenceOn(event, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("occurrence on %v: %w", date.Format(model.DateFormat), model.ErrNoRecord)
	}

	t := &target{event: event, date: date, start: start}

	if event.Recurring() {
		exception, err := s.exceptionsRepository.GetException(ctx, tx, event.ID, date)
		switch {
		case errors.Is(err, model.ErrNoRecord):
		case err != nil:
			return nil, fmt.Errorf("exceptionsRepository.GetException: %w", err)
		case exception.Deletion():
			return nil, fmt.Errorf("occurrence on %v is deleted: %w", date.Format(model.DateFormat), model.ErrNoRecord)
		}
		return t, nil
	}

	exception, err := s.exceptionsRepository.GetExceptionByModifiedEvent(ctx, tx, event.ID)
	switch {
	case errors.Is(err, model.ErrNoRecord):
	case err != nil:
		return nil, fmt.Errorf("exceptionsRepository.GetExceptionByModifiedEvent: %w", err)
	default:
		t.substituteFor = exception
	}

	return t, nil
}

// lockSeriesOf locks the series the substitute eventID replaces an occurrence
// of. The series lock is taken first, the same order every series mutation uses.
func (s *Service) lockSeriesOf(
	ctx context.Context,
	tx database.Queryable,
	actor *model.Member,
	eventID int64,
	exception *model.Exception,
	date time.Time,
	scope model.Scope,
) (*target, error) {
	t, err := s.lockTarget(ctx, tx, actor, exception.EventID, date, scope)
	if err != nil {
		return nil, err
	}

	if !t.date.Equal(exception.OccurrenceDate) {
		return nil, fmt.Errorf("substitute %d is not on %v: %w", eventID, t.date.Format(model.DateFormat), model.ErrNoRecord)
	}

	// The substitution may have changed before the lock was taken.
	current, err := s.exceptionsRepository.GetException(ctx, tx, exception.EventID, t.date)
	if err != nil {
		return nil, fmt.Errorf("exceptionsRepository.GetException: %w", err)
	}
	if current.Deletion() || *current.ModifiedEventID != eventID {
		return nil, fmt.Errorf("substitute %d was replaced: %w", eventID, model.ErrNoRecord)
	}

	return t, nil
}

func (s *Service) inTx(ctx context.Context, fn func(tx database.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeFailed("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return writeFailed("commit tx", err)
	}

	return nil
}
