package events

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/database"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// deleteSeries removes the event and the substitutes of its occurrences.
// Exceptions and completions of the event cascade.
func (s *Service) deleteSeries(ctx context.Context, tx database.Queryable, event *model.Event) error {
	exceptions, err := s.exceptionsRepository.GetExceptions(ctx, tx, []int64{event.ID})
	if err != nil {
		return fmt.Errorf("exceptionsRepository.GetExceptions: %w", err)
	}

	var substitutes []int64
	for _, e := range exceptions {
		if !e.Deletion() {
			substitutes = append(substitutes, *e.ModifiedEventID)
		}
	}

	if err := s.eventsRepository.DeleteEvent(ctx, tx, event.ID); err != nil {
		return writeFailed("eventsRepository.DeleteEvent", err)
	}

	if err := s.eventsRepository.DeleteEvents(ctx, tx, substitutes); err != nil {
		return writeFailed("eventsRepository.DeleteEvents", err)
	}

	return nil
}

// pruneExceptions deletes the exceptions of the event whose date matches drop,
// together with their substitute events.
func (s *Service) pruneExceptions(ctx context.Context, tx database.Queryable, eventID int64, drop func(time.Time) (bool, error)) error {
	exceptions, err := s.exceptionsRepository.GetExceptions(ctx, tx, []int64{eventID})
	if err != nil {
		return fmt.Errorf("exceptionsRepository.GetExceptions: %w", err)
	}

	var dates []time.Time
	var substitutes []int64
	for _, e := range exceptions {
		ok, err := drop(e.OccurrenceDate)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		dates = append(dates, e.OccurrenceDate)
		if !e.Deletion() {
			substitutes = append(substitutes, *e.ModifiedEventID)
		}
	}

	if err := s.exceptionsRepository.DeleteExceptions(ctx, tx, eventID, dates); err != nil {
		return writeFailed("exceptionsRepository.DeleteExceptions", err)
	}

	if err := s.eventsRepository.DeleteEvents(ctx, tx, substitutes); err != nil {
		return writeFailed("eventsRepository.DeleteEvents", err)
	}

	return nil
}

// pruneOrphans deletes exceptions and completions dated where the event no
// longer has an occurrence. A standalone event keeps no exceptions at all.
func (s *Service) pruneOrphans(ctx context.Context, tx database.Queryable, event *model.Event) error {
	orphaned := func(date time.Time) (bool, error) {
		_, ok, err := occurrenceOn(event, date)
		return !ok, err
	}

	dropException := orphaned
	if !event.Recurring() {
		dropException = all
	}

	if err := s.pruneExceptions(ctx, tx, event.ID, dropException); err != nil {
		return err
	}

	dates, err := s.completionsRepository.GetCompletionDates(ctx, tx, event.ID)
	if err != nil {
		return fmt.Errorf("completionsRepository.GetCompletionDates: %w", err)
	}

	var stale []time.Time
	for _, d := range dates {
		ok, err := orphaned(d)
		if err != nil {
			return err
		}
		if ok {
			stale = append(stale, d)
		}
	}

	if err := s.completionsRepository.DeleteCompletions(ctx, tx, event.ID, stale); err != nil {
		return writeFailed("completionsRepository.DeleteCompletions", err)
	}

	return nil
}

func all(time.Time) (bool, error) {
	return true, nil
}

func on(date time.Time) func(time.Time) (bool, error) {
	return func(d time.Time) (bool, error) {
		return d.Equal(date), nil
	}
}

func since(date time.Time) func(time.Time) (bool, error) {
	return func(d time.Time) (bool, error) {
		return !d.Before(date), nil
	}
}

// truncate ends the series on the day before date. Count-bounded series keep
// a count equal to the occurrences before date.
func truncate(event *model.Event, date time.Time) (*model.RecurrenceRule, error) {
	rule := event.Recurrence.Clone()

	if rule.Count != nil {
		n, err := countBefore(event, date)
		if err != nil {
			return nil, err
		}
		rule.Count = &n
		return rule, nil
	}

	until := model.DateOf(date).AddDate(0, 0, -1)
	rule.Until = &until

	return rule, nil
}
