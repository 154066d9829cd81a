package completions

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// ToggleCompletion records or removes memberID's completion of the occurrence
// of eventID on date and returns whether the occurrence is completed afterwards.
// A nil memberID is resolved by the fallback policy.
func (s *Service) ToggleCompletion(ctx context.Context, eventID int64, memberID *int64, date time.Time, completed bool) (bool, error) {
	date = model.DateOf(date)

	occ, err := s.eventsService.GetOccurrence(ctx, eventID, date)
	if err != nil {
		return false, fmt.Errorf("eventsService.GetOccurrence: %w", err)
	}

	if !occ.IsTask {
		return false, model.ErrNotTask
	}

	actor, err := s.resolveActor(ctx, memberID, occ.FamilyID)
	if err != nil {
		return false, err
	}

	if actor.FamilyID != occ.FamilyID {
		return false, model.ErrCrossFamilyAccess
	}

	if !actor.Role.CanCompleteTasks() {
		return false, fmt.Errorf("%w: %v cannot complete tasks", model.ErrForbidden, actor.Role)
	}

	key := occ.CompletionKey()

	if completed {
		inserted, err := s.completionsRepository.CreateCompletion(ctx, s.db, &model.CompletionRecord{
			EventID:        key,
			MemberID:       actor.ID,
			OccurrenceDate: date,
		})
		if err != nil {
			return false, fmt.Errorf("completionsRepository.CreateCompletion: %w", err)
		}

		if inserted {
			s.afterToggle(ctx, occ, actor, true)
		}

		return true, nil
	}

	deleted, err := s.completionsRepository.DeleteCompletion(ctx, s.db, key, actor.ID, date)
	if err != nil {
		return false, fmt.Errorf("completionsRepository.DeleteCompletion: %w", err)
	}

	if deleted {
		s.afterToggle(ctx, occ, actor, false)
	}

	// Other participants' records keep the occurrence completed.
	return s.IsCompleted(ctx, eventID, date)
}

func (s *Service) MarkCompleted(ctx context.Context, eventID, memberID int64, date time.Time) error {
	_, err := s.ToggleCompletion(ctx, eventID, &memberID, date, true)
	return err
}

func (s *Service) Unmark(ctx context.Context, eventID, memberID int64, date time.Time) error {
	_, err := s.ToggleCompletion(ctx, eventID, &memberID, date, false)
	return err
}

// IsCompleted reports whether any participant completed the occurrence.
func (s *Service) IsCompleted(ctx context.Context, eventID int64, date time.Time) (bool, error) {
	occ, err := s.eventsService.GetOccurrence(ctx, eventID, date)
	if err != nil {
		return false, fmt.Errorf("eventsService.GetOccurrence: %w", err)
	}

	return occ.Completed, nil
}

// afterToggle runs the side effects of a changed record. Their failures are
// logged and never undo the toggle.
func (s *Service) afterToggle(ctx context.Context, occ *model.Occurrence, actor *model.Member, completed bool) {
	key := occ.CompletionKey()

	if occ.IsRequired && occ.XPPoints > 0 {
		var err error
		if completed {
			err = s.xpLedger.Award(ctx, actor.ID, key, occ.Date, occ.XPPoints)
		} else {
			err = s.xpLedger.Revoke(ctx, actor.ID, key, occ.Date, occ.XPPoints)
		}
		if err != nil {
			s.logger.Errorw("xp ledger update failed",
				"event", key,
				"member", actor.ID,
				"date", occ.Date.Format(model.DateFormat),
				"completed", completed,
				"err", err,
			)
		}
	}

	if s.notifier == nil {
		return
	}

	if err := s.notifier.NotifyCompletion(ctx, occ, actor, completed); err != nil {
		s.logger.Warnw("completion notification failed",
			"event", key,
			"date", occ.Date.Format(model.DateFormat),
			"err", err,
		)
	}
}
