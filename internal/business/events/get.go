package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/business/recurrence"
	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// ListOccurrences returns the effective occurrences of the family's events
// dated inside [from, to], ordered by date, start and creation.
func (s *Service) ListOccurrences(ctx context.Context, familyID int64, from, to time.Time) ([]*model.Occurrence, error) {
	from, to = model.DateOf(from), model.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end precedes start", model.ErrInvalidWindow)
	}
	if to.Sub(from) > s.maxWindow {
		return nil, fmt.Errorf("%w: window exceeds %v", model.ErrInvalidWindow, s.maxWindow)
	}

	events, err := s.eventsRepository.GetEvents(ctx, s.db, model.EventsFilter{
		FamilyID: familyID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEvents: %w", err)
	}

	ids := make([]int64, 0, len(events))
	var seriesIDs []int64
	for _, e := range events {
		ids = append(ids, e.ID)
		if e.Recurring() {
			seriesIDs = append(seriesIDs, e.ID)
		}
	}

	substituteIDs, err := s.exceptionsRepository.GetModifiedEventIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("exceptionsRepository.GetModifiedEventIDs: %w", err)
	}
	substitutes := make(map[int64]struct{}, len(substituteIDs))
	for _, id := range substituteIDs {
		substitutes[id] = struct{}{}
	}

	exceptions, err := s.exceptionsRepository.GetExceptions(ctx, s.db, seriesIDs)
	if err != nil {
		return nil, fmt.Errorf("exceptionsRepository.GetExceptions: %w", err)
	}

	byEvent := make(map[int64]map[time.Time]*model.Exception)
	for _, e := range exceptions {
		if byEvent[e.EventID] == nil {
			byEvent[e.EventID] = make(map[time.Time]*model.Exception)
		}
		byEvent[e.EventID][e.OccurrenceDate] = e
	}

	modified, err := s.loadSubstitutes(ctx, events, exceptions)
	if err != nil {
		return nil, err
	}

	var res []*model.Occurrence
	for _, e := range events {
		if _, ok := substitutes[e.ID]; ok {
			continue
		}

		occurrences, err := s.expandEvent(e, from, to, byEvent[e.ID], modified)
		if err != nil {
			return nil, err
		}
		res = append(res, occurrences...)
	}

	if err := s.fillCategories(ctx, res); err != nil {
		return nil, err
	}

	if err := s.fillCompleted(ctx, res, from, to); err != nil {
		return nil, err
	}

	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.From.Equal(b.From) {
			return a.From.Before(b.From)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.EventID < b.EventID
	})

	return res, nil
}

func (s *Service) expandEvent(
	event *model.Event,
	from, to time.Time,
	exceptions map[time.Time]*model.Exception,
	modified map[int64]*model.Event,
) ([]*model.Occurrence, error) {
	seq, err := recurrence.Expand(event.Recurrence, event.From, from, to)
	if err != nil {
		return nil, fmt.Errorf("expand event %v: %w", event.ID, err)
	}

	var res []*model.Occurrence
	next := seq.Iterator()
	n := 0
	for t, ok := next(); ok; t, ok = next() {
		if n == s.maxOccurrences {
			s.logger.Warnw("occurrence limit reached",
				"event_id", event.ID,
				"limit", s.maxOccurrences,
				"from", from,
				"to", to,
			)
			break
		}
		n++

		date := model.DateOf(t)
		exception, ok := exceptions[date]
		switch {
		case !ok:
			res = append(res, occurrenceOf(event, event, date, t))
		case exception.Deletion():
			continue
		default:
			sub, ok := modified[*exception.ModifiedEventID]
			if !ok {
				s.logger.Warnw("substitute event is missing",
					"event_id", event.ID,
					"date", date.Format(model.DateFormat),
					"modified_event_id", *exception.ModifiedEventID,
				)
				continue
			}
			res = append(res, occurrenceOf(event, sub, date, sub.From))
		}
	}

	return res, nil
}

// occurrenceOf renders content on date. series is the event the date was expanded from.
func occurrenceOf(series, content *model.Event, date, start time.Time) *model.Occurrence {
	occ := &model.Occurrence{
		EventID:      content.ID,
		FamilyID:     content.FamilyID,
		Date:         date,
		From:         start,
		To:           start.Add(content.Duration()),
		Title:        content.Title,
		Description:  content.Description,
		Location:     content.Location,
		AllDay:       content.AllDay,
		Participants: content.Participants,
		IsTask:       content.IsTask,
		XPPoints:     content.XPPoints,
		IsRequired:   content.IsRequired,
		CreatedAt:    content.CreatedAt,
	}

	if content.CategoryID != nil {
		occ.Category = &model.Category{ID: *content.CategoryID}
	}

	if series.Recurring() {
		id := series.ID
		occ.SeriesID = &id
	}

	return occ
}

func (s *Service) loadSubstitutes(ctx context.Context, events []*model.Event, exceptions []*model.Exception) (map[int64]*model.Event, error) {
	res := make(map[int64]*model.Event)
	for _, e := range events {
		res[e.ID] = e
	}

	var missing []int64
	for _, e := range exceptions {
		if e.Deletion() {
			continue
		}
		if _, ok := res[*e.ModifiedEventID]; !ok {
			missing = append(missing, *e.ModifiedEventID)
		}
	}

	if len(missing) == 0 {
		return res, nil
	}

	loaded, err := s.eventsRepository.GetEventsByIDs(ctx, s.db, missing)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventsByIDs: %w", err)
	}

	for _, e := range loaded {
		res[e.ID] = e
	}

	return res, nil
}

func (s *Service) fillCategories(ctx context.Context, occurrences []*model.Occurrence) error {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, o := range occurrences {
		if o.Category == nil {
			continue
		}
		if _, ok := seen[o.Category.ID]; !ok {
			seen[o.Category.ID] = struct{}{}
			ids = append(ids, o.Category.ID)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	categories, err := s.categoriesRepository.GetCategoriesByIDs(ctx, s.db, ids)
	if err != nil {
		return fmt.Errorf("categoriesRepository.GetCategoriesByIDs: %w", err)
	}

	byID := make(map[int64]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	for _, o := range occurrences {
		if o.Category == nil {
			continue
		}
		o.Category = byID[o.Category.ID]
	}

	return nil
}

type completionKey struct {
	eventID int64
	date    time.Time
}

func (s *Service) fillCompleted(ctx context.Context, occurrences []*model.Occurrence, from, to time.Time) error {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, o := range occurrences {
		if !o.IsTask {
			continue
		}
		key := o.CompletionKey()
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			ids = append(ids, key)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	records, err := s.completionsRepository.GetCompletions(ctx, s.db, ids, from, to)
	if err != nil {
		return fmt.Errorf("completionsRepository.GetCompletions: %w", err)
	}

	completed := make(map[completionKey]struct{}, len(records))
	for _, r := range records {
		completed[completionKey{r.EventID, r.OccurrenceDate}] = struct{}{}
	}

	for _, o := range occurrences {
		if !o.IsTask {
			continue
		}
		_, o.Completed = completed[completionKey{o.CompletionKey(), o.Date}]
	}

	return nil
}

// GetOccurrence resolves the effective occurrence of eventID on date. eventID
// may name a series, a standalone event or the substitute of a series
// occurrence; in the last case the result is keyed on the series.
func (s *Service) GetOccurrence(ctx context.Context, eventID int64, date time.Time) (*model.Occurrence, error) {
	date = model.DateOf(date)

	event, err := s.eventsRepository.GetEventByID(ctx, s.db, eventID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	var occ *model.Occurrence

	exception, err := s.exceptionsRepository.GetExceptionByModifiedEvent(ctx, s.db, eventID)
	switch {
	case err == nil:
		if !exception.OccurrenceDate.Equal(date) {
			return nil, model.ErrNoRecord
		}

		series, err := s.eventsRepository.GetEventByID(ctx, s.db, exception.EventID)
		if err != nil {
			return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
		}
		occ = occurrenceOf(series, event, date, event.From)

	case errors.Is(err, model.ErrNoRecord):
		start, ok, err := occurrenceOn(event, date)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrNoRecord
		}

		occ = occurrenceOf(event, event, date, start)

		if event.Recurring() {
			exception, err := s.exceptionsRepository.GetException(ctx, s.db, event.ID, date)
			switch {
			case errors.Is(err, model.ErrNoRecord):
			case err != nil:
				return nil, fmt.Errorf("exceptionsRepository.GetException: %w", err)
			case exception.Deletion():
				return nil, model.ErrNoRecord
			default:
				sub, err := s.eventsRepository.GetEventByID(ctx, s.db, *exception.ModifiedEventID)
				if err != nil {
					return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
				}
				occ = occurrenceOf(event, sub, date, sub.From)
			}
		}

	default:
		return nil, fmt.Errorf("exceptionsRepository.GetExceptionByModifiedEvent: %w", err)
	}

	if occ.IsTask {
		n, err := s.completionsRepository.CountCompletions(ctx, s.db, occ.CompletionKey(), date)
		if err != nil {
			return nil, fmt.Errorf("completionsRepository.CountCompletions: %w", err)
		}
		occ.Completed = n > 0
	}

	if err := s.fillCategories(ctx, []*model.Occurrence{occ}); err != nil {
		return nil, err
	}

	return occ, nil
}
