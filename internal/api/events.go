package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/SergeyKozhin/family-calendar-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type eventReq struct {
	CategoryID   *int64      `json:"category_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Location     string      `json:"location"`
	AllDay       bool        `json:"all_day"`
	From         dateTime    `json:"from"`
	To           dateTime    `json:"to"`
	Recurrence   *recurrence `json:"recurrence"`
	IsTask       bool        `json:"is_task"`
	XPPoints     int         `json:"xp_points"`
	IsRequired   bool        `json:"is_required"`
	Participants []int64     `json:"participants"`
}

var frequencies = []string{"NONE", "DAILY", "WEEKLY", "MONTHLY", "YEARLY"}

func (req *eventReq) validate() *validator.Validator {
	v := validator.New()

	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(len(req.Title) <= 500, "title", "title must not be more than 500 bytes long")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	v.Check(!time.Time(req.To).Before(time.Time(req.From)), "to", "to must not precede from")
	v.Check(req.XPPoints >= 0, "xp_points", "xp_points must not be negative")
	v.Check(validator.Unique(req.Participants), "participants", "participants must not repeat")

	if req.Recurrence != nil {
		v.Check(validator.In(req.Recurrence.Frequency, frequencies...), "recurrence.frequency", "unknown frequency")
		v.Check(req.Recurrence.Interval >= 0, "recurrence.interval", "interval must not be negative")
		v.Check(req.Recurrence.Until == nil || req.Recurrence.Count == nil, "recurrence", "until and count are mutually exclusive")
	}

	return v
}

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := memberFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveMember)
		return
	}

	familyID, ok := familyFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveFamily)
		return
	}

	req := &eventReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if v := req.validate(); !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	rule, err := req.Recurrence.toModel()
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	event, err := a.eventsService.CreateEvent(r.Context(), member, &model.EventCreate{
		FamilyID:     familyID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		AllDay:       req.AllDay,
		From:         time.Time(req.From),
		To:           time.Time(req.To),
		Recurrence:   rule,
		IsTask:       req.IsTask,
		XPPoints:     req.XPPoints,
		IsRequired:   req.IsRequired,
		Participants: req.Participants,
	})
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("create event: %w", err))
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) listOccurrencesHandler(w http.ResponseWriter, r *http.Request) {
	familyID, ok := familyFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveFamily)
		return
	}

	from, to, err := parseWindowQuery(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	occurrences, err := a.eventsService.ListOccurrences(r.Context(), familyID, from, to)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("list occurrences: %w", err))
		return
	}

	resp, _ := mapSlice(occurrences, mapToOccurrenceResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func parseWindowQuery(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDateParam(r.URL.Query().Get("from"), "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to, err := parseDateParam(r.URL.Query().Get("to"), "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return from, to, nil
}

// parseOccurrencePath reads the event id and occurrence date from the path.
func parseOccurrencePath(r *http.Request) (int64, time.Time, error) {
	eventID, err := parseIDParam(r, "eventID")
	if err != nil {
		return 0, time.Time{}, err
	}

	date, err := parseDateParam(chi.URLParam(r, "date"), "date")
	if err != nil {
		return 0, time.Time{}, err
	}

	return eventID, date, nil
}

var errNoScope = errors.New("scope must be provided")

func parseScopeQuery(r *http.Request) (model.Scope, error) {
	s := r.URL.Query().Get("scope")
	if s == "" {
		return 0, errNoScope
	}
	return model.ParseScope(s)
}

func (a *Api) updateOccurrenceHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := memberFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveMember)
		return
	}

	eventID, date, err := parseOccurrencePath(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	scope, err := parseScopeQuery(r)
	if err != nil {
		a.mutationScopeError(w, r, err)
		return
	}

	req := &eventReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if v := req.validate(); !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	rule, err := req.Recurrence.toModel()
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	event, err := a.eventsService.MutateEvent(r.Context(), member, eventID, date, scope, &model.EventUpdate{
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		AllDay:       req.AllDay,
		From:         time.Time(req.From),
		To:           time.Time(req.To),
		Recurrence:   rule,
		IsTask:       req.IsTask,
		XPPoints:     req.XPPoints,
		IsRequired:   req.IsRequired,
		Participants: req.Participants,
	})
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("update occurrence: %w", err))
		return
	}

	resp, _ := mapToEventResp(event)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteOccurrenceHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := memberFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveMember)
		return
	}

	eventID, date, err := parseOccurrencePath(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	scope, err := parseScopeQuery(r)
	if err != nil {
		a.mutationScopeError(w, r, err)
		return
	}

	if _, err := a.eventsService.MutateEvent(r.Context(), member, eventID, date, scope, nil); err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("delete occurrence: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) mutationScopeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errNoScope) {
		a.badRequestResponse(w, r, err)
		return
	}
	a.serviceErrorResponse(w, r, err)
}
