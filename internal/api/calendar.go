package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/pkg/ical"
)

func (a *Api) exportCalendarHandler(w http.ResponseWriter, r *http.Request) {
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

	body := ical.Export(fmt.Sprintf("Family %d", familyID), a.calendar, occurrences, time.Now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
