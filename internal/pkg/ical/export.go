package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

const productID = "-//family-calendar//occurrences//EN"

// Export renders resolved occurrences as an iCalendar feed. Every occurrence is
// a VEVENT of its own, so exceptions need no RRULE/EXDATE encoding. Stored wall
// clock times are read in loc.
func Export(name string, loc *time.Location, occurrences []*model.Occurrence, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(loc.String())

	for _, o := range occurrences {
		event := cal.AddEvent(UID(o))
		event.SetDtStampTime(now)
		event.SetCreatedTime(o.CreatedAt)
		event.SetSummary(o.Title)

		if o.Description != "" {
			event.SetDescription(o.Description)
		}
		if o.Location != "" {
			event.SetLocation(o.Location)
		}
		if o.Category != nil {
			event.AddProperty(ics.ComponentPropertyCategories, o.Category.Name)
		}

		if o.AllDay {
			event.SetAllDayStartAt(o.Date)
			event.SetAllDayEndAt(model.DateOf(o.To).AddDate(0, 0, 1))
			continue
		}

		event.SetStartAt(inLocation(o.From, loc))
		event.SetEndAt(inLocation(o.To, loc))
	}

	return cal.Serialize()
}

// UID identifies one occurrence across exports. Substituted occurrences keep
// the identity of the series date they replace.
func UID(o *model.Occurrence) string {
	return fmt.Sprintf("%d-%s@family-calendar", o.CompletionKey(), o.Date.Format("20060102"))
}

func inLocation(wall time.Time, loc *time.Location) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
}
