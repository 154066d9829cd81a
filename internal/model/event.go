package model

import "time"

type EventCreate struct {
	FamilyID     int64
	CategoryID   *int64
	Title        string
	Description  string
	Location     string
	AllDay       bool
	From         time.Time
	To           time.Time
	CreatorID    int64
	Recurrence   *RecurrenceRule
	IsTask       bool
	XPPoints     int
	IsRequired   bool
	Participants []int64
}

type Event struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	EventCreate
}

// Recurring reports whether the event expands into more than one occurrence.
func (e *Event) Recurring() bool {
	return e.Recurrence != nil && e.Recurrence.Frequency != FrequencyNone
}

func (e *Event) Duration() time.Duration {
	return e.To.Sub(e.From)
}

// EventUpdate carries the new field values of an edited occurrence. From and To
// are the new start and end of the occurrence the edit was issued on.
type EventUpdate struct {
	CategoryID   *int64
	Title        string
	Description  string
	Location     string
	AllDay       bool
	From         time.Time
	To           time.Time
	Recurrence   *RecurrenceRule
	IsTask       bool
	XPPoints     int
	IsRequired   bool
	Participants []int64
}

type EventsFilter struct {
	FamilyID int64
	From     time.Time
	To       time.Time
}

// Exception overrides one occurrence of a series. A nil ModifiedEventID
// removes the occurrence, otherwise the referenced standalone event replaces it.
type Exception struct {
	EventID         int64
	OccurrenceDate  time.Time
	ModifiedEventID *int64
}

func (e *Exception) Deletion() bool {
	return e.ModifiedEventID == nil
}

type CompletionRecord struct {
	EventID        int64
	MemberID       int64
	OccurrenceDate time.Time
	CompletedAt    time.Time
}

// Occurrence is the effective, exception-resolved content of one date.
type Occurrence struct {
	EventID      int64
	SeriesID     *int64
	FamilyID     int64
	Date         time.Time
	From         time.Time
	To           time.Time
	Title        string
	Description  string
	Location     string
	AllDay       bool
	Category     *Category
	Participants []int64
	IsTask       bool
	XPPoints     int
	IsRequired   bool
	Completed    bool
	CreatedAt    time.Time
}

// CompletionKey is the event id completion records of the occurrence are stored under.
func (o *Occurrence) CompletionKey() int64 {
	if o.SeriesID != nil {
		return *o.SeriesID
	}
	return o.EventID
}
