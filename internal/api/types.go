package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

// Timestamps are family-local wall clock without a zone.
const dateTimeFormat = "2006-01-02T15:04:05"

type dateTime time.Time

func (t dateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(dateTimeFormat))
}

func (t *dateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(dateTimeFormat, s)
	if err != nil {
		return fmt.Errorf("invalid time %q, expected %s", s, dateTimeFormat)
	}

	*t = dateTime(parsed)
	return nil
}

type date time.Time

func (d date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(model.DateFormat))
}

func (d *date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected %s", s, model.DateFormat)
	}

	*d = date(parsed)
	return nil
}

type recurrence struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval,omitempty"`
	Until     *date  `json:"until,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

func (r *recurrence) toModel() (*model.RecurrenceRule, error) {
	if r == nil {
		return nil, nil
	}

	frequency, err := model.ParseFrequency(r.Frequency)
	if err != nil {
		return nil, err
	}

	rule := &model.RecurrenceRule{
		Frequency: frequency,
		Interval:  r.Interval,
		Count:     r.Count,
	}
	if r.Until != nil {
		until := time.Time(*r.Until)
		rule.Until = &until
	}

	return rule, nil
}

func mapToRecurrence(rule *model.RecurrenceRule) *recurrence {
	if rule == nil {
		return nil
	}

	res := &recurrence{
		Frequency: rule.Frequency.String(),
		Interval:  rule.Interval,
		Count:     rule.Count,
	}
	if rule.Until != nil {
		until := date(*rule.Until)
		res.Until = &until
	}

	return res
}
