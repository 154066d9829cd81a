package model

import (
	"fmt"
	"time"
)

type Frequency int

const (
	FrequencyNone Frequency = iota
	FrequencyDaily
	FrequencyWeekly
	FrequencyMonthly
	FrequencyYearly
)

var frequencyNames = map[Frequency]string{
	FrequencyNone:    "NONE",
	FrequencyDaily:   "DAILY",
	FrequencyWeekly:  "WEEKLY",
	FrequencyMonthly: "MONTHLY",
	FrequencyYearly:  "YEARLY",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

func ParseFrequency(s string) (Frequency, error) {
	for f, name := range frequencyNames {
		if name == s {
			return f, nil
		}
	}
	return FrequencyNone, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrenceRule, s)
}

// RecurrenceRule describes how a series repeats. Until is an inclusive end
// date, Count the total number of occurrences; at most one of them is set.
type RecurrenceRule struct {
	Frequency Frequency
	Interval  int
	Until     *time.Time
	Count     *int
}

func (r *RecurrenceRule) Bounded() bool {
	return r.Until != nil || r.Count != nil
}

// Validate checks the rule against the start of the series it belongs to.
func (r *RecurrenceRule) Validate(start time.Time) error {
	if _, ok := frequencyNames[r.Frequency]; !ok {
		return fmt.Errorf("%w: unknown frequency %d", ErrInvalidRecurrenceRule, r.Frequency)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidRecurrenceRule)
	}
	if r.Until != nil && r.Count != nil {
		return fmt.Errorf("%w: both end date and count are set", ErrInvalidRecurrenceRule)
	}
	if r.Count != nil && *r.Count <= 0 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidRecurrenceRule)
	}
	if r.Until != nil && DateOf(*r.Until).Before(DateOf(start)) {
		return fmt.Errorf("%w: end date precedes series start", ErrInvalidRecurrenceRule)
	}
	return nil
}

// Normalized fills the default interval. Callers validate afterwards.
func (r RecurrenceRule) Normalized() *RecurrenceRule {
	if r.Interval == 0 {
		r.Interval = 1
	}
	if r.Until != nil {
		until := DateOf(*r.Until)
		r.Until = &until
	}
	return &r
}

func (r *RecurrenceRule) Clone() *RecurrenceRule {
	if r == nil {
		return nil
	}
	c := *r
	if r.Until != nil {
		until := *r.Until
		c.Until = &until
	}
	if r.Count != nil {
		count := *r.Count
		c.Count = &count
	}
	return &c
}
