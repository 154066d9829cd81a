// Package recurrence expands recurrence rules into occurrence timestamps.
//
// Expansion is delegated to rrule-go, so calendar arithmetic follows RFC 5545:
// a monthly series anchored on the 31st skips months without a 31st and a
// yearly series anchored on Feb 29 only occurs in leap years. Skipped dates do
// not consume the occurrence count.
package recurrence

import (
	"fmt"
	"time"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/teambition/rrule-go"
)

// Next yields the following occurrence, ok is false once the sequence is exhausted.
type Next func() (t time.Time, ok bool)

// Sequence is the lazy list of occurrences of a series inside a date window.
// It holds no iteration state, every Iterator call starts over.
type Sequence struct {
	rule  *model.RecurrenceRule
	start time.Time
	from  time.Time
	to    time.Time
}

// Expand returns the occurrences of a series starting at seriesStart whose date
// lies in [windowStart, windowEnd], both ends inclusive. A nil rule or
// frequency NONE yields the series start alone.
func Expand(rule *model.RecurrenceRule, seriesStart, windowStart, windowEnd time.Time) (*Sequence, error) {
	if rule != nil && rule.Frequency != model.FrequencyNone {
		if err := rule.Validate(seriesStart); err != nil {
			return nil, err
		}
	}

	return &Sequence{
		rule:  rule,
		start: seriesStart,
		from:  model.DateOf(windowStart),
		to:    model.DateOf(windowEnd),
	}, nil
}

func (s *Sequence) Iterator() Next {
	if s.to.Before(s.from) {
		return func() (time.Time, bool) { return time.Time{}, false }
	}

	if s.rule == nil || s.rule.Frequency == model.FrequencyNone {
		done := false
		return func() (time.Time, bool) {
			if done {
				return time.Time{}, false
			}
			done = true
			if s.contains(s.start) {
				return s.start, true
			}
			return time.Time{}, false
		}
	}

	next := newRRule(s.rule, s.start).Iterator()
	done := false
	return func() (time.Time, bool) {
		for !done {
			t, ok := next()
			if !ok {
				done = true
				break
			}

			d := model.DateOf(t)
			if d.After(s.to) {
				done = true
				break
			}
			if d.Before(s.from) {
				continue
			}

			return t, true
		}

		return time.Time{}, false
	}
}

// All drains the sequence.
func (s *Sequence) All() []time.Time {
	var res []time.Time
	next := s.Iterator()
	for t, ok := next(); ok; t, ok = next() {
		res = append(res, t)
	}

	return res
}

func (s *Sequence) contains(t time.Time) bool {
	d := model.DateOf(t)
	return !d.Before(s.from) && !d.After(s.to)
}

// Occurs returns the occurrence of the series on date, if there is one.
func Occurs(rule *model.RecurrenceRule, seriesStart, date time.Time) (time.Time, bool, error) {
	seq, err := Expand(rule, seriesStart, date, date)
	if err != nil {
		return time.Time{}, false, err
	}

	t, ok := seq.Iterator()()
	return t, ok, nil
}

// CountBefore returns how many occurrences the series produces strictly before date.
func CountBefore(rule *model.RecurrenceRule, seriesStart, date time.Time) (int, error) {
	if !model.DateOf(seriesStart).Before(model.DateOf(date)) {
		return 0, nil
	}

	seq, err := Expand(rule, seriesStart, seriesStart, model.DateOf(date).AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}

	n := 0
	next := seq.Iterator()
	for _, ok := next(); ok; _, ok = next() {
		n++
	}

	return n, nil
}

// AnyRemaining reports whether the series still has an occurrence whose date is
// not in excluded. Unbounded series always have one.
func AnyRemaining(rule *model.RecurrenceRule, seriesStart time.Time, excluded map[time.Time]struct{}) (bool, error) {
	if rule == nil || rule.Frequency == model.FrequencyNone {
		_, ok := excluded[model.DateOf(seriesStart)]
		return !ok, nil
	}
	if !rule.Bounded() {
		return true, nil
	}

	if err := rule.Validate(seriesStart); err != nil {
		return false, err
	}

	// COUNT or UNTIL ends the iteration.
	next := newRRule(rule, seriesStart).Iterator()
	for t, ok := next(); ok; t, ok = next() {
		if _, ok := excluded[model.DateOf(t)]; !ok {
			return true, nil
		}
	}

	return false, nil
}

func newRRule(rule *model.RecurrenceRule, start time.Time) *rrule.RRule {
	opt := rrule.ROption{
		Freq:     toRRuleFrequency(rule.Frequency),
		Interval: rule.Interval,
		Dtstart:  start,
	}

	if rule.Count != nil {
		opt.Count = *rule.Count
	}

	if rule.Until != nil {
		opt.Until = model.DateOf(*rule.Until).Add(24*time.Hour - time.Second)
	}

	// Only BY* parts can fail validation and they are never set here.
	r, err := rrule.NewRRule(opt)
	if err != nil {
		panic(fmt.Sprintf("building rrule for %v: %v", rule.Frequency, err))
	}

	return r
}

func toRRuleFrequency(f model.Frequency) rrule.Frequency {
	switch f {
	case model.FrequencyDaily:
		return rrule.DAILY
	case model.FrequencyWeekly:
		return rrule.WEEKLY
	case model.FrequencyMonthly:
		return rrule.MONTHLY
	default:
		return rrule.YEARLY
	}
}
