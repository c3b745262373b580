package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire and configuration format for calendar days.
const DateLayout = "2006-01-02"

// Calendar is an immutable set of non-working days. Membership is tested at
// calendar-day granularity; time-of-day is ignored.
type Calendar struct {
	days map[time.Time]struct{}
}

// NewCalendar builds a calendar from the given days. Duplicates collapse.
func NewCalendar(days []time.Time) *Calendar {
	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		set[Day(d)] = struct{}{}
	}
	return &Calendar{days: set}
}

// ParseCalendar builds a calendar from YYYY-MM-DD strings.
func ParseCalendar(dates []string) (*Calendar, error) {
	days := make([]time.Time, 0, len(dates))
	for _, raw := range dates {
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", raw, err)
		}
		days = append(days, d)
	}
	return NewCalendar(days), nil
}

// Contains reports whether the day of t is a holiday.
func (c *Calendar) Contains(t time.Time) bool {
	_, ok := c.days[Day(t)]
	return ok
}

// Dates returns the holidays in ascending order.
func (c *Calendar) Dates() []time.Time {
	out := make([]time.Time, 0, len(c.days))
	for d := range c.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
