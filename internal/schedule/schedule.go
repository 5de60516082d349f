package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoClassDays = errors.New("schedule has no class days")
)

// Schedule is the weekly recurrence pattern of a live class: which weekdays
// it meets on and at what fixed time slot.
type Schedule struct {
	ClassesPerWeek int            `json:"classes_per_week"`
	ClassDays      []time.Weekday `json:"class_days"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
}

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDays converts weekday names into time.Weekday values (Sunday=0 through
// Saturday=6), deduplicated and sorted by weekday index.
func ParseDays(names []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		day, ok := dayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		seen[day] = true
	}

	days := make([]time.Weekday, 0, len(seen))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if seen[day] {
			days = append(days, day)
		}
	}
	return days, nil
}

// NextOccurrence returns the next date on or after from whose weekday is in
// the schedule's class days, wrapping into the following week when needed.
// An empty day set is a configuration error, never silently handled.
func NextOccurrence(s Schedule, from time.Time) (time.Time, error) {
	if len(s.ClassDays) == 0 {
		return time.Time{}, ErrNoClassDays
	}

	days := make(map[time.Weekday]bool, len(s.ClassDays))
	for _, day := range s.ClassDays {
		days[day] = true
	}

	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for offset := 0; offset < 7; offset++ {
		candidate := date.AddDate(0, 0, offset)
		if days[candidate.Weekday()] {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoClassDays
}

// Validate checks the pattern is internally consistent: at least one class
// day, the day count matching classes per week, parseable HH:MM boundaries
// and a slot that ends after it starts.
func Validate(s Schedule) error {
	if len(s.ClassDays) == 0 {
		return ErrNoClassDays
	}
	if s.ClassesPerWeek != len(s.ClassDays) {
		return fmt.Errorf("classes per week %d does not match %d class days", s.ClassesPerWeek, len(s.ClassDays))
	}

	start, err := parseClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end time %s is not after start time %s", s.EndTime, s.StartTime)
	}
	return nil
}

// SlotTimes anchors the schedule's HH:MM boundaries onto a concrete date.
func SlotTimes(s Schedule, date time.Time) (start, end time.Time, err error) {
	startClock, err := parseClock(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start time: %w", err)
	}
	endClock, err := parseClock(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end time: %w", err)
	}

	start = time.Date(date.Year(), date.Month(), date.Day(), startClock.Hour(), startClock.Minute(), 0, 0, date.Location())
	end = time.Date(date.Year(), date.Month(), date.Day(), endClock.Hour(), endClock.Minute(), 0, 0, date.Location())
	return start, end, nil
}

func parseClock(value string) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q", value)
	}
	return parsed, nil
}
