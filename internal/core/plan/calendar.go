package plan

import (
	"fmt"
	"time"
)

// Hours describes the business-hours window scheduling runs place work
// into. All values are whole clock hours.
type Hours struct {
	Start      int     `yaml:"start_hour"`
	End        int     `yaml:"end_hour"`
	MaxDaily   float64 `yaml:"max_daily_hours"`
	BreakStart int     `yaml:"break_start"`
	BreakEnd   int     `yaml:"break_end"`
}

// DefaultHours returns the standard 9-18 working day with a one hour lunch
// break and eight allocatable hours.
func DefaultHours() Hours {
	return Hours{
		Start:      9,
		End:        18,
		MaxDaily:   8,
		BreakStart: 12,
		BreakEnd:   13,
	}
}

// Validate checks that the window is internally consistent and that the
// daily capacity actually fits between start, end, and the break.
func (h Hours) Validate() error {
	if h.Start < 0 || h.End > 24 || h.Start >= h.End {
		return fmt.Errorf("invalid business hours %d-%d", h.Start, h.End)
	}
	if h.BreakStart < h.Start || h.BreakEnd > h.End || h.BreakStart > h.BreakEnd {
		return fmt.Errorf("break %d-%d outside business hours %d-%d", h.BreakStart, h.BreakEnd, h.Start, h.End)
	}
	if h.MaxDaily <= 0 {
		return fmt.Errorf("max_daily_hours must be positive, got %v", h.MaxDaily)
	}
	working := float64(h.End-h.Start) - h.breakWidth()
	if h.MaxDaily > working {
		return fmt.Errorf("max_daily_hours %v exceeds the %v working hours between %d and %d", h.MaxDaily, working, h.Start, h.End)
	}
	return nil
}

func (h Hours) breakWidth() float64 {
	return float64(h.BreakEnd - h.BreakStart)
}

// clockHour maps hours-already-allocated on a day to the wall-clock hour
// the next allocation starts at. Packing is contiguous from the day start;
// once it reaches the break the break width is added so fragments resume
// at BreakEnd.
func (h Hours) clockHour(allocated float64) float64 {
	pos := float64(h.Start) + allocated
	if pos >= float64(h.BreakStart) {
		pos += h.breakWidth()
	}
	return pos
}

// Date layouts accepted for date-bearing fields after a round trip through
// JSON storage.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate coerces an ISO 8601 date or date-time string to a time value.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// Day truncates a time to day granularity, keeping its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether the day is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Span computes the concrete start/end instants for an allocation of the
// given hour length beginning at startHour on day.
func Span(day time.Time, startHour, hours float64) (time.Time, time.Time) {
	start := Day(day).Add(time.Duration(startHour * float64(time.Hour)))
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return start, end
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
