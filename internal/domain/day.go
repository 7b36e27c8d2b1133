package domain

import (
	"strconv"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Supported date range. Entry timestamps are stored as Unix nanoseconds,
// which only cover 1678 through 2262.
const (
	MinYear = 1900
	MaxYear = 2200
)

// Day is a calendar date with no time or zone attached.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, Invalidf("date (YYYY-MM-DD) is required.")
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, Invalidf("date %q is not a valid YYYY-MM-DD date.", s)
	}
	if y := t.Year(); y < MinYear || y > MaxYear {
		return Day{}, Invalidf("date %q is out of range (years %d-%d).", s, MinYear, MaxYear)
	}
	return DayOf(t), nil
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

func (d Day) String() string {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC).Format(DayLayout)
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Window returns the local day in loc: from local midnight of d to local
// midnight of the following calendar date. Across a DST change the span is
// 23 or 25 hours, never a fixed 24.
func (d Day) Window(loc *time.Location) Window {
	return Window{
		Start: time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc),
		End:   time.Date(d.Year, d.Month, d.Dom+1, 0, 0, 0, 0, loc),
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseAgentID validates an agent id taken from a query string.
func ParseAgentID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Invalidf("agentId is required.")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, Invalidf("agentId must be a positive integer.")
	}
	return id, nil
}
