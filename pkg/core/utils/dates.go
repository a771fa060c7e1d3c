package utils

import (
	"fmt"
	"strings"
	"time"
)

// Date formats observed across SEC EDGAR payloads, in priority order.
var dateFormats = []string{
	"2006-01-02",
	"20060102",
	"01/02/2006",
}

// Datetime formats for acceptanceDateTime and friends. Go's parser accepts a
// fractional-seconds field after the seconds even when the layout omits it,
// so "2006-01-02T15:04:05" also covers "...T15:04:05.531".
var datetimeFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102150405",
	"2006-01-02",
}

// ParseDate parses a calendar date string, returning a midnight-UTC time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// ParseDateTime parses a wall-clock timestamp, stripping any timezone
// designator first. SEC acceptance datetimes arrive as local-naive values;
// offsets are dropped rather than converted.
func ParseDateTime(s string) (time.Time, error) {
	s = stripTimezone(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime string")
	}
	for _, layout := range datetimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime format: %q", s)
}

// stripTimezone removes a trailing Z or numeric UTC offset ("+00:00",
// "-0500") from a timestamp string.
func stripTimezone(s string) string {
	s = strings.TrimSuffix(s, "Z")
	if len(s) >= 6 {
		tail := s[len(s)-6:]
		if (tail[0] == '+' || tail[0] == '-') && tail[3] == ':' {
			return s[:len(s)-6]
		}
	}
	if len(s) >= 5 {
		tail := s[len(s)-5:]
		if (tail[0] == '+' || tail[0] == '-') && allDigits(tail[1:]) {
			return s[:len(s)-5]
		}
	}
	return s
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// FormatDate renders a calendar date as YYYY-MM-DD, the canonical form in
// every output table.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime renders a wall-clock timestamp with a space separator,
// matching the acceptance_datetime output column.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// DateOnly truncates a timestamp to its calendar date (midnight UTC).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 on the given calendar date. The point-in-time
// gate admits everything accepted up to and including this instant.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// IsWithinCutoff reports whether an acceptance timestamp was public by the
// end of the cutoff date.
func IsWithinCutoff(acceptance, cutoff time.Time) bool {
	return !acceptance.After(EndOfDay(cutoff))
}

// DaysBetween returns the whole-day span from start to end.
func DaysBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}

// IsAnnualPeriod reports whether [start, end] looks like a fiscal year.
// The 330..400-day window tolerates 52/53-week calendars and transition
// periods without admitting quarters.
func IsAnnualPeriod(start, end time.Time) bool {
	d := DaysBetween(start, end)
	return d >= 330 && d <= 400
}

// IsQuarterlyPeriod reports whether [start, end] looks like a fiscal quarter.
func IsQuarterlyPeriod(start, end time.Time) bool {
	d := DaysBetween(start, end)
	return d >= 75 && d <= 100
}

// AbsDays returns the absolute day distance between two dates.
func AbsDays(a, b time.Time) int {
	d := DaysBetween(b, a)
	if d < 0 {
		return -d
	}
	return d
}

// LatestDateWithinCutoff returns the latest date not after the cutoff, or
// false when none qualifies.
func LatestDateWithinCutoff(dates []time.Time, cutoff time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, d := range dates {
		if d.After(cutoff) {
			continue
		}
		if !found || d.After(best) {
			best = d
			found = true
		}
	}
	return best, found
}

// FiscalQuarter returns the calendar quarter (1..4) of a period end.
func FiscalQuarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
